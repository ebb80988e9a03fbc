package typemap

// Usage accumulates which registered types and runtime helpers a stretch of
// generated code referenced; import synthesis reads it afterwards. Passing
// a nil *Usage suppresses tracking, which is how side computations (for
// example building runtime metadata descriptors) resolve types without
// polluting a file's import set.
type Usage struct {
	Types   map[string]*Entry
	Enums   map[string]*Entry
	Records map[string]*Entry
	Helpers map[string]bool
}

// NewUsage returns an empty tracker.
func NewUsage() *Usage {
	return &Usage{
		Types:   map[string]*Entry{},
		Enums:   map[string]*Entry{},
		Records: map[string]*Entry{},
		Helpers: map[string]bool{},
	}
}

// Type records a class or interface reference. Safe on a nil receiver.
func (u *Usage) Type(e *Entry) {
	if u == nil || e == nil {
		return
	}
	u.Types[e.Qualified()] = e
}

// Enum records an enumeration reference. Safe on a nil receiver.
func (u *Usage) Enum(e *Entry) {
	if u == nil || e == nil {
		return
	}
	u.Enums[e.Qualified()] = e
}

// Record records a boxed-record reference. Safe on a nil receiver.
func (u *Usage) Record(e *Entry) {
	if u == nil || e == nil {
		return
	}
	u.Records[e.Qualified()] = e
}

// Helper records a runtime-helper reference (call, getObject, ...). Safe on
// a nil receiver.
func (u *Usage) Helper(name string) {
	if u == nil || name == "" {
		return
	}
	u.Helpers[name] = true
}

// Merge folds other into u. Safe when either side is nil.
func (u *Usage) Merge(other *Usage) {
	if u == nil || other == nil {
		return
	}
	for k, v := range other.Types {
		u.Types[k] = v
	}
	for k, v := range other.Enums {
		u.Enums[k] = v
	}
	for k, v := range other.Records {
		u.Records[k] = v
	}
	for k := range other.Helpers {
		u.Helpers[k] = true
	}
}

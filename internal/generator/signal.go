package generator

import (
	"fmt"
	"strings"

	"github.com/ivan-banha/gtkx-sub001/internal/ffitype"
	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/naming"
	"github.com/ivan-banha/gtkx-sub001/internal/typemap"
)

// signalGenerator builds the typed connect surface of a class plus the
// descriptor tables the runtime needs to marshal handler arguments.
type signalGenerator struct {
	g *classGenerator
}

// collectedSignal is one signal visible on a class.
type collectedSignal struct {
	Signal *gir.Signal
	NS     string // namespace the declaring type lives in
}

// collect gathers the signals connectable on e: its own, those of its
// interfaces, then the same-namespace ancestor chain with their
// interfaces. First seen wins on name collisions. Ancestors beyond a
// namespace boundary cannot be enumerated here; their signals stay
// reachable through the untyped overload.
func (s *signalGenerator) collect(e *classEntry) []collectedSignal {
	var out []collectedSignal
	seen := map[string]bool{}
	add := func(ns string, sigs []gir.Signal) {
		for i := range sigs {
			sig := &sigs[i]
			if seen[sig.Name] {
				continue
			}
			seen[sig.Name] = true
			out = append(out, collectedSignal{Signal: sig, NS: ns})
		}
	}

	add(e.NS.Name, e.Class.Signals)
	for _, iface := range s.g.h.interfacesOf(e) {
		add(iface.NS.Name, iface.Iface.Signals)
	}
	chain, _ := s.g.h.signalAncestors(e)
	for _, a := range chain {
		add(a.NS.Name, a.Class.Signals)
		for _, iface := range s.g.h.interfacesOf(a) {
			add(iface.NS.Name, iface.Iface.Signals)
		}
	}
	return out
}

// build produces the connect model for e plus the flat signal-name list
// the reconciler tables record. The notify overload is injected unless the
// class already sees a literal notify signal (GObject's own namespace
// declares the real one); the untyped catch-all lives in the template. A
// class with nothing to connect gets no override at all.
func (s *signalGenerator) build(e *classEntry, className string, u *typemap.Usage) (*connectModel, []string) {
	signals := s.collect(e)

	model := &connectModel{ClassName: className}
	var names []string

	hasNotify := false
	for _, cs := range signals {
		if cs.Signal.Name == "notify" {
			hasNotify = true
		}
		model.Overloads = append(model.Overloads, connectOverload{
			Signal:  cs.Signal.Name,
			Handler: s.handlerType(className, cs.Signal, u),
		})
		model.Meta = append(model.Meta, s.metaEntry(cs.Signal))
		names = append(names, cs.Signal.Name)
	}

	if !hasNotify && e.NS.Name != "GObject" {
		model.Overloads = append(model.Overloads, connectOverload{
			Signal:  "notify",
			Handler: fmt.Sprintf("(self: %s, pspec: unknown) => void", className),
		})
		model.Meta = append(model.Meta, metaSignalEntry{
			Name:   "notify",
			Params: []string{ffitype.Render(ffitype.GObject{Borrowed: true})},
		})
		names = append(names, "notify")
	}

	if len(model.Overloads) == 0 {
		return nil, nil
	}
	u.Helper("connectSignal")
	return model, names
}

// handlerType renders the handler function type of one signal overload.
func (s *signalGenerator) handlerType(className string, sig *gir.Signal, u *typemap.Usage) string {
	params := []string{"self: " + className}
	for i := range sig.Parameters {
		p := &sig.Parameters[i]
		mt := s.g.mapper.MapParameter(p, u)
		params = append(params, fmt.Sprintf("%s: %s", paramName(p, i), mt.TSNullable()))
	}
	ret := "void"
	if sig.ReturnValue != nil && !sig.ReturnValue.IsVoid() {
		ret = s.g.mapper.MapReturn(sig.ReturnValue, u).TSNullable()
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), ret)
}

// metaEntry renders the runtime descriptor row of one signal. Descriptor
// building is a side computation: types resolve against the registry but
// never touch the file's imports, hence the nil usage.
func (s *signalGenerator) metaEntry(sig *gir.Signal) metaSignalEntry {
	entry := metaSignalEntry{Name: sig.Name}
	for i := range sig.Parameters {
		mt := s.g.mapper.MapParameter(&sig.Parameters[i], nil)
		entry.Params = append(entry.Params, ffitype.Render(mt.FFI))
	}
	if sig.ReturnValue != nil && !sig.ReturnValue.IsVoid() {
		entry.ReturnType = ffitype.Render(s.g.mapper.MapReturn(sig.ReturnValue, nil).FFI)
	}
	return entry
}

func paramName(p *gir.Parameter, i int) string {
	if p.Name == "" {
		return fmt.Sprintf("arg%d", i)
	}
	name := naming.SafeIdent(naming.ToCamel(p.Name))
	if name == "self" {
		// the handler's first parameter is the instance
		return fmt.Sprintf("arg%d", i)
	}
	return name
}

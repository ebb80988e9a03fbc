package generator

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/ivan-banha/gtkx-sub001/internal/ffitype"
	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/naming"
	"github.com/ivan-banha/gtkx-sub001/internal/typemap"
)

// artifact is one file to write, expressed as a template invocation.
type artifact struct {
	Path     string // relative to the output root
	Template string
	Data     any
}

// namespaceGenerator emits every module of one namespace.
type namespaceGenerator struct {
	cfg    *Config
	h      *hierarchy
	mapper *typemap.Mapper
	ns     *gir.Namespace
	header fileHeader
}

func (n *namespaceGenerator) dir() string { return strings.ToLower(n.ns.Name) }

// Generate runs the namespace end to end: skip-set computation, enums,
// records, classes, interfaces, JSX and metadata, then the barrel file.
func (n *namespaceGenerator) Generate() []artifact {
	n.computeSkips()

	var files []artifact
	var exports []string
	emit := func(name, tmpl string, data any) {
		files = append(files, artifact{Path: path.Join(n.dir(), name), Template: tmpl, Data: data})
	}

	cg := &classGenerator{cfg: n.cfg, h: n.h, mapper: n.mapper, ns: n.ns, header: n.header}

	if em := n.buildEnums(); em != nil {
		emit("enums.ts", tmplEnums, em)
		exports = append(exports, "./enums.js")
	}
	if rm := n.buildRecords(cg); rm != nil {
		emit("records.ts", tmplRecords, rm)
		exports = append(exports, "./records.js")
	}
	if im := n.buildInterfaces(cg); im != nil {
		emit("interfaces.ts", tmplInterfaces, im)
		exports = append(exports, "./interfaces.js")
	}

	var metas []*classMeta
	for i := range n.ns.Classes {
		e := n.h.classes[n.ns.Name+"."+n.ns.Classes[i].Name]
		out := cg.Generate(e)
		if out == nil {
			continue
		}
		emit(out.FileName, tmplClass, out.Model)
		exports = append(exports, "./"+strings.TrimSuffix(out.FileName, ".ts")+".js")
		metas = append(metas, out.Meta)
	}

	jg := &jsxGenerator{cfg: n.cfg, h: n.h, mapper: n.mapper, ns: n.ns, header: n.header}
	jsx, containers, jsxUsage := jg.Generate()
	if jsx != nil {
		jsx.Imports = buildImports(jsxUsage, nil, n.ns.Name, n.cfg.RuntimeImport, "")
		emit("jsx.ts", tmplJSX, jsx)
		exports = append(exports, "./jsx.js")
	}

	emit("meta.ts", tmplMeta, n.buildMeta(metas, containers))
	exports = append(exports, "./meta.js")

	sort.Strings(exports)
	prefix, _, _ := strings.Cut(n.ns.IdentifierPrefix, ",")
	emit("index.ts", tmplIndex, &indexModel{
		Header:  n.header,
		Exports: exports,
		Name:    n.ns.Name,
		Lib:     n.ns.PrimaryLibrary(),
		Prefix:  prefix,
	})
	return files
}

// computeSkips fills the mapper's skip set: configured exclusions plus
// classes whose every introspected constructor needs an unsupported
// callback, which leaves no way to build one.
func (n *namespaceGenerator) computeSkips() {
	for _, q := range n.cfg.SkipClasses {
		n.mapper.MarkSkipped(q)
	}
	for i := range n.ns.Classes {
		c := &n.ns.Classes[i]
		declared, usable := 0, 0
		for k := range c.Constructors {
			ctor := &c.Constructors[k]
			if !ctor.Introspectable() {
				continue
			}
			declared++
			if !ctor.HasVarArgs() && !n.mapper.HasUnsupportedCallback(ctor) {
				usable++
			}
		}
		if declared > 0 && usable == 0 {
			q := n.ns.Name + "." + c.Name
			log.Infof("skipping class %s: no usable constructor", q)
			n.mapper.MarkSkipped(q)
		}
	}
}

func (n *namespaceGenerator) buildEnums() *enumsModel {
	model := &enumsModel{Header: n.header}
	add := func(list []gir.Enumeration) {
		for i := range list {
			e := &list[i]
			if !e.Introspectable() {
				continue
			}
			em := enumModel{Doc: sanitizeDoc(e.Doc), Name: naming.ToPascal(e.Name)}
			for _, m := range e.Members {
				em.Members = append(em.Members, enumMember{Name: naming.ToUpperSnake(m.Name), Value: m.Value})
			}
			model.Enums = append(model.Enums, em)
			n.mapper.RegisterLocalEnum(e.Name)
		}
	}
	add(n.ns.Enumerations)
	add(n.ns.Bitfields)
	if len(model.Enums) == 0 {
		return nil
	}
	return model
}

func (n *namespaceGenerator) buildRecords(cg *classGenerator) *recordsModel {
	model := &recordsModel{Header: n.header, Lib: n.ns.PrimaryLibrary()}
	u := typemap.NewUsage()
	valueUses := map[string]bool{}

	for i := range n.ns.Records {
		r := &n.ns.Records[i]
		if !r.Introspectable() || !r.Boxed() {
			continue
		}
		entry := n.mapper.Registry().Resolve(n.ns.Name + "." + r.Name)
		if entry == nil {
			continue
		}
		n.mapper.RegisterLocalRecord(r.Name, entry)
		u.Helper("NativeObject")

		rm := recordModel{
			Doc:  sanitizeDoc(r.Doc),
			Name: entry.TransformedName,
		}
		recv := ffitype.Boxed{
			Borrowed:  true,
			InnerType: r.GLibTypeName,
			Lib:       entry.SharedLibrary,
			GetTypeFn: r.GLibGetType,
		}
		surfaced := map[string]bool{}
		for k := range r.Methods {
			m := &r.Methods[k]
			if !m.Introspectable() || m.HasVarArgs() || cg.mapper.HasUnsupportedCallback(m) {
				continue
			}
			name := naming.SafeIdent(naming.ToCamel(m.Name))
			if surfaced[name] {
				continue
			}
			if mm, ok := cg.buildMethod(nil, m, name, recv, true, u, valueUses); ok {
				surfaced[name] = true
				rm.Methods = append(rm.Methods, mm)
			}
		}
		model.Records = append(model.Records, rm)
	}
	if len(model.Records) == 0 {
		return nil
	}

	// references between records in this module resolve locally
	for q, e := range u.Records {
		if e.Namespace == n.ns.Name {
			delete(u.Records, q)
		}
	}
	model.Imports = buildImports(u, valueUses, n.ns.Name, n.cfg.RuntimeImport, "")
	return model
}

func (n *namespaceGenerator) buildInterfaces(cg *classGenerator) *interfacesModel {
	model := &interfacesModel{Header: n.header}
	u := typemap.NewUsage()

	for i := range n.ns.Interfaces {
		iface := &n.ns.Interfaces[i]
		if !iface.Introspectable() {
			continue
		}
		entry := n.mapper.Registry().Resolve(n.ns.Name + "." + iface.Name)
		if entry == nil {
			continue
		}
		im := interfaceModel{Doc: sanitizeDoc(iface.Doc), Name: entry.TransformedName}
		for _, p := range iface.Prerequisites {
			// Class prerequisites constrain implementors, not the declared shape.
			pre := n.mapper.Registry().ResolveIn(p.Name, n.ns.Name)
			if pre == nil || pre.Kind != typemap.KindInterface {
				continue
			}
			im.Extends = append(im.Extends, cg.mapper.MapType(gir.TypeRef{Name: p.Name}, false, u).TS)
		}
		seen := map[string]bool{}
		for k := range iface.Methods {
			m := &iface.Methods[k]
			if !m.Introspectable() || m.HasVarArgs() || cg.mapper.HasUnsupportedCallback(m) {
				continue
			}
			name := naming.SafeIdent(naming.ToCamel(m.Name))
			if seen[name] || name == "connect" || name == "disconnect" {
				continue
			}
			params, ok := cg.buildParams(m, u)
			if !ok {
				continue
			}
			seen[name] = true
			im.Methods = append(im.Methods, interfaceMethod{
				Doc:      sanitizeDoc(m.Doc),
				Name:     name,
				Params:   params.Models,
				ReturnTS: cg.mapper.MapReturn(m.ReturnValue, u).TSNullable(),
			})
		}
		model.Interfaces = append(model.Interfaces, im)
	}
	if len(model.Interfaces) == 0 {
		return nil
	}

	for q, e := range u.Types {
		if e.Namespace == n.ns.Name && e.Kind == typemap.KindInterface {
			delete(u.Types, q)
		}
	}
	u.Helpers = map[string]bool{} // signatures only, nothing runs here
	model.Imports = buildImports(u, nil, n.ns.Name, n.cfg.RuntimeImport, "")
	return model
}

func (n *namespaceGenerator) buildMeta(metas []*classMeta, containers map[string]containerFacts) *metaModel {
	model := &metaModel{Header: n.header}
	for _, m := range metas {
		if len(m.CtorParams) > 0 {
			model.ConstructorParams = append(model.ConstructorParams, metaList{Class: m.Name, Names: m.CtorParams})
		}
		if len(m.ConstructOnly) > 0 {
			model.ConstructorProps = append(model.ConstructorProps, metaList{Class: m.Name, Names: m.ConstructOnly})
		}
		if len(m.Props) > 0 {
			model.Props = append(model.Props, metaProps{Class: m.Name, Entries: m.Props})
		}
		if len(m.Signals) > 0 {
			model.Signals = append(model.Signals, metaList{Class: m.Name, Names: m.Signals})
		}
	}

	keys := make([]string, 0, len(containers))
	for q := range containers {
		keys = append(keys, q)
	}
	sort.Strings(keys)
	for _, q := range keys {
		f := containers[q]
		if f.empty() {
			continue
		}
		entry := n.mapper.Registry().Resolve(q)
		if entry == nil {
			continue
		}
		model.Containers = append(model.Containers, metaContainer{
			Class: entry.TransformedName,
			Value: containerValue(f),
		})
	}
	return model
}

// containerValue renders one CONTAINERS capability literal.
func containerValue(f containerFacts) string {
	var parts []string
	if f.Append {
		parts = append(parts, "append: true")
	}
	if f.SetChild {
		parts = append(parts, "setChild: true")
	}
	if f.Remove {
		parts = append(parts, "remove: true")
	}
	if len(f.Slots) > 0 {
		quoted := make([]string, len(f.Slots))
		for i, s := range f.Slots {
			quoted[i] = strconv.Quote(s)
		}
		parts = append(parts, "slots: ["+strings.Join(quoted, ", ")+"]")
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

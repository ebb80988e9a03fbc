package generator

import (
	"fmt"
	"strings"

	"github.com/ivan-banha/gtkx-sub001/internal/ffitype"
	"github.com/ivan-banha/gtkx-sub001/internal/gir"
	"github.com/ivan-banha/gtkx-sub001/internal/naming"
	"github.com/ivan-banha/gtkx-sub001/internal/typemap"
)

// asyncPair is an _async/_finish couple surfaced as one promise-returning
// method.
type asyncPair struct {
	Base   string
	Async  *gir.Function
	Finish *gir.Function
}

// pairAsync matches methods carrying an async-ready callback to their
// _finish counterparts, keyed on the method name with any _async suffix
// stripped (g_file_mount_enclosing_volume has no suffix; its finish half
// still does). A pair only forms when the finish half takes exactly one
// in-parameter (the async result); its out-parameters become extra keys
// on the resolution object. Anything else leaves both halves as plain
// methods. The second result marks finish methods consumed by a pair.
func (g *classGenerator) pairAsync(methods []gir.Function) (map[string]*asyncPair, map[string]bool) {
	byName := map[string]*gir.Function{}
	for i := range methods {
		byName[methods[i].Name] = &methods[i]
	}

	pairs := map[string]*asyncPair{}
	consumed := map[string]bool{}
	for i := range methods {
		m := &methods[i]
		if !m.Introspectable() || strings.HasSuffix(m.Name, "_finish") {
			continue
		}
		if g.asyncCallbackIndex(m) < 0 {
			continue
		}
		base := strings.TrimSuffix(m.Name, "_async")
		if base == "" {
			continue
		}
		finish, ok := byName[base+"_finish"]
		if !ok || !finish.Introspectable() || !finishPairable(finish) {
			continue
		}
		pairs[m.Name] = &asyncPair{Base: base, Async: m, Finish: finish}
		consumed[finish.Name] = true
	}
	return pairs, consumed
}

// asyncCallbackIndex finds the async-ready callback parameter, or -1.
func (g *classGenerator) asyncCallbackIndex(m *gir.Function) int {
	for i := range m.Parameters {
		mt := g.mapper.MapParameter(&m.Parameters[i], nil)
		if cb, ok := mt.FFI.(ffitype.Callback); ok && cb.Trampoline == ffitype.TrampolineAsyncReady {
			return i
		}
	}
	return -1
}

// finishPairable accepts finish halves with one in-parameter (the async
// result) and any number of plain out-parameters. Inout parameters need an
// input value the wrapper cannot source, and caller-allocates outs need
// storage it cannot allocate; either leaves the pair unformed.
func finishPairable(finish *gir.Function) bool {
	in := 0
	for i := range finish.Parameters {
		p := &finish.Parameters[i]
		switch p.Direction {
		case gir.DirectionInOut:
			return false
		case gir.DirectionOut:
			if p.CallerAllocates {
				return false
			}
		default:
			in++
		}
	}
	return in == 1
}

// finishOut is one out-parameter of a finish half, surfaced as a key on
// the promise resolution object.
type finishOut struct {
	Name string       // camelCase resolution key
	TS   string       // surface type of the out value
	Desc ffitype.Type // ref descriptor passed to the dispatcher
}

func (g *classGenerator) finishOuts(finish *gir.Function, u *typemap.Usage) []finishOut {
	var outs []finishOut
	for i := range finish.Parameters {
		p := &finish.Parameters[i]
		if p.Direction != gir.DirectionOut {
			continue
		}
		inner := g.mapper.MapType(p.TypeRef(), false, u)
		outs = append(outs, finishOut{
			Name: naming.SafeIdent(naming.ToCamel(p.Name)),
			TS:   inner.TSNullable(),
			Desc: ffitype.Ref{InnerType: inner.FFI},
		})
	}
	return outs
}

// buildAsyncWrapper emits the promise wrapper for a pair. Pairs whose
// surviving parameters put an optional before a required one are dropped
// whole: the promise signature cannot express them and patching
// optionality silently changes call sites.
func (g *classGenerator) buildAsyncWrapper(e *classEntry, pair *asyncPair, u *typemap.Usage, valueUses map[string]bool, surfaced map[string]bool) (methodModel, bool) {
	cbIdx := g.asyncCallbackIndex(pair.Async)
	cbParam := &pair.Async.Parameters[cbIdx]
	cbDesc := g.mapper.MapParameter(cbParam, nil).FFI

	dropped := map[int]bool{cbIdx: true}
	if idx := cbParam.ClosureIndex(); idx >= 0 {
		dropped[idx] = true
	}
	if idx := cbParam.DestroyIndex(); idx >= 0 {
		dropped[idx] = true
	}

	var kept []gir.Parameter
	keptBeforeCb := 0
	sawOptional := false
	for i := range pair.Async.Parameters {
		if dropped[i] {
			continue
		}
		p := pair.Async.Parameters[i]
		if p.Optional || p.NullableIn() {
			sawOptional = true
		} else if sawOptional {
			log.Debugf("dropping async pair %s.%s: optional parameter precedes a required one", e.Qualified(), pair.Base)
			return methodModel{}, false
		}
		if i < cbIdx {
			keptBeforeCb++
		}
		kept = append(kept, p)
	}

	name := naming.SafeIdent(naming.ToCamel(pair.Base))
	if surfaced[name] {
		name = naming.SafeIdent(naming.ToCamel(pair.Base) + "Async")
		if surfaced[name] {
			log.Debugf("dropping async pair %s.%s: no collision-free name", e.Qualified(), pair.Base)
			return methodModel{}, false
		}
	}

	view := *pair.Async
	view.Parameters = kept
	params, ok := g.buildParams(&view, u)
	if !ok {
		return methodModel{}, false
	}

	ret := g.mapper.MapReturn(pair.Finish.ReturnValue, u)
	outs := g.finishOuts(pair.Finish, u)
	plan := returnPlan{Mapped: ret, Throws: pair.Finish.Throws}
	if ret.Entry != nil {
		switch ret.Entry.Kind {
		case typemap.KindClass:
			if target := g.h.classes[ret.Entry.Qualified()]; target != nil && g.h.cyclicReturn(e, target) {
				plan.Cyclic = true
			} else {
				plan.WrapIn = ret.TS
				valueUses[ret.Entry.Qualified()] = true
			}
		case typemap.KindInterface:
			plan.Dynamic = true
		case typemap.KindRecord:
			plan.WrapIn = ret.TS
			valueUses[ret.Entry.Qualified()] = true
		}
	}

	retTS := ret.TSNullable()
	if len(outs) > 0 {
		parts := []string{"result: " + retTS}
		for _, o := range outs {
			parts = append(parts, o.Name+": "+o.TS)
		}
		retTS = "{ " + strings.Join(parts, "; ") + " }"
	}

	surfaced[name] = true
	u.Helper("call")
	return methodModel{
		Doc:      sanitizeDoc(pair.Async.Doc),
		Name:     name,
		Params:   params.Models,
		ReturnTS: "Promise<" + retTS + ">",
		Body:     g.asyncBody(pair, cbDesc, outs, params.Args, keptBeforeCb, plan, u),
	}, true
}

// asyncBody assembles the promise body: dispatch the _async half with an
// inline async-ready handler that runs the _finish half and settles the
// promise.
func (g *classGenerator) asyncBody(pair *asyncPair, cbDesc ffitype.Type, outs []finishOut, args []string, keptBeforeCb int, plan returnPlan, u *typemap.Usage) []string {
	lines := []string{
		"return new Promise((resolve, reject) => {",
		fmt.Sprintf("call(%s, %q, [", libConst, pair.Async.CIdentifier),
		instanceArg(instanceDesc) + ",",
	}
	for _, a := range args[:keptBeforeCb] {
		lines = append(lines, a+",")
	}
	lines = append(lines,
		"{",
		fmt.Sprintf("type: %s,", ffitype.Render(cbDesc)),
		"value: (sourceObject: unknown, res: unknown) => {",
		"try {",
	)
	lines = append(lines, g.finishLines(pair.Finish, outs, plan, u)...)
	lines = append(lines,
		"} catch (e) {",
		"reject(e);",
		"}",
		"},",
		"},",
	)
	for _, a := range args[keptBeforeCb:] {
		lines = append(lines, a+",")
	}
	lines = append(lines,
		fmt.Sprintf("], %s);", ffitype.Render(ffitype.Undefined{})),
		"});",
	)
	return lines
}

// finishLines runs the _finish half inside the handler and resolves. Out
// parameters are backed by refs the dispatcher writes into; their values
// join the result on the resolution object.
func (g *classGenerator) finishLines(finish *gir.Function, outs []finishOut, plan returnPlan, u *typemap.Usage) []string {
	args := []string{
		instanceArg(instanceDesc),
		renderArg(ffitype.GObject{Borrowed: true}, "res"),
	}
	var lines []string
	for _, o := range outs {
		u.Helper("createRef")
		lines = append(lines, fmt.Sprintf("const %sRef = createRef<unknown>(null);", o.Name))
		args = append(args, renderArg(o.Desc, o.Name+"Ref"))
	}
	if plan.Throws {
		u.Helper("createRef")
		u.Helper("throwIfError")
		args = append(args, errRefArg)
		lines = append(lines, errRefLine)
	}

	mt := plan.Mapped
	expr := callExpr(finish.CIdentifier, args, mt.FFI)
	if ffitype.IsVoid(mt.FFI) {
		lines = append(lines, expr+";")
		if plan.Throws {
			lines = append(lines, "throwIfError(error);")
		}
		if len(outs) == 0 {
			return append(lines, "resolve();")
		}
		return append(lines, "resolve({ "+resolutionFields("result: undefined", outs)+" });")
	}

	switch {
	case plan.Cyclic, plan.Dynamic, plan.WrapIn != "":
		lines = append(lines, fmt.Sprintf("const result = %s as number%s;", expr, nullUnion(mt)))
	default:
		lines = append(lines, fmt.Sprintf("const result = %s%s;", expr, castSuffix(mt.TSNullable())))
	}
	if plan.Throws {
		lines = append(lines, "throwIfError(error);")
	}

	wrap := "result"
	switch {
	case plan.Cyclic:
		wrap = fmt.Sprintf("{ id: result } as unknown as %s", mt.TS)
	case plan.Dynamic:
		u.Helper("getObject")
		wrap = fmt.Sprintf("getObject(result) as %s", mt.TS)
	case plan.WrapIn != "":
		u.Helper("getObject")
		wrap = fmt.Sprintf("getObject(result, %s)", plan.WrapIn)
	}
	if mt.Nullable && wrap != "result" {
		wrap = fmt.Sprintf("result === null ? null : (%s)", wrap)
	}
	if len(outs) > 0 {
		head := "result"
		if wrap != "result" {
			head = "result: " + wrap
		}
		return append(lines, "resolve({ "+resolutionFields(head, outs)+" });")
	}
	return append(lines, fmt.Sprintf("resolve(%s);", wrap))
}

func resolutionFields(head string, outs []finishOut) string {
	parts := []string{head}
	for _, o := range outs {
		parts = append(parts, fmt.Sprintf("%s: %sRef.value as %s", o.Name, o.Name, o.TS))
	}
	return strings.Join(parts, ", ")
}

package generator

import (
	"fmt"
	"strings"

	"github.com/ivan-banha/gtkx-sub001/internal/ffitype"
	"github.com/ivan-banha/gtkx-sub001/internal/typemap"
)

// libConst is the shared-library constant name emitted once per module.
const libConst = "LIB"

// errRefLine allocates the GError out-slot for throwing callables.
const errRefLine = "const error = createRef<unknown>(null);"

// errRefArg is the trailing GError** argument of throwing callables.
var errRefArg = renderArg(
	ffitype.Ref{InnerType: ffitype.Int{Size: 64, Unsigned: true}},
	"error",
)

// renderArg builds one entry of a call's argument array.
func renderArg(desc ffitype.Type, value string) string {
	return fmt.Sprintf("{ type: %s, value: %s }", ffitype.Render(desc), value)
}

// instanceArg is the receiver argument of instance methods.
func instanceArg(desc ffitype.Type) string {
	return renderArg(desc, "this.id")
}

// callExpr builds the runtime dispatch expression.
func callExpr(symbol string, args []string, ret ffitype.Type) string {
	return fmt.Sprintf("call(%s, %q, [%s], %s)", libConst, symbol, strings.Join(args, ", "), ffitype.Render(ret))
}

// paramValueExpr renders how a generated parameter crosses the boundary.
// Handle-backed values pass their id; optional values collapse undefined to
// null.
func paramValueExpr(name string, mt typemap.MappedType, optional bool) string {
	switch mt.FFI.(type) {
	case ffitype.GObject, ffitype.Boxed:
		ref := name
		if mt.TS == "unknown" {
			// degraded handle: the surface type is unknown but the value
			// still carries a native id
			ref = "(" + name + " as { id: number })"
		}
		if optional || mt.Nullable {
			return ref + "?.id ?? null"
		}
		return ref + ".id"
	}
	if optional {
		return name + " ?? null"
	}
	return name
}

// castSuffix renders the assertion appended to a call expression; unknown
// needs none because call already returns unknown.
func castSuffix(ts string) string {
	if ts == "" || ts == "void" || ts == "unknown" {
		return ""
	}
	return " as " + ts
}

// returnPlan describes how a method body finishes after the dispatch.
type returnPlan struct {
	Mapped  typemap.MappedType
	WrapIn  string // class value expression for getObject, empty for none
	Cyclic  bool   // emit the cast-based wrap instead of a value import
	Dynamic bool   // wrap via runtime class resolution (interface returns)
	Throws  bool
}

// buildBody assembles the statement lines of a method body around one
// dispatch expression.
func buildBody(symbol string, args []string, plan returnPlan, u *typemap.Usage) []string {
	u.Helper("call")
	var lines []string
	if plan.Throws {
		u.Helper("createRef")
		u.Helper("throwIfError")
		args = append(append([]string{}, args...), errRefArg)
		lines = append(lines, errRefLine)
	}

	mt := plan.Mapped
	expr := callExpr(symbol, args, mt.FFI)

	if ffitype.IsVoid(mt.FFI) {
		lines = append(lines, expr+";")
		if plan.Throws {
			lines = append(lines, "throwIfError(error);")
		}
		return lines
	}

	switch {
	case plan.Cyclic:
		lines = append(lines, fmt.Sprintf("const result = %s as number%s;", expr, nullUnion(mt)))
		if plan.Throws {
			lines = append(lines, "throwIfError(error);")
		}
		if mt.Nullable {
			lines = append(lines, fmt.Sprintf("return result === null ? null : ({ id: result } as unknown as %s);", mt.TS))
		} else {
			lines = append(lines, fmt.Sprintf("return { id: result } as unknown as %s;", mt.TS))
		}
	case plan.Dynamic:
		u.Helper("getObject")
		lines = append(lines, fmt.Sprintf("const result = %s as number%s;", expr, nullUnion(mt)))
		if plan.Throws {
			lines = append(lines, "throwIfError(error);")
		}
		if mt.Nullable {
			lines = append(lines, fmt.Sprintf("return result === null ? null : (getObject(result) as %s);", mt.TS))
		} else {
			lines = append(lines, fmt.Sprintf("return getObject(result) as %s;", mt.TS))
		}
	case plan.WrapIn != "":
		u.Helper("getObject")
		lines = append(lines, fmt.Sprintf("const result = %s as number%s;", expr, nullUnion(mt)))
		if plan.Throws {
			lines = append(lines, "throwIfError(error);")
		}
		if mt.Nullable {
			lines = append(lines, fmt.Sprintf("return result === null ? null : getObject(result, %s);", plan.WrapIn))
		} else {
			lines = append(lines, fmt.Sprintf("return getObject(result, %s);", plan.WrapIn))
		}
	case plan.Throws:
		lines = append(lines, fmt.Sprintf("const result = %s%s;", expr, castSuffix(mt.TSNullable())))
		lines = append(lines, "throwIfError(error);")
		lines = append(lines, "return result;")
	default:
		lines = append(lines, fmt.Sprintf("return %s%s;", expr, castSuffix(mt.TSNullable())))
	}
	return lines
}

func nullUnion(mt typemap.MappedType) string {
	if mt.Nullable {
		return " | null"
	}
	return ""
}

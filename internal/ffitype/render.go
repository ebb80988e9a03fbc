package ffitype

import (
	"fmt"
	"strconv"
	"strings"
)

// Render serializes a descriptor to the object-literal form the runtime
// dispatcher consumes, e.g. `{ type: "int", size: 32, unsigned: false }`.
// Field order is fixed so generated sources are byte-stable across runs.
func Render(t Type) string {
	if t == nil {
		return Render(Undefined{})
	}
	var b strings.Builder
	writeType(&b, t)
	return b.String()
}

func writeType(b *strings.Builder, t Type) {
	b.WriteString(`{ type: "`)
	b.WriteString(string(t.Kind()))
	b.WriteString(`"`)
	switch v := t.(type) {
	case Int:
		field(b, "size", strconv.Itoa(v.Size))
		field(b, "unsigned", strconv.FormatBool(v.Unsigned))
		// the native dispatcher keys signedness off "signed", defaulting
		// to unsigned when the key is absent
		field(b, "signed", strconv.FormatBool(!v.Unsigned))
	case Float:
		field(b, "size", strconv.Itoa(v.Size))
	case String:
		field(b, "borrowed", strconv.FormatBool(v.Borrowed))
	case GObject:
		field(b, "borrowed", strconv.FormatBool(v.Borrowed))
	case GVariant:
		field(b, "borrowed", strconv.FormatBool(v.Borrowed))
	case Boxed:
		field(b, "borrowed", strconv.FormatBool(v.Borrowed))
		field(b, "innerType", strconv.Quote(v.InnerType))
		field(b, "lib", strconv.Quote(v.Lib))
		field(b, "getTypeFn", strconv.Quote(v.GetTypeFn))
	case Array:
		field(b, "itemType", Render(v.ItemType))
		if v.ListType != ListNone {
			field(b, "listType", strconv.Quote(string(v.ListType)))
		}
		field(b, "borrowed", strconv.FormatBool(v.Borrowed))
	case Callback:
		tramp := v.Trampoline
		if tramp == "" {
			tramp = TrampolineClosure
		}
		field(b, "trampoline", strconv.Quote(string(tramp)))
		switch tramp {
		case TrampolineAsyncReady:
			field(b, "sourceType", Render(v.SourceType))
			field(b, "resultType", Render(v.ResultType))
		case TrampolineClosure, TrampolineDrawFunc:
			if len(v.ArgTypes) > 0 || tramp == TrampolineClosure {
				field(b, "argTypes", renderList(v.ArgTypes))
			}
			if tramp == TrampolineClosure {
				field(b, "returnType", Render(v.ReturnType))
			}
		}
	case Ref:
		field(b, "innerType", Render(v.InnerType))
	}
	b.WriteString(" }")
}

func field(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, ", %s: %s", name, value)
}

func renderList(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = Render(t)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Package naming holds the identifier-casing helpers shared by the
// registry and the generators. All transforms are pure and deterministic so
// repeated generation runs over identical input produce identical output.
package naming

import (
	"strings"
	"unicode"
)

// tsReserved lists TypeScript/JavaScript keywords that cannot be used as
// parameter or method identifiers in generated code.
var tsReserved = map[string]bool{
	"arguments": true, "await": true, "break": true, "case": true,
	"catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true,
	"interface": true, "let": true, "new": true, "null": true,
	"package": true, "private": true, "protected": true, "public": true,
	"return": true, "static": true, "super": true, "switch": true,
	"this": true, "throw": true, "true": true, "try": true,
	"typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
}

// splitWords breaks an identifier into lowercase word fragments. Underscores,
// hyphens and colons (signal detail separators) all delimit; an interior
// upper-case run starts a new word so PascalCase input survives a round trip.
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	prevLower := false
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == ':' || r == '.' || r == ' ':
			flush()
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				flush()
			}
			cur.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			cur.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	flush()
	return words
}

// ToCamel converts snake_case, kebab-case or Pascal input to camelCase:
// "new_with_label" -> "newWithLabel", "value-changed" -> "valueChanged".
func ToCamel(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// ToPascal converts any supported casing to PascalCase.
func ToPascal(s string) string {
	var b strings.Builder
	for _, w := range splitWords(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// ToKebab converts an identifier to kebab-case, used for generated file
// names: "HeaderBar" -> "header-bar".
func ToKebab(s string) string {
	return strings.Join(splitWords(s), "-")
}

// ToUpperSnake converts an identifier to UPPER_SNAKE, used for enum member
// names. A leading digit gets an underscore prefix so the result stays a
// legal identifier.
func ToUpperSnake(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	out := strings.Join(words, "_")
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}

func capitalize(w string) string {
	if w == "" {
		return ""
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// SafeIdent rewrites identifiers that collide with TypeScript keywords by
// appending an underscore.
func SafeIdent(s string) string {
	if s == "" {
		return "_"
	}
	if tsReserved[s] {
		return s + "_"
	}
	if unicode.IsDigit(rune(s[0])) {
		return "_" + s
	}
	return s
}

// NormalizeClassName produces the transformed (binding-surface) name for a
// registered type. When the plain Pascal form is already claimed by another
// namespace the name is disambiguated with the namespace prefix, e.g. a
// second "Settings" becomes "GioSettings". taken reports whether a candidate
// is claimed by a different namespace; it may be nil.
func NormalizeClassName(namespace, name string, taken func(string) bool) string {
	base := ToPascal(name)
	if taken == nil || !taken(base) {
		return base
	}
	return ToPascal(namespace) + base
}

// SplitQualified splits "Gtk.Widget" into ("Gtk", "Widget", true). Names
// without a separator return ok=false.
func SplitQualified(name string) (namespace, local string, ok bool) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return "", name, false
	}
	return name[:i], name[i+1:], true
}

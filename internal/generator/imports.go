package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ivan-banha/gtkx-sub001/internal/naming"
	"github.com/ivan-banha/gtkx-sub001/internal/typemap"
)

// typeOnlyHelpers are runtime exports only ever used in type position.
var typeOnlyHelpers = map[string]bool{"Ref": true}

// buildImports synthesizes the import block of one generated module from
// its usage record. valueUses names the qualified types the module needs at
// runtime (extends clauses, getObject wrap targets); everything else is
// imported type-only, which is what keeps cyclic references legal.
func buildImports(u *typemap.Usage, valueUses map[string]bool, namespace, runtime, selfQualified string) []string {
	var lines []string

	if len(u.Helpers) > 0 {
		names := make([]string, 0, len(u.Helpers))
		for h := range u.Helpers {
			names = append(names, h)
		}
		sort.Strings(names)
		for i, n := range names {
			if typeOnlyHelpers[n] {
				names[i] = "type " + n
			}
		}
		lines = append(lines, fmt.Sprintf("import { %s } from %q;", strings.Join(names, ", "), runtime))
	}

	// foreign namespaces collapse to one star import each
	foreign := map[string]bool{}      // namespace -> seen
	foreignValue := map[string]bool{} // namespace -> has runtime use
	noteForeign := func(e *typemap.Entry) {
		if e.Namespace == namespace {
			return
		}
		foreign[e.Namespace] = true
		if valueUses[e.Qualified()] {
			foreignValue[e.Namespace] = true
		}
	}

	var classFiles []string
	var enums, records, ifaces []string
	for _, e := range u.Types {
		if e.Qualified() == selfQualified {
			continue
		}
		if e.Namespace != namespace {
			noteForeign(e)
			continue
		}
		if e.Kind == typemap.KindInterface {
			ifaces = append(ifaces, e.TransformedName)
			continue
		}
		file := naming.ToKebab(e.TransformedName) + ".js"
		if valueUses[e.Qualified()] {
			classFiles = append(classFiles, fmt.Sprintf("import { %s } from \"./%s\";", e.TransformedName, file))
		} else {
			classFiles = append(classFiles, fmt.Sprintf("import type { %s } from \"./%s\";", e.TransformedName, file))
		}
	}
	for _, e := range u.Enums {
		if e.Namespace != namespace {
			noteForeign(e)
			continue
		}
		enums = append(enums, e.TransformedName)
	}
	for _, e := range u.Records {
		if e.Namespace != namespace {
			noteForeign(e)
			continue
		}
		if valueUses[e.Qualified()] {
			records = append(records, e.TransformedName)
		} else {
			records = append(records, "type "+e.TransformedName)
		}
	}

	foreignNames := make([]string, 0, len(foreign))
	for ns := range foreign {
		foreignNames = append(foreignNames, ns)
	}
	sort.Strings(foreignNames)
	for _, ns := range foreignNames {
		spec := fmt.Sprintf("\"../%s/index.js\"", strings.ToLower(ns))
		if foreignValue[ns] {
			lines = append(lines, fmt.Sprintf("import * as %s from %s;", ns, spec))
		} else {
			lines = append(lines, fmt.Sprintf("import type * as %s from %s;", ns, spec))
		}
	}

	sort.Strings(classFiles)
	lines = append(lines, classFiles...)

	if len(enums) > 0 {
		sort.Strings(enums)
		lines = append(lines, fmt.Sprintf("import type { %s } from \"./enums.js\";", strings.Join(enums, ", ")))
	}
	if len(records) > 0 {
		sort.Strings(records)
		lines = append(lines, fmt.Sprintf("import { %s } from \"./records.js\";", strings.Join(records, ", ")))
	}
	if len(ifaces) > 0 {
		sort.Strings(ifaces)
		lines = append(lines, fmt.Sprintf("import type { %s } from \"./interfaces.js\";", strings.Join(ifaces, ", ")))
	}
	return lines
}

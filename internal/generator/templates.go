package generator

import (
	"embed"
	"fmt"
	"sync"
	"text/template"
)

const (
	tmplClass      = "class"
	tmplEnums      = "enums"
	tmplRecords    = "records"
	tmplInterfaces = "interfaces"
	tmplJSX        = "jsx"
	tmplMeta       = "meta"
	tmplIndex      = "index"
	tmplRegistry   = "registry"
)

const templatePattern = "templates/*.gtpl"

//go:embed templates/*.gtpl
var templatesFS embed.FS

var (
	fileTmpl     *template.Template
	tmplInitOnce sync.Once
	tmplInitErr  error
)

// validateTemplates ensures every emitted module kind has a template
func validateTemplates() error {
	requiredTemplates := []string{
		tmplClass,
		tmplEnums,
		tmplRecords,
		tmplInterfaces,
		tmplJSX,
		tmplMeta,
		tmplIndex,
		tmplRegistry,
	}
	for _, name := range requiredTemplates {
		if fileTmpl.Lookup(name) == nil {
			return fmt.Errorf("required template %q not found", name)
		}
	}

	// Shared partials the module templates dispatch into.
	requiredPartials := []string{
		"header",
		"doc",
		"params",
		"method",
	}
	for _, name := range requiredPartials {
		if fileTmpl.Lookup(name) == nil {
			return fmt.Errorf("required partial template %q not found", name)
		}
	}
	return nil
}

// ensureTemplates parses and validates templates exactly once.
func ensureTemplates() error {
	tmplInitOnce.Do(func() {
		var t *template.Template
		t, tmplInitErr = template.New(tmplClass).ParseFS(templatesFS, templatePattern)
		if tmplInitErr != nil {
			return
		}
		fileTmpl = t
		tmplInitErr = validateTemplates()
	})
	return tmplInitErr
}

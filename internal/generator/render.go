package generator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ivan-banha/gtkx-sub001/internal/tsfmt"
)

// renderArtifact executes the artifact's template and formats the result.
// Formatting failure is not fatal: the unformatted source is still
// syntactically complete, so it is kept as-is with a warning.
func renderArtifact(a artifact) ([]byte, error) {
	if err := ensureTemplates(); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := fileTmpl.ExecuteTemplate(&out, a.Template, a.Data); err != nil {
		return nil, fmt.Errorf("render %s: %w", a.Path, err)
	}
	formatted, err := tsfmt.Format(out.String())
	if err != nil {
		log.Warningf("formatting %s failed, writing unformatted: %s", a.Path, err.Error())
		return out.Bytes(), nil
	}
	return []byte(formatted), nil
}

// writeArtifacts renders every artifact and writes it under root.
func writeArtifacts(root string, artifacts []artifact) error {
	for _, a := range artifacts {
		data, err := renderArtifact(a)
		if err != nil {
			return err
		}
		target := filepath.Join(root, filepath.FromSlash(a.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

package gir

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// ParseRepository decodes a .gir document from r.
func ParseRepository(r io.Reader) (*Repository, error) {
	var repo Repository
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&repo); err != nil {
		return nil, fmt.Errorf("decode gir document: %w", err)
	}
	if repo.Namespace.Name == "" {
		return nil, fmt.Errorf("gir document has no namespace")
	}
	return &repo, nil
}

// ParseFile decodes the .gir document at path.
func ParseFile(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gir file: %w", err)
	}
	defer f.Close()
	repo, err := ParseRepository(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return repo, nil
}

// Package storage writes request attachments to local disk under
// requests/{documentID}/{filename}.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Saver stores attachment files under a base directory.
type Saver struct {
	baseDir string
}

// NewSaver creates a saver rooted at baseDir.
func NewSaver(baseDir string) *Saver {
	return &Saver{baseDir: baseDir}
}

// Save streams src to requests/{documentID}/{filename} under the base
// directory and returns the relative path. The filename is reduced to its
// base so callers cannot escape the directory.
func (s *Saver) Save(documentID, filename string, src io.Reader) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("nombre de archivo inválido: %q", filename)
	}
	rel := filepath.Join("requests", documentID, name)
	full := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("crear directorio: %w", err)
	}
	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("crear archivo: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("escribir archivo: %w", err)
	}
	return rel, nil
}

// Package display writes the "currently viewing" hint the web map polls.
package display

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Marker owns <dir>/catchable-<username>.json.
type Marker struct {
	path string
}

// NewMarker returns a Marker for username under dir.
func NewMarker(dir, username string) *Marker {
	return &Marker{path: filepath.Join(dir, "catchable-"+username+".json")}
}

// Path returns the marker file location.
func (m *Marker) Path() string {
	return m.path
}

// Flash writes v and then immediately resets the file to an empty object.
func (m *Marker) Flash(v any) error {
	if err := m.write(v); err != nil {
		return err
	}
	return m.write(struct{}{})
}

func (m *Marker) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding marker: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("creating marker dir: %w", err)
	}
	if err := renameio.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("writing marker %s: %w", m.path, err)
	}
	return nil
}

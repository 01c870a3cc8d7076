package repositories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// jsonDocument is a single JSON file that is read in full and rewritten in
// full on every operation. mu serializes read-modify-write cycles within the
// process; the file itself is replaced atomically so readers never observe a
// partial write.
type jsonDocument struct {
	path  string
	empty []byte
	mu    sync.RWMutex
}

func newJSONDocument(path string, empty []byte) *jsonDocument {
	return &jsonDocument{path: path, empty: empty}
}

// read decodes the document into v, creating it with the empty content if
// the file does not exist yet.
func (d *jsonDocument) read(v any) error {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := d.write(json.RawMessage(d.empty)); err != nil {
			return err
		}
		data = d.empty
	} else if err != nil {
		return fmt.Errorf("failed to read %s: %w", d.path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", d.path, err)
	}
	return nil
}

func (d *jsonDocument) write(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := atomic.WriteFile(d.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", d.path, err)
	}
	return nil
}

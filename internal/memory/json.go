package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONFile stores the transcript as one pretty-printed JSON array that is
// rewritten in full after every exchange.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile { return &JSONFile{path: path} }

func (j *JSONFile) Load() ([]Entry, error) {
	b, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", j.path, err)
	}
	return entries, nil
}

func (j *JSONFile) Save(all []Entry, _ Entry) error {
	if all == nil {
		all = []Entry{}
	}
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(j.path, b)
}

func (j *JSONFile) Clear() error { return j.Save(nil, Entry{}) }

func (j *JSONFile) Close() error { return nil }

func writeFileAtomic(path string, b []byte) error {
	if path == "" {
		return fmt.Errorf("empty memory path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

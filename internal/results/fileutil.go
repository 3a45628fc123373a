package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeAtomic writes data next to path in a temp file and renames it into
// place, so readers see either the old store or the new one, never a torn write.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmpName, path, err)
	}
	tmpName = ""
	return nil
}

// writeRecords persists recs as a pretty-printed JSON array. A nil slice is
// written as [] so the file always parses as a collection.
func writeRecords(path string, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	data = append(data, '\n')
	return writeAtomic(path, data)
}

// readRecords reads the record collection at path. The os error is returned
// unwrapped for a missing file so callers can test it with errors.Is.
func readRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return recs, nil
}

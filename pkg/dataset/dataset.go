package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Record is one line of a dataset file. Fields are kept raw so callers can pick
// whichever column names their dataset uses.
type Record map[string]json.RawMessage

// Load reads a JSON array of objects, falling back to JSON Lines when the
// input is not a single array. Blank lines are ignored.
func Load(r io.Reader) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	records = records[:0]
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// String returns the first of keys present in the record, rendered as text.
// Numbers and booleans are returned in their JSON form.
func (r Record) String(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		if trimmed := strings.TrimSpace(string(v)); trimmed != "null" {
			return trimmed
		}
	}
	return ""
}

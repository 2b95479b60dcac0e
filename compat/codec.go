package compat

import (
	"encoding/json"
	"fmt"
	"io"
)

// LoadTable reads a JSON document of the form {pluginID: row, ...} and builds
// a table from it. This is the extension point for hosts that ship their own
// compatibility data.
func LoadTable(r io.Reader, opts ...TableOption) (*Table, error) {
	var rows map[string]Row
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("compat: decode table: %w", err)
	}
	return NewTable(rows, opts...), nil
}

// EncodeTo writes the table back out in the format LoadTable reads.
func (t *Table) EncodeTo(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.rows); err != nil {
		return fmt.Errorf("compat: encode table: %w", err)
	}
	return nil
}

package mdtable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Table is a table delivered as structured data rather than markdown text.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Markdown renders t as a pipe table exactly as given, with no padding or
// repair. It returns "" when the table has no headers or no row list.
func (t *Table) Markdown() string {
	if t == nil || len(t.Headers) == 0 || t.Rows == nil {
		return ""
	}
	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, "| "+strings.Join(t.Headers, " | ")+" |")

	dashes := make([]string, len(t.Headers))
	for i := range dashes {
		dashes[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(dashes, " | ")+" |")

	for _, r := range t.Rows {
		lines = append(lines, "| "+strings.Join(r, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

// Content is a field that may arrive either as free text or as a structured
// table. The shape is decided once, when the JSON is decoded.
type Content struct {
	Raw   string
	Table *Table
}

// Text returns free-text content.
func Text(s string) Content { return Content{Raw: s} }

// Structured returns table content.
func Structured(headers []string, rows [][]string) Content {
	return Content{Table: &Table{Headers: headers, Rows: rows}}
}

// IsStructured reports whether the content arrived as a table object.
func (c Content) IsStructured() bool { return c.Table != nil }

// IsZero reports whether there is nothing to render.
func (c Content) IsZero() bool { return c.Table == nil && strings.TrimSpace(c.Raw) == "" }

// Markdown returns the markdown form of the content. Structured tables are
// converted verbatim; free text is returned as is and left to Normalize.
func (c Content) Markdown() string {
	if c.Table != nil {
		return c.Table.Markdown()
	}
	return c.Raw
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = Content{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &c.Raw)
	case '{':
		var t Table
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("decode table content: %w", err)
		}
		c.Table = &t
		return nil
	default:
		// Numbers, booleans and arrays are kept as their JSON text.
		c.Raw = string(data)
		return nil
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Table != nil {
		return json.Marshal(c.Table)
	}
	return json.Marshal(c.Raw)
}

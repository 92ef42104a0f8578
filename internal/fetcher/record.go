// Package fetcher streams tabular rows out of CSV and XLSX sources.
package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Record is one data row keyed by normalized header name.
type Record struct {
	Line   int // 1-based source line (CSV) or row (XLSX), header is line 1
	Fields map[string]string
}

// Get returns the trimmed value of the named column.
func (r Record) Get(col string) string {
	return r.Fields[col]
}

// NormalizeHeader lowercases and trims a header cell, dropping any UTF-8 BOM.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// header maps positional cells to column names.
type header []string

func parseHeader(cells []string) (header, error) {
	h := make(header, len(cells))
	seen := make(map[string]bool, len(cells))
	for i, c := range cells {
		name := NormalizeHeader(c)
		if name == "" {
			return nil, eris.Errorf("header: column %d is blank", i+1)
		}
		if seen[name] {
			return nil, eris.Errorf("header: duplicate column %q", name)
		}
		seen[name] = true
		h[i] = name
	}
	return h, nil
}

func (h header) record(line int, cells []string) (Record, error) {
	if len(cells) != len(h) {
		return Record{}, eris.Errorf("line %d: has %d fields, header has %d", line, len(cells), len(h))
	}
	fields := make(map[string]string, len(h))
	for i, name := range h {
		fields[name] = strings.TrimSpace(cells[i])
	}
	return Record{Line: line, Fields: fields}, nil
}

// Columns returns the header in source order.
func (h header) Columns() []string {
	out := make([]string, len(h))
	copy(out, h)
	return out
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

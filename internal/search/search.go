// Package search accumulates per-page search records and emits the client-side
// search payload.
package search

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputPath is the site-relative location of the search payload host page.
const OutputPath = "ресурси/пошук.html"

// Record is one page's searchable content.
type Record struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Path    string `json:"path"`
}

// Index is the build-scoped, append-only record sequence.
type Index struct {
	records []Record
}

// Add appends a record. Records are never modified after they are added.
func (i *Index) Add(r Record) {
	i.records = append(i.records, r)
}

// Len returns the number of records.
func (i *Index) Len() int {
	return len(i.records)
}

// Records returns a copy of the accumulated records in insertion order.
func (i *Index) Records() []Record {
	out := make([]Record, len(i.records))
	copy(out, i.records)
	return out
}

// Payload serializes the records and escapes the result for embedding inside a
// double-quoted script string.
func (i *Index) Payload() (string, error) {
	records := i.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshal search records: %w", err)
	}
	return Escape(string(data)), nil
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Escape escapes backslashes and double quotes.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Package archivetest builds in-memory Yomitan archives for parser and
// importer tests.
package archivetest

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
)

// Index mirrors the index.json fields tests care about.
type Index struct {
	Title       string `json:"title"`
	Revision    string `json:"revision,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Format      int    `json:"format"`
}

// File is one named JSON file in the archive.
type File struct {
	Name string
	Rows []any
}

// TermRow builds a term bank row for expression/reading with glossary
// strings.
func TermRow(expression, reading string, glosses ...string) []any {
	g := make([]any, len(glosses))
	for i, s := range glosses {
		g[i] = s
	}
	return []any{expression, reading, "", "", 0, g, 0, ""}
}

// FreqRow builds a term meta bank frequency row with a bare numeric value.
func FreqRow(expression string, value int64) []any {
	return []any{expression, "freq", value}
}

// Build assembles a zip archive with the given index and bank files.
func Build(t *testing.T, idx Index, files ...File) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	writeJSON(t, zw, "index.json", idx)
	for _, f := range files {
		writeJSON(t, zw, f.Name, f.Rows)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("archivetest: close zip: %v", err)
	}
	return buf.Bytes()
}

// BuildSimple assembles a one-bank archive with the given term rows.
func BuildSimple(t *testing.T, title string, rows ...[]any) []byte {
	t.Helper()

	anyRows := make([]any, len(rows))
	for i, r := range rows {
		anyRows[i] = r
	}
	return Build(t, Index{Title: title, Revision: "1", Format: 3},
		File{Name: "term_bank_1.json", Rows: anyRows})
}

func writeJSON(t *testing.T, zw *zip.Writer, name string, v any) {
	t.Helper()

	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("archivetest: create %s: %v", name, err)
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("archivetest: encode %s: %v", name, err)
	}
}

// ManyTermRows builds n distinct term rows ("word0001"...) for batch tests.
func ManyTermRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		word := fmt.Sprintf("word%04d", i+1)
		rows[i] = TermRow(word, "", "gloss of "+word)
	}
	return rows
}

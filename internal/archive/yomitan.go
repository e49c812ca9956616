package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/marumori/jiten/internal/domain"
)

// YomitanParser reads Yomitan/Yomichan dictionary archives: a zip holding
// index.json plus numbered term_bank_*.json and term_meta_bank_*.json files.
type YomitanParser struct{}

type yomitanIndex struct {
	Title       string `json:"title"`
	Revision    string `json:"revision"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// hasYomitanIndex reports whether the zip carries a parseable index.json
// with a title — the Yomitan marker.
func hasYomitanIndex(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	idx, err := readIndex(zr)
	return err == nil && idx.Title != ""
}

func readIndex(zr *zip.Reader) (*yomitanIndex, error) {
	f, err := zr.Open("index.json")
	if err != nil {
		return nil, fmt.Errorf("index.json: %w", err)
	}
	defer f.Close()

	var idx yomitanIndex
	if err := json.NewDecoder(f).Decode(&idx); err != nil {
		return nil, fmt.Errorf("index.json: %w", err)
	}
	return &idx, nil
}

// Parse reads metadata eagerly and returns a lazy reader over the bank
// files. Banks are consumed in name order; progress is reported at bank
// granularity.
func (YomitanParser) Parse(data []byte) (domain.DictionaryMeta, EntryReader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.DictionaryMeta{}, nil, fmt.Errorf("open archive: %w: %v", domain.ErrValidation, err)
	}

	idx, err := readIndex(zr)
	if err != nil {
		return domain.DictionaryMeta{}, nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if idx.Title == "" {
		return domain.DictionaryMeta{}, nil, fmt.Errorf("archive index has no title: %w", domain.ErrValidation)
	}

	meta := domain.DictionaryMeta{
		Name:        idx.Title,
		Version:     idx.Revision,
		Description: idx.Description,
		URL:         idx.URL,
	}

	var banks []*zip.File
	for _, f := range zr.File {
		name := f.Name
		if strings.HasPrefix(name, "term_bank_") || strings.HasPrefix(name, "term_meta_bank_") {
			banks = append(banks, f)
		}
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].Name < banks[j].Name })

	return meta, &yomitanReader{banks: banks}, nil
}

// yomitanReader walks bank files one at a time, holding only the current
// bank's rows in memory.
type yomitanReader struct {
	banks     []*zip.File
	bankIdx   int
	pending   []Entry
	pendingAt int
}

func (r *yomitanReader) Next() (*Entry, error) {
	for {
		if r.pendingAt < len(r.pending) {
			e := r.pending[r.pendingAt]
			r.pendingAt++
			return &e, nil
		}
		if r.bankIdx >= len(r.banks) {
			return nil, io.EOF
		}

		bank := r.banks[r.bankIdx]
		entries, err := parseBank(bank)
		if err != nil {
			return nil, err
		}
		r.bankIdx++
		r.pending = entries
		r.pendingAt = 0
	}
}

func (r *yomitanReader) Frac() float64 {
	if len(r.banks) == 0 {
		return 1
	}
	return float64(r.bankIdx) / float64(len(r.banks))
}

func parseBank(f *zip.File) ([]Entry, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	var rows []json.RawMessage
	if err := json.NewDecoder(rc).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", f.Name, domain.ErrValidation, err)
	}

	isMeta := strings.HasPrefix(f.Name, "term_meta_bank_")
	var entries []Entry
	for i, row := range rows {
		var e *Entry
		if isMeta {
			e, err = parseMetaRow(row)
		} else {
			e, err = parseTermRow(row)
		}
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w: %v", f.Name, i, domain.ErrValidation, err)
		}
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

// parseTermRow decodes one term bank row:
// [expression, reading, definitionTags, rules, score, glossary, sequence, termTags]
func parseTermRow(row json.RawMessage) (*Entry, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(row, &fields); err != nil {
		return nil, err
	}
	if len(fields) < 6 {
		return nil, fmt.Errorf("term row has %d fields, want >= 6", len(fields))
	}

	var expression, reading string
	if err := json.Unmarshal(fields[0], &expression); err != nil {
		return nil, fmt.Errorf("expression: %v", err)
	}
	if err := json.Unmarshal(fields[1], &reading); err != nil {
		return nil, fmt.Errorf("reading: %v", err)
	}

	term, err := domain.NewTerm(expression, reading)
	if err != nil {
		return nil, err
	}

	var tagsRaw string
	_ = json.Unmarshal(fields[2], &tagsRaw)
	var tags []string
	if tagsRaw != "" {
		tags = strings.Fields(tagsRaw)
	}

	var glosses []json.RawMessage
	if err := json.Unmarshal(fields[5], &glosses); err != nil {
		return nil, fmt.Errorf("glossary: %v", err)
	}
	content := make([]string, 0, len(glosses))
	for _, g := range glosses {
		var s string
		if err := json.Unmarshal(g, &s); err == nil {
			content = append(content, s)
			continue
		}
		// Structured glossary content is kept as its JSON text.
		content = append(content, string(g))
	}

	return &Entry{
		Term:    term,
		Payload: domain.Glossary{Content: content, Tags: tags},
	}, nil
}

// parseMetaRow decodes one term meta bank row: [expression, mode, data].
// Frequency data may be a bare number, {value, displayValue} or
// {reading, frequency}. Pitch data is {reading, pitches: [{position}]}.
// Unknown modes are skipped, not fatal.
func parseMetaRow(row json.RawMessage) (*Entry, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(row, &fields); err != nil {
		return nil, err
	}
	if len(fields) < 3 {
		return nil, fmt.Errorf("meta row has %d fields, want 3", len(fields))
	}

	var expression, mode string
	if err := json.Unmarshal(fields[0], &expression); err != nil {
		return nil, fmt.Errorf("expression: %v", err)
	}
	if err := json.Unmarshal(fields[1], &mode); err != nil {
		return nil, fmt.Errorf("mode: %v", err)
	}

	switch mode {
	case "freq":
		reading, freq, err := parseFrequencyData(fields[2])
		if err != nil {
			return nil, err
		}
		term, err := domain.NewTerm(expression, reading)
		if err != nil {
			return nil, err
		}
		return &Entry{Term: term, Payload: freq}, nil
	case "pitch":
		reading, pitch, err := parsePitchData(fields[2])
		if err != nil {
			return nil, err
		}
		term, err := domain.NewTerm(expression, reading)
		if err != nil {
			return nil, err
		}
		return &Entry{Term: term, Payload: pitch}, nil
	}
	return nil, nil
}

func parseFrequencyData(raw json.RawMessage) (string, domain.Frequency, error) {
	// Yomitan frequency values are ranks: smaller means more common.
	freq := domain.Frequency{Mode: domain.FrequencyRank}

	var value int64
	if err := json.Unmarshal(raw, &value); err == nil {
		freq.Value = value
		return "", freq, nil
	}

	var obj struct {
		Value        *int64          `json:"value"`
		DisplayValue string          `json:"displayValue"`
		Reading      string          `json:"reading"`
		Frequency    json.RawMessage `json:"frequency"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", freq, fmt.Errorf("frequency data: %v", err)
	}

	if obj.Value != nil {
		freq.Value = *obj.Value
		freq.Display = obj.DisplayValue
		return obj.Reading, freq, nil
	}
	if obj.Frequency != nil {
		_, inner, err := parseFrequencyData(obj.Frequency)
		if err != nil {
			return "", freq, err
		}
		return obj.Reading, inner, nil
	}
	return "", freq, fmt.Errorf("frequency data has no value")
}

func parsePitchData(raw json.RawMessage) (string, domain.Pitch, error) {
	var obj struct {
		Reading string `json:"reading"`
		Pitches []struct {
			Position int `json:"position"`
		} `json:"pitches"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", domain.Pitch{}, fmt.Errorf("pitch data: %v", err)
	}

	downsteps := make([]int, 0, len(obj.Pitches))
	for _, p := range obj.Pitches {
		downsteps = append(downsteps, p.Position)
	}
	return obj.Reading, domain.Pitch{Downsteps: downsteps}, nil
}

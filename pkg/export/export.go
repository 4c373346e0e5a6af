// Package export serializes a snapshot for download.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/constants"
	"github.com/iwvelando/anticrisis-view/pkg/labels"
	"github.com/shopspring/decimal"
)

// CSVOptions tune the tabular export.
type CSVOptions struct {
	// IncludeFinModel appends the financial-model rows, when present, before
	// the crisis rows.
	IncludeFinModel bool
}

// JSON returns the snapshot as indented JSON with keys in received order and
// no label substitution.
func JSON(s *snapshot.Snapshot) ([]byte, error) {
	if s == nil {
		return nil, snapshot.ErrIncompleteSnapshot
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", constants.JSONIndent); err != nil {
		return nil, fmt.Errorf("failed to indent snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// FromJSON decodes a document produced by JSON.
func FromJSON(data []byte) (*snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// Row is one (section, metric, value) line of the tabular export.
type Row struct {
	Section string
	Metric  string
	Value   string
}

// Rows builds the export rows, header excluded: every section in export
// order with keys in received order, then the crisis type, raw confidence and
// reasoning.
func Rows(s *snapshot.Snapshot, r *labels.Resolver, opts CSVOptions) []Row {
	if r == nil {
		r = labels.Default()
	}
	kinds := append([]snapshot.SectionKind(nil), snapshot.ExportOrder...)
	if opts.IncludeFinModel && s.FinModel != nil {
		kinds = append(kinds, snapshot.FinModel)
	}

	var rows []Row
	for _, kind := range kinds {
		title := r.SectionTitle(kind)
		for _, e := range s.Section(kind).Entries() {
			rows = append(rows, Row{Section: title, Metric: r.Resolve(kind, e.Key), Value: Number(e.Value)})
		}
	}

	c := r.Captions()
	rows = append(rows,
		Row{Section: c.Crisis, Metric: c.Type, Value: s.Crisis.Name},
		Row{Section: c.Crisis, Metric: c.Confidence, Value: Number(s.Crisis.Confidence)},
		Row{Section: c.Crisis, Metric: c.Reasoning, Value: s.Crisis.Reasoning},
	)
	return rows
}

// CSV renders the snapshot as a semicolon-separated table prefixed with a
// UTF-8 byte order mark. Every cell is quoted and rows are joined by "\n"
// with no trailing newline.
func CSV(s *snapshot.Snapshot, r *labels.Resolver, opts CSVOptions) []byte {
	if r == nil {
		r = labels.Default()
	}
	c := r.Captions()
	lines := []string{joinCells(c.Section, c.Metric, c.Value)}
	for _, row := range Rows(s, r, opts) {
		lines = append(lines, joinCells(row.Section, row.Metric, row.Value))
	}
	return []byte(constants.ByteOrderMark + strings.Join(lines, constants.CSVRowDelimiter))
}

func joinCells(cells ...string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = quote(cell)
	}
	return strings.Join(quoted, constants.CSVFieldDelimiter)
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// Number renders v in its shortest decimal form (1000, 0.82, 1.5).
func Number(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// Filename builds "<domain>_org<id>_period<id>[_<label>].<ext>".
func Filename(domain string, orgID, periodID int64, label, ext string) string {
	name := fmt.Sprintf("%s_org%d_period%d", domain, orgID, periodID)
	if label != "" {
		name += "_" + sanitize(label)
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

// JSONFilename is the download name of the JSON export. It falls back to
// "export" when the period has no label.
func JSONFilename(s *snapshot.Snapshot) string {
	label := s.Period.Label
	if label == "" {
		label = constants.FallbackExportLabel
	}
	return Filename(constants.Domain, s.OrganizationID(), s.Period.ID, label, "json")
}

// CSVFilename is the download name of the CSV export.
func CSVFilename(s *snapshot.Snapshot) string {
	return Filename(constants.Domain, s.OrganizationID(), s.Period.ID, "", "csv")
}

// sanitize strips path separators and quotes so the label is usable in a
// file name and a Content-Disposition header.
func sanitize(label string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, label)
}

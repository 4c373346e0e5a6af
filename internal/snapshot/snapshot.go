// Package snapshot defines the period read model (one reporting period of
// one organization with its statements, coefficients and crisis
// classification) and assembles it from a backend source.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/iwvelando/anticrisis-view/pkg/datetime"
)

// SectionKind identifies one of the per-period section maps.
type SectionKind int

const (
	// Balance is the balance sheet (ББЛ).
	Balance SectionKind = iota
	// IncomeExpense is the income and expense statement (БДР).
	IncomeExpense
	// CashFlow is the cash-flow statement (БДДС).
	CashFlow
	// Coefficients are the ratios computed by the backend.
	Coefficients
	// FinModel holds the derived financial-model metrics. It is optional.
	FinModel
)

// ExportOrder is the fixed order in which sections are listed and exported.
var ExportOrder = []SectionKind{Balance, IncomeExpense, CashFlow, Coefficients}

// String returns the wire name of the section as used by the backend.
func (k SectionKind) String() string {
	switch k {
	case Balance:
		return "balance"
	case IncomeExpense:
		return "bdr"
	case CashFlow:
		return "bdds"
	case Coefficients:
		return "coefficients"
	case FinModel:
		return "fin_model"
	default:
		return "section(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseSectionKind maps a wire name back to its kind.
func ParseSectionKind(name string) (SectionKind, error) {
	for _, k := range []SectionKind{Balance, IncomeExpense, CashFlow, Coefficients, FinModel} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown section %q", name)
}

// Names of the non-section fetches, used in FetchError.
const (
	PeriodFetch = "period"
	CrisisFetch = "crisis"
)

// Timestamp accepts the naive datetimes the backend emits ("2026-01-01T00:00:00")
// as well as RFC 3339.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s using the layouts the backend is known to produce.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := datetime.Parse(s)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{Time: t}, nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Period is a reporting interval of one organization. It is created by the
// backend and never mutated here.
type Period struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id,omitempty"`
	Type           string     `json:"period_type,omitempty"`
	Label          string     `json:"label"`
	Start          *Timestamp `json:"period_start,omitempty"`
	End            *Timestamp `json:"period_end,omitempty"`
}

// Crisis is the backend's classification of the organization's distress
// pattern for one period.
type Crisis struct {
	Code       string  `json:"crisis_type_code"`
	Name       string  `json:"crisis_type_name"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// CrisisType is one entry of the backend's crisis catalogue.
type CrisisType struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Entry is one key/value pair of a Section.
type Entry struct {
	Key   string
	Value float64
}

// Section is an ordered mapping of field keys to values. Keys keep the order
// in which the backend sent them; missing keys are absent, not zero.
type Section struct {
	entries []Entry
}

// NewSection builds a section from entries. A repeated key keeps its first
// position and takes the last value.
func NewSection(entries ...Entry) Section {
	var s Section
	for _, e := range entries {
		s.set(e.Key, e.Value)
	}
	return s
}

func (s *Section) set(key string, value float64) {
	for i := range s.entries {
		if s.entries[i].Key == key {
			s.entries[i].Value = value
			return
		}
	}
	s.entries = append(s.entries, Entry{Key: key, Value: value})
}

// Len returns the number of keys present.
func (s Section) Len() int {
	return len(s.entries)
}

// Get returns the value stored under key.
func (s Section) Get(key string) (float64, bool) {
	for _, e := range s.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return 0, false
}

// Keys returns the keys in received order.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Entries returns a copy of the entries in received order.
func (s Section) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Equal reports whether both sections hold the same keys, in the same order,
// with the same values.
func (s Section) Equal(other Section) bool {
	if len(s.entries) != len(other.entries) {
		return false
	}
	for i := range s.entries {
		if s.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}

// MarshalJSON writes the section as a JSON object in key order.
func (s Section) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", e.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object of numbers, keeping key order.
// Null values are treated as absent keys.
func (s *Section) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = Section{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("section: expected object, got %v", tok)
	}

	var out Section
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("section: unexpected key %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		switch v := valTok.(type) {
		case nil:
			continue
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return fmt.Errorf("section: field %s: %w", key, err)
			}
			out.set(key, f)
		default:
			return fmt.Errorf("section: field %s is not a number", key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// ErrIncompleteSnapshot is returned when a snapshot is built without its
// crisis classification.
var ErrIncompleteSnapshot = errors.New("snapshot is missing its crisis classification")

// Snapshot is the aggregate read model of one (organization, period) pair.
// All parts share the period's identity.
type Snapshot struct {
	Period        Period   `json:"period"`
	Balance       Section  `json:"balance"`
	IncomeExpense Section  `json:"bdr"`
	CashFlow      Section  `json:"bdds"`
	Coefficients  Section  `json:"coefficients"`
	Crisis        Crisis   `json:"crisis"`
	FinModel      *Section `json:"fin_model,omitempty"`
}

// Parts groups the pieces a Snapshot is built from.
type Parts struct {
	Period        Period
	Balance       Section
	IncomeExpense Section
	CashFlow      Section
	Coefficients  Section
	Crisis        *Crisis
	FinModel      *Section
}

// New builds a Snapshot. The crisis classification is required.
func New(p Parts) (*Snapshot, error) {
	if p.Crisis == nil {
		return nil, ErrIncompleteSnapshot
	}
	return &Snapshot{
		Period:        p.Period,
		Balance:       p.Balance,
		IncomeExpense: p.IncomeExpense,
		CashFlow:      p.CashFlow,
		Coefficients:  p.Coefficients,
		Crisis:        *p.Crisis,
		FinModel:      p.FinModel,
	}, nil
}

// OrganizationID returns the owning organization of the snapshot's period.
func (s *Snapshot) OrganizationID() int64 {
	return s.Period.OrganizationID
}

// Section returns the section of the given kind. FinModel is empty when the
// snapshot was assembled without it.
func (s *Snapshot) Section(kind SectionKind) Section {
	switch kind {
	case Balance:
		return s.Balance
	case IncomeExpense:
		return s.IncomeExpense
	case CashFlow:
		return s.CashFlow
	case Coefficients:
		return s.Coefficients
	case FinModel:
		if s.FinModel != nil {
			return *s.FinModel
		}
	}
	return Section{}
}

// UnmarshalJSON decodes a snapshot and rejects documents without a crisis
// classification.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Period        Period   `json:"period"`
		Balance       Section  `json:"balance"`
		IncomeExpense Section  `json:"bdr"`
		CashFlow      Section  `json:"bdds"`
		Coefficients  Section  `json:"coefficients"`
		Crisis        *Crisis  `json:"crisis"`
		FinModel      *Section `json:"fin_model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	built, err := New(Parts{
		Period:        raw.Period,
		Balance:       raw.Balance,
		IncomeExpense: raw.IncomeExpense,
		CashFlow:      raw.CashFlow,
		Coefficients:  raw.Coefficients,
		Crisis:        raw.Crisis,
		FinModel:      raw.FinModel,
	})
	if err != nil {
		return err
	}
	*s = *built
	return nil
}

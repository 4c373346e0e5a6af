// Package output renders snapshots, periods, organizations and remediation
// plans for the terminal.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iwvelando/anticrisis-view/internal/backend"
	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/datetime"
	"github.com/iwvelando/anticrisis-view/pkg/format"
	"github.com/iwvelando/anticrisis-view/pkg/labels"
	"golang.org/x/text/message"
)

// TableFormat writes a human-readable rather than machine-readable view of the
// snapshot: one block per section, then the crisis classification.
func TableFormat(w io.Writer, s *snapshot.Snapshot, r *labels.Resolver) error {
	if r == nil {
		r = labels.Default()
	}
	p := message.NewPrinter(r.Tag())
	c := r.Captions()

	title := s.Period.Label
	if title == "" {
		title = fmt.Sprintf("#%d", s.Period.ID)
	}
	if _, err := fmt.Fprintf(w, "--- %s (org %d, period %d) ---\n", title, s.OrganizationID(), s.Period.ID); err != nil {
		return err
	}

	kinds := append([]snapshot.SectionKind(nil), snapshot.ExportOrder...)
	if s.FinModel != nil {
		kinds = append(kinds, snapshot.FinModel)
	}
	for _, kind := range kinds {
		if err := writeSection(w, p, r, kind, s.Section(kind), c); err != nil {
			return err
		}
	}

	_, err := p.Fprintf(w, "\n%s\n%s | %s\n%s | %s\n%s | %s\n",
		c.Crisis,
		pad(c.Type, 12), s.Crisis.Name,
		pad(c.Confidence, 12), format.Percent(s.Crisis.Confidence),
		pad(c.Reasoning, 12), s.Crisis.Reasoning,
	)
	return err
}

func writeSection(w io.Writer, p *message.Printer, r *labels.Resolver, kind snapshot.SectionKind, section snapshot.Section, c labels.Captions) error {
	if _, err := p.Fprintf(w, "\n%s\n%s | %s\n%s | %s\n",
		r.SectionTitle(kind),
		pad(c.Metric, 32), c.Value,
		strings.Repeat("_", 32), strings.Repeat("_", 13),
	); err != nil {
		return err
	}
	if section.Len() == 0 {
		_, err := fmt.Fprintf(w, "%s | %s\n", pad("", 32), format.Placeholder)
		return err
	}
	for _, e := range section.Entries() {
		if _, err := fmt.Fprintf(w, "%s | %s\n", pad(r.Resolve(kind, e.Key), 32), format.Number(e.Value, r.Tag())); err != nil {
			return err
		}
	}
	return nil
}

// PeriodsFormat lists periods one per line.
func PeriodsFormat(w io.Writer, periods []snapshot.Period) error {
	if _, err := fmt.Fprintf(w, "%s | %s | %s | %s\n", pad("ID", 6), pad("Type", 8), pad("Range", 23), "Label"); err != nil {
		return err
	}
	for _, period := range periods {
		if _, err := fmt.Fprintf(w, "%s | %s | %s | %s\n",
			pad(fmt.Sprint(period.ID), 6), pad(period.Type, 8), pad(periodRange(period), 23), period.Label,
		); err != nil {
			return err
		}
	}
	return nil
}

func periodRange(p snapshot.Period) string {
	var start, end *time.Time
	if p.Start != nil {
		start = &p.Start.Time
	}
	if p.End != nil {
		end = &p.End.Time
	}
	return datetime.Range(start, end)
}

// pad right-pads s to width runes. Labels are often Cyrillic, so byte-based
// %-Ns widths would misalign.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// OrganizationsFormat lists organizations one per line.
func OrganizationsFormat(w io.Writer, orgs []backend.Organization) error {
	if _, err := fmt.Fprintf(w, "%s | %s\n", pad("ID", 6), "Name"); err != nil {
		return err
	}
	for _, org := range orgs {
		if _, err := fmt.Fprintf(w, "%s | %s\n", pad(fmt.Sprint(org.ID), 6), org.Name); err != nil {
			return err
		}
	}
	return nil
}

// CrisisTypesFormat lists the crisis catalogue one type per line.
func CrisisTypesFormat(w io.Writer, types []snapshot.CrisisType) error {
	if len(types) == 0 {
		_, err := fmt.Fprintln(w, format.Placeholder)
		return err
	}
	for _, t := range types {
		if _, err := fmt.Fprintf(w, "%s | %s\n", pad(t.Code, 24), t.Name); err != nil {
			return err
		}
	}
	return nil
}

// PlansFormat lists remediation plans with their items. Crisis type codes are
// shown by their catalogue name when the catalogue knows them.
func PlansFormat(w io.Writer, plans []backend.Plan, types []snapshot.CrisisType) error {
	if len(plans) == 0 {
		_, err := fmt.Fprintln(w, "No plans yet")
		return err
	}
	names := make(map[string]string, len(types))
	for _, t := range types {
		names[t.Code] = t.Name
	}

	for i, plan := range plans {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "--- #%d %s (%d/%d done) ---\n", plan.ID, plan.Title, plan.Done(), len(plan.Items)); err != nil {
			return err
		}
		if plan.CrisisTypeCode != "" {
			name, ok := names[plan.CrisisTypeCode]
			if !ok {
				name = plan.CrisisTypeCode
			}
			if _, err := fmt.Fprintf(w, "Crisis type: %s\n", name); err != nil {
				return err
			}
		}
		for _, item := range plan.Items {
			mark := " "
			if item.Completed {
				mark = "x"
			}
			due := format.Placeholder
			if item.DueDate != nil {
				due = item.DueDate.Format(datetime.DayLayout)
			}
			if _, err := fmt.Fprintf(w, "[%s] %s | %s | %s\n", mark, pad(item.Title, 40), pad(item.Stage, 16), due); err != nil {
				return err
			}
		}
	}
	return nil
}

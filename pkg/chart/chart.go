// Package chart turns snapshot parts into plain series for a chart renderer.
package chart

import (
	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/format"
	"github.com/iwvelando/anticrisis-view/pkg/labels"
)

// Point is one named value of a series.
type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Bars returns one point per key of the section, in received order, named by
// its resolved label.
func Bars(kind snapshot.SectionKind, section snapshot.Section, r *labels.Resolver) []Point {
	if r == nil {
		r = labels.Default()
	}
	points := make([]Point, 0, section.Len())
	for _, e := range section.Entries() {
		points = append(points, Point{Name: r.Resolve(kind, e.Key), Value: e.Value})
	}
	return points
}

// CrisisPie splits 100 between the classified crisis and an "other" slice.
func CrisisPie(c snapshot.Crisis, r *labels.Resolver) []Point {
	if r == nil {
		r = labels.Default()
	}
	share := format.ConfidencePercent(c.Confidence)
	rest := 100 - share
	if rest < 0 {
		rest = 0
	}
	return []Point{
		{Name: c.Name, Value: float64(share)},
		{Name: r.Captions().Other, Value: float64(rest)},
	}
}

// Feed bundles every series the dashboard draws for one snapshot.
type Feed struct {
	Balance       []Point `json:"balance"`
	IncomeExpense []Point `json:"bdr"`
	CashFlow      []Point `json:"bdds"`
	Coefficients  []Point `json:"coefficients"`
	Crisis        []Point `json:"crisis"`
	FinModel      []Point `json:"fin_model,omitempty"`
}

// Build returns the full chart feed for s. The fin-model series is present
// only when s carries a financial model.
func Build(s *snapshot.Snapshot, r *labels.Resolver) Feed {
	feed := Feed{
		Balance:       Bars(snapshot.Balance, s.Balance, r),
		IncomeExpense: Bars(snapshot.IncomeExpense, s.IncomeExpense, r),
		CashFlow:      Bars(snapshot.CashFlow, s.CashFlow, r),
		Coefficients:  Bars(snapshot.Coefficients, s.Coefficients, r),
		Crisis:        CrisisPie(s.Crisis, r),
	}
	if s.FinModel != nil {
		feed.FinModel = Bars(snapshot.FinModel, *s.FinModel, r)
	}
	return feed
}

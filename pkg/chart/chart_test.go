package chart

import (
	"testing"

	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/labels"
	"github.com/iwvelando/anticrisis-view/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarsKeepKeyOrder(t *testing.T) {
	section := snapshot.NewSection(
		snapshot.Entry{Key: "payables", Value: 3},
		snapshot.Entry{Key: "cash", Value: 1000},
		snapshot.Entry{Key: "goodwill", Value: 7},
	)

	got := Bars(snapshot.Balance, section, nil)
	assert.Equal(t, []Point{
		{Name: "Payables", Value: 3},
		{Name: "Cash", Value: 1000},
		{Name: "goodwill", Value: 7},
	}, got)
}

func TestBarsEmptySection(t *testing.T) {
	got := Bars(snapshot.CashFlow, snapshot.Section{}, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCrisisPie(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		share      float64
		other      float64
	}{
		{name: "typical", confidence: 0.82, share: 82, other: 18},
		{name: "certain", confidence: 1, share: 100, other: 0},
		{name: "above one clamps other", confidence: 1.2, share: 120, other: 0},
		{name: "zero", confidence: 0, share: 0, other: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pie := CrisisPie(snapshot.Crisis{Name: "Liquidity Crisis", Confidence: tt.confidence}, nil)
			require.Len(t, pie, 2)
			assert.Equal(t, Point{Name: "Liquidity Crisis", Value: tt.share}, pie[0])
			assert.Equal(t, Point{Name: "Other", Value: tt.other}, pie[1])
		})
	}
}

func TestCrisisPieRussianOther(t *testing.T) {
	r, err := labels.New("ru", nil)
	require.NoError(t, err)

	pie := CrisisPie(snapshot.Crisis{Name: "Кризис ликвидности", Confidence: 0.5}, r)
	assert.Equal(t, "Прочее", pie[1].Name)
}

func TestBuild(t *testing.T) {
	s, err := snapshot.New(snapshot.Parts{
		Coefficients: snapshot.NewSection(snapshot.Entry{Key: "roe", Value: 0.1}),
		Crisis:       &snapshot.Crisis{Name: "Growth", Confidence: 0.4},
	})
	require.NoError(t, err)

	feed := Build(s, nil)
	assert.Equal(t, []Point{{Name: "ROE", Value: 0.1}}, feed.Coefficients)
	assert.Empty(t, feed.Balance)
	assert.Equal(t, float64(60), feed.Crisis[1].Value)
}

func TestBuildFullSnapshot(t *testing.T) {
	s := testutil.Snapshot(t)

	feed := Build(s, nil)
	require.Len(t, feed.Balance, s.Balance.Len())
	assert.Equal(t, Point{Name: "Cash", Value: 1000}, feed.Balance[0])
	assert.Len(t, feed.IncomeExpense, 2)
	assert.Len(t, feed.CashFlow, 1)
	assert.Equal(t, []Point{
		{Name: "Liquidity Crisis", Value: 82},
		{Name: "Other", Value: 18},
	}, feed.Crisis)
}

func TestBuildFinModelSeries(t *testing.T) {
	s := testutil.Snapshot(t)
	feed := Build(s, nil)
	assert.Nil(t, feed.FinModel, "no series without a financial model")

	fm := snapshot.NewSection(
		snapshot.Entry{Key: labels.TotalAssets, Value: 7000},
		snapshot.Entry{Key: labels.BreakEvenRevenue, Value: 2500},
	)
	s.FinModel = &fm

	feed = Build(s, nil)
	assert.Equal(t, []Point{
		{Name: "Total assets", Value: 7000},
		{Name: "Break-even revenue", Value: 2500},
	}, feed.FinModel)
}

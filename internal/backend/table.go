package backend

import (
	"context"
	"fmt"

	"github.com/iwvelando/anticrisis-view/internal/snapshot"
)

// Table is the combined period payload served by the table endpoint.
type Table struct {
	Period        snapshot.Period   `json:"period"`
	Balance       snapshot.Section  `json:"balance"`
	IncomeExpense snapshot.Section  `json:"bdr"`
	CashFlow      snapshot.Section  `json:"bdds"`
	Coefficients  snapshot.Section  `json:"coefficients"`
	Crisis        snapshot.Crisis   `json:"crisis"`
	FinModel      *snapshot.Section `json:"fin_model"`
}

// TableSource implements snapshot.Source on top of the table endpoint. The
// readers of one Assemble call share a single request; separate calls always
// issue their own. Table failures are reported under the "table" fetch for
// every section.
type TableSource struct {
	client *Client
}

// NewTableSource wraps client.
func NewTableSource(client *Client) *TableSource {
	return &TableSource{client: client}
}

// Table fetches the combined payload of one period.
func (t *TableSource) Table(ctx context.Context, orgID, periodID int64) (*Table, error) {
	key := fmt.Sprintf("table/%d/%d", orgID, periodID)
	v, err := snapshot.Shared(ctx, key, func(ctx context.Context) (any, error) {
		var out Table
		if err := t.client.get(ctx, TableFetch, periodPath(orgID, periodID, "table"), &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Period returns the period of the table.
func (t *TableSource) Period(ctx context.Context, orgID, periodID int64) (snapshot.Period, error) {
	tb, err := t.Table(ctx, orgID, periodID)
	if err != nil {
		return snapshot.Period{}, err
	}
	return tb.Period, nil
}

// Section returns one section of the table. A table without a financial
// model yields an empty section.
func (t *TableSource) Section(ctx context.Context, orgID, periodID int64, kind snapshot.SectionKind) (snapshot.Section, error) {
	tb, err := t.Table(ctx, orgID, periodID)
	if err != nil {
		return snapshot.Section{}, err
	}
	switch kind {
	case snapshot.Balance:
		return tb.Balance, nil
	case snapshot.IncomeExpense:
		return tb.IncomeExpense, nil
	case snapshot.CashFlow:
		return tb.CashFlow, nil
	case snapshot.Coefficients:
		return tb.Coefficients, nil
	case snapshot.FinModel:
		if tb.FinModel != nil {
			return *tb.FinModel, nil
		}
		return snapshot.Section{}, nil
	}
	return snapshot.Section{}, &snapshot.FetchError{Section: kind.String(), Message: "unknown section"}
}

// Crisis returns the crisis classification of the table.
func (t *TableSource) Crisis(ctx context.Context, orgID, periodID int64) (snapshot.Crisis, error) {
	tb, err := t.Table(ctx, orgID, periodID)
	if err != nil {
		return snapshot.Crisis{}, err
	}
	return tb.Crisis, nil
}

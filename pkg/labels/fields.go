package labels

import "github.com/iwvelando/anticrisis-view/internal/snapshot"

// Balance sheet fields.
const (
	NoncurrentAssets     = "noncurrent_assets"
	CurrentAssets        = "current_assets"
	Equity               = "equity"
	LongTermLiabilities  = "long_term_liabilities"
	ShortTermLiabilities = "short_term_liabilities"
	Receivables          = "receivables"
	Payables             = "payables"
	Cash                 = "cash"
)

// Income and expense statement fields. Profit is derived by the backend.
const (
	Revenue           = "revenue"
	CostOfSales       = "cost_of_sales"
	OperatingExpenses = "operating_expenses"
	OtherIncome       = "other_income"
	OtherExpenses     = "other_expenses"
	Profit            = "profit"
)

// Cash-flow statement fields.
const (
	CashBegin         = "cash_begin"
	InflowsOperating  = "inflows_operating"
	OutflowsOperating = "outflows_operating"
	InflowsInvesting  = "inflows_investing"
	OutflowsInvesting = "outflows_investing"
	InflowsFinancing  = "inflows_financing"
	OutflowsFinancing = "outflows_financing"
	CashEnd           = "cash_end"
)

// Coefficient fields.
const (
	CurrentRatio      = "current_ratio"
	QuickRatio        = "quick_ratio"
	AbsoluteLiquidity = "absolute_liquidity"
	Autonomy          = "autonomy"
	DebtToEquity      = "debt_to_equity"
	ROA               = "roa"
	ROE               = "roe"
	ProfitMargin      = "profit_margin"
)

// Financial model fields.
const (
	TotalAssets       = "total_assets"
	TotalLiabilities  = "total_liabilities"
	EquityRatio       = "equity_ratio"
	GrossProfit       = "gross_profit"
	GrossMargin       = "gross_margin"
	BreakEvenRevenue  = "break_even_revenue"
	OperatingCashFlow = "operating_cash_flow"
	InvestingCashFlow = "investing_cash_flow"
	FinancingCashFlow = "financing_cash_flow"
	NetCashFlow       = "net_cash_flow"
	CashEndCalculated = "cash_end_calculated"
)

var fields = map[snapshot.SectionKind][]string{
	snapshot.Balance: {
		NoncurrentAssets, CurrentAssets, Equity, LongTermLiabilities,
		ShortTermLiabilities, Receivables, Payables, Cash,
	},
	snapshot.IncomeExpense: {
		Revenue, CostOfSales, OperatingExpenses, OtherIncome, OtherExpenses, Profit,
	},
	snapshot.CashFlow: {
		CashBegin, InflowsOperating, OutflowsOperating, InflowsInvesting,
		OutflowsInvesting, InflowsFinancing, OutflowsFinancing, CashEnd,
	},
	snapshot.Coefficients: {
		CurrentRatio, QuickRatio, AbsoluteLiquidity, Autonomy,
		DebtToEquity, ROA, ROE, ProfitMargin,
	},
	snapshot.FinModel: {
		TotalAssets, TotalLiabilities, EquityRatio, Profit, ProfitMargin,
		GrossProfit, GrossMargin, BreakEvenRevenue, OperatingCashFlow,
		InvestingCashFlow, FinancingCashFlow, NetCashFlow, CashEndCalculated,
	},
}

// Fields returns the closed set of known keys for a section, in display order.
func Fields(kind snapshot.SectionKind) []string {
	return append([]string(nil), fields[kind]...)
}

// Known reports whether key belongs to the section's closed key set.
func Known(kind snapshot.SectionKind, key string) bool {
	for _, f := range fields[kind] {
		if f == key {
			return true
		}
	}
	return false
}

package labels

import "github.com/iwvelando/anticrisis-view/internal/snapshot"

// Captions are the fixed strings of the tabular views and the CSV export.
type Captions struct {
	Section    string
	Metric     string
	Value      string
	Crisis     string
	Type       string
	Confidence string
	Reasoning  string
	Other      string
}

// Catalogue holds every display string of one locale.
type Catalogue struct {
	Captions Captions
	Sections map[snapshot.SectionKind]string
	Fields   map[snapshot.SectionKind]map[string]string
}

func (c Catalogue) clone() Catalogue {
	out := Catalogue{
		Captions: c.Captions,
		Sections: make(map[snapshot.SectionKind]string, len(c.Sections)),
		Fields:   make(map[snapshot.SectionKind]map[string]string, len(c.Fields)),
	}
	for k, v := range c.Sections {
		out.Sections[k] = v
	}
	for kind, m := range c.Fields {
		cp := make(map[string]string, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out.Fields[kind] = cp
	}
	return out
}

var english = Catalogue{
	Captions: Captions{
		Section:    "Section",
		Metric:     "Metric",
		Value:      "Value",
		Crisis:     "Crisis",
		Type:       "Type",
		Confidence: "Confidence",
		Reasoning:  "Reasoning",
		Other:      "Other",
	},
	Sections: map[snapshot.SectionKind]string{
		snapshot.Balance:       "Balance",
		snapshot.IncomeExpense: "Income & Expense",
		snapshot.CashFlow:      "Cash Flow",
		snapshot.Coefficients:  "Coefficients",
		snapshot.FinModel:      "Financial Model",
	},
	Fields: map[snapshot.SectionKind]map[string]string{
		snapshot.Balance: {
			NoncurrentAssets:     "Non-current assets",
			CurrentAssets:        "Current assets",
			Equity:               "Equity",
			LongTermLiabilities:  "Long-term liabilities",
			ShortTermLiabilities: "Short-term liabilities",
			Receivables:          "Receivables",
			Payables:             "Payables",
			Cash:                 "Cash",
		},
		snapshot.IncomeExpense: {
			Revenue:           "Revenue",
			CostOfSales:       "Cost of sales",
			OperatingExpenses: "Operating expenses",
			OtherIncome:       "Other income",
			OtherExpenses:     "Other expenses",
			Profit:            "Profit",
		},
		snapshot.CashFlow: {
			CashBegin:         "Opening balance",
			InflowsOperating:  "Inflows (operating)",
			OutflowsOperating: "Outflows (operating)",
			InflowsInvesting:  "Inflows (investing)",
			OutflowsInvesting: "Outflows (investing)",
			InflowsFinancing:  "Inflows (financing)",
			OutflowsFinancing: "Outflows (financing)",
			CashEnd:           "Closing balance",
		},
		snapshot.Coefficients: {
			CurrentRatio:      "Current ratio",
			QuickRatio:        "Quick ratio",
			AbsoluteLiquidity: "Absolute liquidity",
			Autonomy:          "Autonomy",
			DebtToEquity:      "Debt to equity",
			ROA:               "ROA",
			ROE:               "ROE",
			ProfitMargin:      "Profit margin",
		},
		snapshot.FinModel: {
			TotalAssets:       "Total assets",
			TotalLiabilities:  "Total liabilities",
			EquityRatio:       "Equity ratio",
			Profit:            "Profit",
			ProfitMargin:      "Profit margin",
			GrossProfit:       "Gross profit",
			GrossMargin:       "Gross margin",
			BreakEvenRevenue:  "Break-even revenue",
			OperatingCashFlow: "Cash flow (operating)",
			InvestingCashFlow: "Cash flow (investing)",
			FinancingCashFlow: "Cash flow (financing)",
			NetCashFlow:       "Net change in cash",
			CashEndCalculated: "Closing balance (calculated)",
		},
	},
}

var russian = Catalogue{
	Captions: Captions{
		Section:    "Раздел",
		Metric:     "Показатель",
		Value:      "Значение",
		Crisis:     "Кризис",
		Type:       "Тип",
		Confidence: "Уверенность",
		Reasoning:  "Обоснование",
		Other:      "Прочее",
	},
	Sections: map[snapshot.SectionKind]string{
		snapshot.Balance:       "Баланс",
		snapshot.IncomeExpense: "БДР",
		snapshot.CashFlow:      "БДДС",
		snapshot.Coefficients:  "Коэффициенты",
		snapshot.FinModel:      "Фин. модель",
	},
	Fields: map[snapshot.SectionKind]map[string]string{
		snapshot.Balance: {
			NoncurrentAssets:     "Внеоборотные активы",
			CurrentAssets:        "Оборотные активы",
			Equity:               "Собственный капитал",
			LongTermLiabilities:  "Долгосрочные обязательства",
			ShortTermLiabilities: "Краткосрочные обязательства",
			Receivables:          "Дебиторская задолженность",
			Payables:             "Кредиторская задолженность",
			Cash:                 "Денежные средства",
		},
		snapshot.IncomeExpense: {
			Revenue:           "Выручка",
			CostOfSales:       "Себестоимость",
			OperatingExpenses: "Операционные расходы",
			OtherIncome:       "Прочие доходы",
			OtherExpenses:     "Прочие расходы",
			Profit:            "Прибыль",
		},
		snapshot.CashFlow: {
			CashBegin:         "Остаток на начало",
			InflowsOperating:  "Поступления (опер.)",
			OutflowsOperating: "Выплаты (опер.)",
			InflowsInvesting:  "Поступления (инв.)",
			OutflowsInvesting: "Выплаты (инв.)",
			InflowsFinancing:  "Поступления (фин.)",
			OutflowsFinancing: "Выплаты (фин.)",
			CashEnd:           "Остаток на конец",
		},
		snapshot.Coefficients: {
			CurrentRatio:      "Текущая ликвидность",
			QuickRatio:        "Быстрая ликвидность",
			AbsoluteLiquidity: "Абсолютная ликвидность",
			Autonomy:          "Автономия",
			DebtToEquity:      "Заёмные/собственные",
			ROA:               "ROA",
			ROE:               "ROE",
			ProfitMargin:      "Рентабельность продаж",
		},
		snapshot.FinModel: {
			TotalAssets:       "Всего активов",
			TotalLiabilities:  "Всего обязательств",
			EquityRatio:       "Доля собственного капитала",
			Profit:            "Прибыль",
			ProfitMargin:      "Рентабельность продаж",
			GrossProfit:       "Валовая прибыль",
			GrossMargin:       "Валовая маржа",
			BreakEvenRevenue:  "Выручка ТБУ",
			OperatingCashFlow: "ДП (опер.)",
			InvestingCashFlow: "ДП (инв.)",
			FinancingCashFlow: "ДП (фин.)",
			NetCashFlow:       "Чистое изменение денег",
			CashEndCalculated: "Остаток на конец (расч.)",
		},
	},
}

package core

// MonthlyTotals sums the current calendar month.
type MonthlyTotals struct {
	TotalIncome   Money `json:"totalIncome" yaml:"totalIncome"`
	TotalExpenses Money `json:"totalExpenses" yaml:"totalExpenses"`
	NetSavings    Money `json:"netSavings" yaml:"netSavings"`
}

// CategoryAmount is an expense total for one category.
type CategoryAmount struct {
	Category   Category `json:"category"`
	Amount     Money    `json:"amount"`
	Percentage int      `json:"percentage"`
}

// BudgetStatus is a budget with its utilisation. Remaining goes negative when over budget.
type BudgetStatus struct {
	Budget
	PercentageUsed float64 `json:"percentageUsed"`
	Remaining      Money   `json:"remaining"`
}

// OverBudget reports whether spent exceeds the limit.
func (s BudgetStatus) OverBudget() bool { return s.Remaining.IsNegative() }

// WeekTotal is the expense total for one seven-day window.
type WeekTotal struct {
	Start Date  `json:"start"`
	End   Date  `json:"end"`
	Total Money `json:"total"`
}

// WeeklyTrend holds the last four weeks, oldest first.
type WeeklyTrend struct {
	Weeks        []WeekTotal `json:"weeks"`
	WeeklyChange float64     `json:"weeklyChange"`
}

// HealthReport is the financial health score with its inputs.
type HealthReport struct {
	Score            int      `json:"score"`
	Label            string   `json:"label"`
	ExpenseRatio     float64  `json:"expenseRatio"`
	BudgetCompliance float64  `json:"budgetCompliance"`
	SavingsRate      float64  `json:"savingsRate"`
	Tips             []string `json:"tips"`
}

// AnalyticsSummary is the body of the analytics read.
type AnalyticsSummary struct {
	MonthlyTotals
	CategorySpending map[Category]Money `json:"categorySpending"`
	BudgetStatus     []BudgetStatus     `json:"budgetStatus"`
}

// Insight is one piece of advisory feedback.
type Insight struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// Tip is a categorised recommendation.
type Tip struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Priority        string `json:"priority"`
	Actionable      bool   `json:"actionable"`
	EstimatedImpact string `json:"estimatedImpact"`
	Timeframe       string `json:"timeframe"`
}

// AssetSummary values the portfolio in one currency.
type AssetSummary struct {
	Currency   string              `json:"currency"`
	TotalValue Money               `json:"totalValue"`
	Count      int                 `json:"count"`
	ByType     map[AssetType]Money `json:"byType"`
	Unpriced   []int64             `json:"unpriced,omitempty"`
}

// Package analytics computes read-time summaries over the ledger. Nothing
// here is persisted; every figure is derived from the slices passed in.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

// Aggregator scopes month-based figures to the month of its clock.
type Aggregator struct {
	now func() time.Time
}

func New(now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{now: now}
}

func (a *Aggregator) today() core.Date { return core.DateOf(a.now()) }

// Month is the current calendar month as YYYY-MM.
func (a *Aggregator) Month() string { return a.now().Format("2006-01") }

func (a *Aggregator) inCurrentMonth(t core.Transaction) bool {
	now := a.now()
	return t.Date.InMonth(now.Year(), now.Month())
}

// MonthlyTotals sums income and expenses dated in the current month.
func (a *Aggregator) MonthlyTotals(txs []core.Transaction) core.MonthlyTotals {
	var out core.MonthlyTotals
	for _, t := range txs {
		if !a.inCurrentMonth(t) {
			continue
		}
		switch t.Type {
		case core.IncomeType:
			out.TotalIncome = out.TotalIncome.Add(t.Amount)
		case core.ExpenseType:
			out.TotalExpenses = out.TotalExpenses.Add(t.Amount)
		}
	}
	out.NetSavings = out.TotalIncome.Sub(out.TotalExpenses)
	return out
}

// CategorySpending maps each category to its expenses this month. Categories
// without expenses are absent.
func (a *Aggregator) CategorySpending(txs []core.Transaction) map[core.Category]core.Money {
	out := make(map[core.Category]core.Money)
	for _, t := range txs {
		if !t.IsExpense() || !a.inCurrentMonth(t) {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// TopCategories returns up to n categories by spending this month, largest
// first, with their share of the month's expenses.
func (a *Aggregator) TopCategories(txs []core.Transaction, n int) []core.CategoryAmount {
	spending := a.CategorySpending(txs)
	total := core.Zero
	out := make([]core.CategoryAmount, 0, len(spending))
	for c, amt := range spending {
		total = total.Add(amt)
		out = append(out, core.CategoryAmount{Category: c, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Percentage = int(math.Round(percent(out[i].Amount, total)))
	}
	return out
}

// BudgetStatus reports utilisation for every budget. Spent is all-time.
func (a *Aggregator) BudgetStatus(budgets []core.Budget) []core.BudgetStatus {
	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, core.BudgetStatus{
			Budget:         b,
			PercentageUsed: round2(percent(b.Spent, b.Amount)),
			Remaining:      b.Amount.Sub(b.Spent),
		})
	}
	return out
}

// WeeklyTrend sums expenses over the four seven-day windows before today,
// oldest first. Window k (0 = most recent) runs from today-(k+1)*7 for
// seven days inclusive.
func (a *Aggregator) WeeklyTrend(txs []core.Transaction) core.WeeklyTrend {
	today := a.today()
	weeks := make([]core.WeekTotal, 0, 4)
	for k := 3; k >= 0; k-- {
		start := today.AddDays(-(k + 1) * 7)
		weeks = append(weeks, core.WeekTotal{Start: start, End: start.AddDays(6), Total: core.Zero})
	}
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		for i := range weeks {
			if t.Date.Between(weeks[i].Start, weeks[i].End) {
				weeks[i].Total = weeks[i].Total.Add(t.Amount)
			}
		}
	}
	current, previous := weeks[3].Total, weeks[2].Total
	change := 0.0
	if previous.IsPositive() {
		change = round2(percent(current.Sub(previous), previous))
	}
	return core.WeeklyTrend{Weeks: weeks, WeeklyChange: change}
}

// BudgetCompliance is the percentage of budgets with spent <= amount, 100
// when there are none.
func BudgetCompliance(budgets []core.Budget) float64 {
	if len(budgets) == 0 {
		return 100
	}
	within := 0
	for _, b := range budgets {
		if b.Spent.Cmp(b.Amount) <= 0 {
			within++
		}
	}
	return round2(float64(within) / float64(len(budgets)) * 100)
}

// SavingsRate is net savings as a percentage of income, 0 without income.
func SavingsRate(m core.MonthlyTotals) float64 {
	return round2(percent(m.NetSavings, m.TotalIncome))
}

// ExpenseRatio is expenses as a percentage of income, 0 without income.
func ExpenseRatio(m core.MonthlyTotals) float64 {
	return round2(percent(m.TotalExpenses, m.TotalIncome))
}

// HealthScore weighs the expense ratio (40%), budget compliance (30%) and
// savings rate (30%) into an integer in [0, 100].
func HealthScore(expenseRatio, compliance, savingsRate float64) int {
	expenseScore := math.Max(0, 100-expenseRatio)
	savingsScore := math.Min(100, math.Max(0, savingsRate*5))
	score := int(math.Round(expenseScore*0.4 + compliance*0.3 + savingsScore*0.3))
	return max(0, min(100, score))
}

// HealthLabel names a score band.
func HealthLabel(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Very Good"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Fair"
	case score >= 40:
		return "Poor"
	}
	return "Critical"
}

// Health builds the full report for this month.
func (a *Aggregator) Health(txs []core.Transaction, budgets []core.Budget) core.HealthReport {
	m := a.MonthlyTotals(txs)
	r := core.HealthReport{
		ExpenseRatio:     ExpenseRatio(m),
		BudgetCompliance: BudgetCompliance(budgets),
		SavingsRate:      SavingsRate(m),
	}
	r.Score = HealthScore(r.ExpenseRatio, r.BudgetCompliance, r.SavingsRate)
	r.Label = HealthLabel(r.Score)

	if m.TotalIncome.IsPositive() && r.ExpenseRatio > 80 {
		r.Tips = append(r.Tips, "Consider reducing expenses to improve your financial health")
	}
	if r.BudgetCompliance < 80 {
		r.Tips = append(r.Tips, "Stay within budget limits to maintain financial discipline")
	}
	if r.SavingsRate < 10 {
		r.Tips = append(r.Tips, "Aim to save at least 10-20% of your income")
	}
	if len(r.Tips) == 0 {
		r.Tips = []string{"Great job! Keep maintaining your financial discipline"}
	}
	return r
}

// Summary is the combined analytics read.
func (a *Aggregator) Summary(txs []core.Transaction, budgets []core.Budget) core.AnalyticsSummary {
	return core.AnalyticsSummary{
		MonthlyTotals:    a.MonthlyTotals(txs),
		CategorySpending: a.CategorySpending(txs),
		BudgetStatus:     a.BudgetStatus(budgets),
	}
}

// percent returns part/whole*100, or 0 when whole is zero.
func percent(part, whole core.Money) float64 {
	if whole.IsZero() {
		return 0
	}
	f, _ := part.Decimal().Div(whole.Decimal()).Mul(decimal.NewFromInt(100)).Float64()
	return f
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

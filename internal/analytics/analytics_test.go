package analytics

import (
	"testing"
	"time"

	"budgetbuddy/internal/core"
)

var now = time.Date(2025, 3, 29, 10, 0, 0, 0, time.UTC)

func newAgg() *Aggregator { return New(func() time.Time { return now }) }

func tx(amount string, c core.Category, typ core.TransactionType, d core.Date) core.Transaction {
	return core.Transaction{Amount: core.MustMoney(amount), Category: c, Type: typ, Date: d}
}

func TestMonthlyTotalsScopedToCalendarMonth(t *testing.T) {
	txs := []core.Transaction{
		tx("3000", core.Income, core.IncomeType, core.NewDate(2025, 3, 1)),
		tx("120.50", core.Food, core.ExpenseType, core.NewDate(2025, 3, 28)),
		tx("999", core.Food, core.ExpenseType, core.NewDate(2025, 2, 28)),
		tx("50", core.Shopping, core.ExpenseType, core.NewDate(2024, 3, 10)),
	}
	m := newAgg().MonthlyTotals(txs)
	if m.TotalIncome.String() != "3000.00" || m.TotalExpenses.String() != "120.50" || m.NetSavings.String() != "2879.50" {
		t.Fatalf("totals = %+v", m)
	}
}

func TestEmptyLedger(t *testing.T) {
	a := newAgg()
	m := a.MonthlyTotals(nil)
	if !m.TotalIncome.IsZero() || !m.TotalExpenses.IsZero() || !m.NetSavings.IsZero() {
		t.Fatalf("totals = %+v", m)
	}
	if got := a.CategorySpending(nil); len(got) != 0 {
		t.Fatalf("category spending = %v", got)
	}
	if SavingsRate(m) != 0 || ExpenseRatio(m) != 0 {
		t.Fatal("ratios should degrade to 0")
	}
	trend := a.WeeklyTrend(nil)
	if len(trend.Weeks) != 4 || trend.WeeklyChange != 0 {
		t.Fatalf("trend = %+v", trend)
	}
}

func TestNegativeNetSavings(t *testing.T) {
	txs := []core.Transaction{
		tx("100", core.Income, core.IncomeType, core.NewDate(2025, 3, 2)),
		tx("150", core.Food, core.ExpenseType, core.NewDate(2025, 3, 3)),
	}
	m := newAgg().MonthlyTotals(txs)
	if m.NetSavings.String() != "-50.00" {
		t.Fatalf("net = %s", m.NetSavings)
	}
}

func TestCategorySpendingAndTop(t *testing.T) {
	txs := []core.Transaction{
		tx("60", core.Food, core.ExpenseType, core.NewDate(2025, 3, 5)),
		tx("15", core.Food, core.ExpenseType, core.NewDate(2025, 3, 6)),
		tx("25", core.Transport, core.ExpenseType, core.NewDate(2025, 3, 7)),
		tx("500", core.Income, core.IncomeType, core.NewDate(2025, 3, 7)),
		tx("70", core.Shopping, core.ExpenseType, core.NewDate(2025, 2, 7)),
	}
	a := newAgg()
	spending := a.CategorySpending(txs)
	if len(spending) != 2 || spending[core.Food].String() != "75.00" || spending[core.Transport].String() != "25.00" {
		t.Fatalf("spending = %v", spending)
	}
	top := a.TopCategories(txs, 1)
	if len(top) != 1 || top[0].Category != core.Food || top[0].Percentage != 75 {
		t.Fatalf("top = %+v", top)
	}
}

func TestBudgetStatus(t *testing.T) {
	budgets := []core.Budget{
		{ID: 1, Category: core.Food, Amount: core.MustMoney("200"), Spent: core.MustMoney("50")},
		{ID: 2, Category: core.Transport, Amount: core.MustMoney("100"), Spent: core.MustMoney("130")},
		{ID: 3, Category: core.Other, Amount: core.Zero, Spent: core.MustMoney("10")},
		{ID: 4, Category: core.Shopping, Amount: core.MustMoney("3"), Spent: core.MustMoney("1")},
	}
	got := newAgg().BudgetStatus(budgets)
	tests := []struct {
		pct       float64
		remaining string
		over      bool
	}{
		{25, "150.00", false},
		{130, "-30.00", true},
		{0, "-10.00", true},
		{33.33, "2.00", false},
	}
	for i, want := range tests {
		if got[i].PercentageUsed != want.pct || got[i].Remaining.String() != want.remaining || got[i].OverBudget() != want.over {
			t.Errorf("budget %d: got %+v, want %+v", budgets[i].ID, got[i], want)
		}
	}
}

func TestWeeklyTrendWindows(t *testing.T) {
	// today = 2025-03-29; most recent window is 03-22..03-28.
	txs := []core.Transaction{
		tx("40", core.Food, core.ExpenseType, core.NewDate(2025, 3, 22)),
		tx("20", core.Food, core.ExpenseType, core.NewDate(2025, 3, 28)),
		tx("30", core.Food, core.ExpenseType, core.NewDate(2025, 3, 21)),
		tx("10", core.Food, core.ExpenseType, core.NewDate(2025, 3, 1)),
		tx("99", core.Food, core.ExpenseType, core.NewDate(2025, 3, 29)),
		tx("1000", core.Income, core.IncomeType, core.NewDate(2025, 3, 23)),
	}
	trend := newAgg().WeeklyTrend(txs)
	wantStart := []string{"2025-03-01", "2025-03-08", "2025-03-15", "2025-03-22"}
	wantTotal := []string{"10.00", "0.00", "30.00", "60.00"}
	for i, w := range trend.Weeks {
		if w.Start.String() != wantStart[i] || w.Total.String() != wantTotal[i] {
			t.Errorf("week %d = %s..%s %s", i, w.Start, w.End, w.Total)
		}
	}
	if trend.WeeklyChange != 100 {
		t.Fatalf("weekly change = %v, want 100", trend.WeeklyChange)
	}
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name                      string
		ratio, compliance, saving float64
		want                      int
	}{
		{"no data", 0, 100, 0, 70},
		{"perfect", 0, 100, 100, 100},
		{"overspending", 150, 0, -50, 0},
		{"typical", 70, 50, 30, 57},
		{"fractional", 98.75, 100, 1.25, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HealthScore(tt.ratio, tt.compliance, tt.saving); got != tt.want {
				t.Fatalf("HealthScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHealthReport(t *testing.T) {
	txs := []core.Transaction{
		tx("1000", core.Income, core.IncomeType, core.NewDate(2025, 3, 1)),
		tx("900", core.Food, core.ExpenseType, core.NewDate(2025, 3, 2)),
	}
	budgets := []core.Budget{
		{Category: core.Food, Amount: core.MustMoney("500"), Spent: core.MustMoney("900")},
	}
	r := newAgg().Health(txs, budgets)
	if r.ExpenseRatio != 90 || r.BudgetCompliance != 0 || r.SavingsRate != 10 {
		t.Fatalf("inputs = %+v", r)
	}
	// 0.4*10 + 0.3*0 + 0.3*50 = 19
	if r.Score != 19 || r.Label != "Critical" {
		t.Fatalf("score = %d %s", r.Score, r.Label)
	}
	if len(r.Tips) != 2 {
		t.Fatalf("tips = %v", r.Tips)
	}

	clean := newAgg().Health([]core.Transaction{
		tx("1000", core.Income, core.IncomeType, core.NewDate(2025, 3, 1)),
		tx("100", core.Food, core.ExpenseType, core.NewDate(2025, 3, 2)),
	}, nil)
	if len(clean.Tips) != 1 || clean.Tips[0] != "Great job! Keep maintaining your financial discipline" {
		t.Fatalf("tips = %v", clean.Tips)
	}
}

func TestHealthLabel(t *testing.T) {
	for score, want := range map[int]string{95: "Excellent", 80: "Very Good", 79: "Good", 60: "Fair", 40: "Poor", 39: "Critical"} {
		if got := HealthLabel(score); got != want {
			t.Errorf("HealthLabel(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestMonth(t *testing.T) {
	if got := newAgg().Month(); got != "2025-03" {
		t.Fatalf("Month() = %q, want 2025-03", got)
	}
}

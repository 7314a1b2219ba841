package insights

import (
	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

const (
	ChatEmpty        = "I'm sorry, I couldn't process your request. Please try again."
	ChatFailure      = "I'm experiencing technical difficulties. Please try again later."
	QuickTipFallback = "Track your expenses daily to identify spending patterns and opportunities for savings."
)

var genericTips = []core.Tip{
	{
		ID:              "emergency-fund",
		Title:           "Build Emergency Fund",
		Description:     "Aim to save 3-6 months of expenses in a high-yield savings account for unexpected costs.",
		Category:        "emergency",
		Priority:        "high",
		Actionable:      true,
		EstimatedImpact: "High financial security",
		Timeframe:       "6-12 months",
	},
	{
		ID:              "track-expenses",
		Title:           "Monitor Daily Spending",
		Description:     "Review your transactions weekly to identify spending patterns and potential savings.",
		Category:        "budgeting",
		Priority:        "medium",
		Actionable:      true,
		EstimatedImpact: "5-10% expense reduction",
		Timeframe:       "1-2 weeks",
	},
	{
		ID:              "automate-savings",
		Title:           "Automate Your Savings",
		Description:     "Set up automatic transfers to savings accounts to build wealth consistently.",
		Category:        "saving",
		Priority:        "medium",
		Actionable:      true,
		EstimatedImpact: "Increased savings rate",
		Timeframe:       "Immediate",
	},
}

var foodTip = core.Tip{
	ID:              "reduce-food-costs",
	Title:           "Optimize Food Spending",
	Description:     "Your food expenses are above 20% of total spending. Consider meal planning and cooking more at home.",
	Category:        "spending",
	Priority:        "medium",
	Actionable:      true,
	EstimatedImpact: "10-15% food cost reduction",
	Timeframe:       "2-4 weeks",
}

var (
	foodShareLimit = decimal.RequireFromString("0.2")
	hundred        = decimal.NewFromInt(100)
)

// FallbackTips is the locally computed tip set: the generic tips plus a food
// tip when food exceeds 20% of all expenses.
func FallbackTips(txs []core.Transaction) []core.Tip {
	out := append([]core.Tip(nil), genericTips...)

	total, food := core.Zero, core.Zero
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		total = total.Add(t.Amount)
		if t.Category == core.Food {
			food = food.Add(t.Amount)
		}
	}
	if total.IsPositive() && food.Decimal().GreaterThan(total.Decimal().Mul(foodShareLimit)) {
		out = append(out, foodTip)
	}
	return out
}

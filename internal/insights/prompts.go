package insights

import (
	"fmt"
	"sort"
	"strings"

	"budgetbuddy/internal/analytics"
	"budgetbuddy/internal/core"
)

const (
	insightsSystem = "You are a personal finance advisor AI. Provide helpful, actionable financial insights based on user data."
	chatSystem     = "You are a helpful personal finance assistant AI. Use the financial context provided to give personalized advice. Be friendly, concise, and actionable. Respond in plain text, not JSON."
	quickTipSystem = "You are a financial advisor. Generate a single, concise financial tip (max 100 words) based on the user's data. Be specific and actionable."
	tipsSystem     = `You are a professional financial advisor with expertise in personal finance, budgeting, and wealth building. Analyze the provided financial data and generate practical, actionable tips tailored to the user's specific situation. Focus on realistic advice that can be implemented immediately.

Return your response as a JSON object with the following structure:
{
  "tips": [
    {
      "id": "unique_id",
      "title": "Brief, actionable title",
      "description": "Detailed explanation with specific steps",
      "category": "budgeting|saving|investing|spending|debt|emergency",
      "priority": "high|medium|low",
      "actionable": true,
      "estimatedImpact": "Estimated financial impact",
      "timeframe": "How long to see results"
    }
  ]
}

Guidelines:
- Provide 5-8 personalized tips based on the data
- Make tips specific to their spending patterns and financial situation
- Include both short-term and long-term recommendations
- Prioritize high-impact, actionable advice
- Consider their current net worth and cash flow
- Address any concerning spending patterns
- Suggest realistic budget adjustments
- Recommend appropriate savings strategies`

	insightsMaxTokens = 800
	chatMaxTokens     = 300
	quickTipMaxTokens = 200
	topCategoryCount  = 5
	recentTxCount     = 10
)

// utilisation renders spent/amount as a percentage with one decimal.
func utilisation(b core.Budget) string {
	if b.Amount.IsZero() {
		return "0.0"
	}
	pct := b.Spent.Decimal().Div(b.Amount.Decimal()).Mul(hundred)
	return pct.StringFixed(1)
}

func writeTotals(sb *strings.Builder, m core.MonthlyTotals) {
	fmt.Fprintf(sb, "- Total Income: $%s\n", m.TotalIncome)
	fmt.Fprintf(sb, "- Total Expenses: $%s\n", m.TotalExpenses)
	fmt.Fprintf(sb, "- Net Savings: $%s\n", m.NetSavings)
}

func insightsPrompt(agg *analytics.Aggregator, txs []core.Transaction, budgets []core.Budget) Prompt {
	var sb strings.Builder
	sb.WriteString("Analyze the following financial data and provide 2-3 actionable insights:\n\n")
	sb.WriteString("Financial Summary:\n")
	writeTotals(&sb, agg.MonthlyTotals(txs))

	sb.WriteString("\nBudget Status:\n")
	for _, b := range budgets {
		fmt.Fprintf(&sb, "- %s: $%s/$%s (%s%%)\n", b.Category, b.Spent, b.Amount, utilisation(b))
	}

	sb.WriteString("\nTop Spending Categories:\n")
	for _, c := range agg.TopCategories(txs, topCategoryCount) {
		fmt.Fprintf(&sb, "- %s: $%s (%d%%)\n", c.Category, c.Amount, c.Percentage)
	}

	sb.WriteString(`
Provide insights in JSON format with this structure:
{
  "insights": [
    {
      "type": "alert|tip|achievement|warning",
      "title": "Brief title",
      "message": "Actionable advice under 100 words",
      "priority": "high|medium|low"
    }
  ]
}

Focus on:
- Budget overruns and recommendations
- Saving opportunities
- Spending pattern improvements
- Achievement recognition for good habits
`)
	return Prompt{System: insightsSystem, User: sb.String(), JSON: true, MaxTokens: insightsMaxTokens}
}

func chatPrompt(agg *analytics.Aggregator, message string, txs []core.Transaction, budgets []core.Budget) Prompt {
	var sb strings.Builder
	sb.WriteString("User's Financial Context:\n")
	writeTotals(&sb, agg.MonthlyTotals(txs))
	fmt.Fprintf(&sb, "- Active Budgets: %d\n", len(budgets))
	fmt.Fprintf(&sb, "- Recent Transactions: %d\n", min(len(txs), recentTxCount))

	sb.WriteString("\nBudget Status:\n")
	for _, b := range budgets {
		fmt.Fprintf(&sb, "- %s: $%s/$%s\n", b.Category, b.Spent, b.Amount)
	}
	fmt.Fprintf(&sb, "\nUser Question: %s", strings.TrimSpace(message))
	return Prompt{System: chatSystem, User: sb.String(), MaxTokens: chatMaxTokens}
}

func tipsPrompt(d Data) Prompt {
	cur := d.Settings.Currency
	if cur == "" {
		cur = core.DefaultCurrency
	}

	income, expenses := core.Zero, core.Zero
	byCategory := make(map[core.Category]core.Money)
	for _, t := range d.Transactions {
		switch t.Type {
		case core.IncomeType:
			income = income.Add(t.Amount)
		case core.ExpenseType:
			expenses = expenses.Add(t.Amount)
			byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
		}
	}
	net := income.Sub(expenses)
	savingsRate := "0.0"
	if income.IsPositive() {
		savingsRate = net.Decimal().Div(income.Decimal()).Mul(hundred).StringFixed(1)
	}

	assetTotal := core.Zero
	assetTypes := make([]string, 0, len(d.Assets))
	for _, a := range d.Assets {
		assetTotal = assetTotal.Add(a.Value)
		assetTypes = append(assetTypes, string(a.Type))
	}
	types := strings.Join(assetTypes, ", ")
	if types == "" {
		types = "None"
	}

	categories := make([]core.CategoryAmount, 0, len(byCategory))
	for c, amt := range byCategory {
		categories = append(categories, core.CategoryAmount{Category: c, Amount: amt})
	}
	sort.Slice(categories, func(i, j int) bool {
		if cmp := categories[i].Amount.Cmp(categories[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return categories[i].Category < categories[j].Category
	})

	var sb strings.Builder
	sb.WriteString("FINANCIAL PROFILE ANALYSIS:\n\nINCOME & EXPENSES:\n")
	fmt.Fprintf(&sb, "- Total Income: %s %s\n", cur, income)
	fmt.Fprintf(&sb, "- Total Expenses: %s %s\n", cur, expenses)
	fmt.Fprintf(&sb, "- Net Cash Flow: %s %s\n", cur, net)
	fmt.Fprintf(&sb, "- Savings Rate: %s%%\n", savingsRate)

	sb.WriteString("\nASSET PORTFOLIO:\n")
	fmt.Fprintf(&sb, "- Total Net Worth: %s %s\n", cur, assetTotal)
	fmt.Fprintf(&sb, "- Number of Assets: %d\n", len(d.Assets))
	fmt.Fprintf(&sb, "- Asset Types: %s\n", types)

	sb.WriteString("\nSPENDING BREAKDOWN:\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "- %s: %s %s\n", c.Category, cur, c.Amount)
	}

	sb.WriteString("\nBUDGET PERFORMANCE:\n")
	if len(d.Budgets) == 0 {
		sb.WriteString("- No budgets set\n")
	}
	for _, b := range d.Budgets {
		fmt.Fprintf(&sb, "- %s: %s%% used (%s %s/%s %s)\n", b.Category, utilisation(b), cur, b.Spent, cur, b.Amount)
	}

	active := make([]string, 0, 3)
	for i := 0; i < len(categories) && i < 3; i++ {
		active = append(active, string(categories[i].Category))
	}
	sb.WriteString("\nRECENT TRANSACTION PATTERNS:\n")
	fmt.Fprintf(&sb, "- Total Transactions: %d\n", len(d.Transactions))
	fmt.Fprintf(&sb, "- Most Active Categories: %s\n", strings.Join(active, ", "))
	sb.WriteString("\nPlease analyze this financial profile and provide personalized recommendations for improvement.\n")

	return Prompt{System: tipsSystem, User: sb.String(), JSON: true}
}

func quickTipPrompt(d Data) Prompt {
	return Prompt{
		System:    quickTipSystem,
		User:      fmt.Sprintf("Based on %d transactions and %d budgets, give me one quick financial tip.", len(d.Transactions), len(d.Budgets)),
		MaxTokens: quickTipMaxTokens,
	}
}

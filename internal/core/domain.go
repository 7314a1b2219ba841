package core

import (
	"fmt"
	"strings"
	"time"
)

const maxTextLength = 200

// DefaultCurrency is applied to assets and settings when none is given.
const DefaultCurrency = "USD"

type (
	Category        string
	TransactionType string
	Period          string
	AssetType       string
	Theme           string
)

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Entertainment Category = "entertainment"
	Utilities     Category = "utilities"
	Shopping      Category = "shopping"
	Healthcare    Category = "healthcare"
	Education     Category = "education"
	Income        Category = "income"
	Other         Category = "other"
)

const (
	IncomeType  TransactionType = "income"
	ExpenseType TransactionType = "expense"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

const (
	Property     AssetType = "property"
	Vehicle      AssetType = "vehicle"
	Investment   AssetType = "investment"
	Electronics  AssetType = "electronics"
	Jewelry      AssetType = "jewelry"
	Collectibles AssetType = "collectibles"
	OtherAsset   AssetType = "other"
)

const (
	Light  Theme = "light"
	Dark   Theme = "dark"
	System Theme = "system"
)

// Categories lists every transaction category in display order.
func Categories() []Category {
	return []Category{Food, Transport, Entertainment, Utilities, Shopping, Healthcare, Education, Income, Other}
}

func (c Category) IsValid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory normalises s and checks it against the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (t TransactionType) IsValid() bool {
	return t == IncomeType || t == ExpenseType
}

func (p Period) IsValid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (a AssetType) IsValid() bool {
	switch a {
	case Property, Vehicle, Investment, Electronics, Jewelry, Collectibles, OtherAsset:
		return true
	}
	return false
}

func (t Theme) IsValid() bool {
	switch t {
	case Light, Dark, System:
		return true
	}
	return false
}

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          int64           `json:"id" yaml:"id"`
	Amount      Money           `json:"amount" yaml:"amount"`
	Description string          `json:"description" yaml:"description"`
	Category    Category        `json:"category" yaml:"category"`
	Type        TransactionType `json:"type" yaml:"type"`
	Date        Date            `json:"date" yaml:"date"`
	CreatedAt   time.Time       `json:"createdAt" yaml:"createdAt"`
}

// IsExpense reports whether t counts toward a budget.
func (t Transaction) IsExpense() bool { return t.Type == ExpenseType }

// Budget is a spending ceiling for one category. Spent is server-maintained.
type Budget struct {
	ID        int64     `json:"id" yaml:"id"`
	Category  Category  `json:"category" yaml:"category"`
	Amount    Money     `json:"amount" yaml:"amount"`
	Spent     Money     `json:"spent" yaml:"spent"`
	Period    Period    `json:"period" yaml:"period"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

type Asset struct {
	ID           int64     `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Type         AssetType `json:"type" yaml:"type"`
	Value        Money     `json:"value" yaml:"value"`
	Currency     string    `json:"currency" yaml:"currency"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	PurchaseDate *Date     `json:"purchaseDate,omitempty" yaml:"purchaseDate,omitempty"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
}

// Settings is the single user preferences record.
type Settings struct {
	Currency      string `json:"currency" yaml:"currency"`
	Theme         Theme  `json:"theme" yaml:"theme"`
	Notifications bool   `json:"notifications" yaml:"notifications"`
}

// DefaultSettings returns the record used at start and after a clear.
func DefaultSettings() Settings {
	return Settings{Currency: DefaultCurrency, Theme: Light, Notifications: true}
}

// Snapshot is the full export payload.
type Snapshot struct {
	Transactions []Transaction `json:"transactions" yaml:"transactions"`
	Budgets      []Budget      `json:"budgets" yaml:"budgets"`
	Settings     Settings      `json:"settings" yaml:"settings"`
	Assets       []Asset       `json:"assets" yaml:"assets"`
	ExportedAt   time.Time     `json:"exportedAt" yaml:"exportedAt"`
}

// NewTransaction is the client input for creating a transaction.
type NewTransaction struct {
	Amount      Money           `json:"amount" yaml:"amount"`
	Description string          `json:"description" yaml:"description"`
	Category    Category        `json:"category" yaml:"category"`
	Type        TransactionType `json:"type" yaml:"type"`
	Date        Date            `json:"date" yaml:"date"`
}

func (in NewTransaction) Validate() error {
	v := &ValidationError{}
	checkAmount(v, "amount", in.Amount)
	validateText(v, "description", in.Description, ErrEmptyDescription)
	if !in.Category.IsValid() {
		v.Add("category", ErrInvalidCategory)
	}
	if !in.Type.IsValid() {
		v.Add("type", ErrInvalidType)
	}
	if in.Date.IsZero() {
		v.Add("date", ErrInvalidDate)
	}
	return v.OrNil()
}

// Build turns the input into a stored entity.
func (in NewTransaction) Build(id int64, now time.Time) Transaction {
	return Transaction{
		ID:          id,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Type:        in.Type,
		Date:        in.Date,
		CreatedAt:   now.UTC().Truncate(time.Microsecond),
	}
}

// TransactionPatch holds a partial update; nil fields stay unchanged.
type TransactionPatch struct {
	Amount      *Money           `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Type        *TransactionType `json:"type,omitempty"`
	Date        *Date            `json:"date,omitempty"`
}

func (p TransactionPatch) Validate() error {
	v := &ValidationError{}
	if p.Amount != nil {
		checkAmount(v, "amount", *p.Amount)
	}
	if p.Description != nil {
		validateText(v, "description", *p.Description, ErrEmptyDescription)
	}
	if p.Category != nil && !p.Category.IsValid() {
		v.Add("category", ErrInvalidCategory)
	}
	if p.Type != nil && !p.Type.IsValid() {
		v.Add("type", ErrInvalidType)
	}
	if p.Date != nil && p.Date.IsZero() {
		v.Add("date", ErrInvalidDate)
	}
	return v.OrNil()
}

// Apply returns t with the patch merged in.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

type NewBudget struct {
	Category Category `json:"category" yaml:"category"`
	Amount   Money    `json:"amount" yaml:"amount"`
	Period   Period   `json:"period,omitempty" yaml:"period,omitempty"`
}

func (in NewBudget) Validate() error {
	v := &ValidationError{}
	if !in.Category.IsValid() {
		v.Add("category", ErrInvalidCategory)
	}
	checkAmount(v, "amount", in.Amount)
	if in.Period != "" && !in.Period.IsValid() {
		v.Add("period", ErrInvalidPeriod)
	}
	return v.OrNil()
}

// Build applies defaults: spent starts at zero, period falls back to monthly.
func (in NewBudget) Build(id int64, now time.Time) Budget {
	period := in.Period
	if period == "" {
		period = Monthly
	}
	return Budget{
		ID:        id,
		Category:  in.Category,
		Amount:    in.Amount,
		Spent:     Zero,
		Period:    period,
		CreatedAt: now.UTC().Truncate(time.Microsecond),
	}
}

type BudgetPatch struct {
	Category *Category `json:"category,omitempty"`
	Amount   *Money    `json:"amount,omitempty"`
	Period   *Period   `json:"period,omitempty"`
}

func (p BudgetPatch) Validate() error {
	v := &ValidationError{}
	if p.Category != nil && !p.Category.IsValid() {
		v.Add("category", ErrInvalidCategory)
	}
	if p.Amount != nil {
		checkAmount(v, "amount", *p.Amount)
	}
	if p.Period != nil && !p.Period.IsValid() {
		v.Add("period", ErrInvalidPeriod)
	}
	return v.OrNil()
}

func (p BudgetPatch) Apply(b Budget) Budget {
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	return b
}

type NewAsset struct {
	Name         string    `json:"name" yaml:"name"`
	Type         AssetType `json:"type" yaml:"type"`
	Value        Money     `json:"value" yaml:"value"`
	Currency     string    `json:"currency,omitempty" yaml:"currency,omitempty"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	PurchaseDate *Date     `json:"purchaseDate,omitempty" yaml:"purchaseDate,omitempty"`
}

func (in NewAsset) Validate() error {
	v := &ValidationError{}
	validateText(v, "name", in.Name, ErrEmptyName)
	if !in.Type.IsValid() {
		v.Add("type", ErrInvalidAssetType)
	}
	checkAmount(v, "value", in.Value)
	if in.Currency != "" && !IsCurrencyCode(in.Currency) {
		v.Add("currency", ErrInvalidCurrency)
	}
	if len(in.Description) > maxTextLength {
		v.Add("description", ErrTooLong)
	}
	return v.OrNil()
}

func (in NewAsset) Build(id int64, now time.Time) Asset {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return Asset{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		Type:         in.Type,
		Value:        in.Value,
		Currency:     currency,
		Description:  strings.TrimSpace(in.Description),
		PurchaseDate: in.PurchaseDate,
		CreatedAt:    now.UTC().Truncate(time.Microsecond),
	}
}

type AssetPatch struct {
	Name         *string    `json:"name,omitempty"`
	Type         *AssetType `json:"type,omitempty"`
	Value        *Money     `json:"value,omitempty"`
	Currency     *string    `json:"currency,omitempty"`
	Description  *string    `json:"description,omitempty"`
	PurchaseDate *Date      `json:"purchaseDate,omitempty"`
}

func (p AssetPatch) Validate() error {
	v := &ValidationError{}
	if p.Name != nil {
		validateText(v, "name", *p.Name, ErrEmptyName)
	}
	if p.Type != nil && !p.Type.IsValid() {
		v.Add("type", ErrInvalidAssetType)
	}
	if p.Value != nil {
		checkAmount(v, "value", *p.Value)
	}
	if p.Currency != nil && !IsCurrencyCode(*p.Currency) {
		v.Add("currency", ErrInvalidCurrency)
	}
	if p.Description != nil && len(*p.Description) > maxTextLength {
		v.Add("description", ErrTooLong)
	}
	return v.OrNil()
}

func (p AssetPatch) Apply(a Asset) Asset {
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Value != nil {
		a.Value = *p.Value
	}
	if p.Currency != nil {
		a.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.Description != nil {
		a.Description = strings.TrimSpace(*p.Description)
	}
	if p.PurchaseDate != nil {
		d := *p.PurchaseDate
		a.PurchaseDate = &d
	}
	return a
}

type SettingsPatch struct {
	Currency      *string `json:"currency,omitempty"`
	Theme         *Theme  `json:"theme,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
}

func (p SettingsPatch) Validate() error {
	v := &ValidationError{}
	if p.Currency != nil && !IsCurrencyCode(*p.Currency) {
		v.Add("currency", ErrInvalidCurrency)
	}
	if p.Theme != nil && !p.Theme.IsValid() {
		v.Add("theme", ErrInvalidTheme)
	}
	return v.OrNil()
}

func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Currency != nil {
		s.Currency = strings.ToUpper(strings.TrimSpace(*p.Currency))
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	return s
}

// IsCurrencyCode checks for a three-letter ISO-style code.
func IsCurrencyCode(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return false
	}
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func validateText(v *ValidationError, field, s string, empty error) {
	if strings.TrimSpace(s) == "" {
		v.Add(field, empty)
		return
	}
	if len(s) > maxTextLength {
		v.Add(field, ErrTooLong)
	}
}

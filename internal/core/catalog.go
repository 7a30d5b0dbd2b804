package core

// Category is static reference data versioned with the application. The
// catalog is not user-editable and is never persisted.
type Category struct {
	ID            string
	Name          string
	Emoji         string
	Type          TransactionType
	Subcategories []string
}

// Catalog is the fixed category list, ordered for display.
var Catalog = []Category{
	{ID: "salary", Name: "Salary", Emoji: "💰", Type: Income, Subcategories: []string{"Primary", "Bonus", "Commission"}},
	{ID: "side-income", Name: "Side Income", Emoji: "💼", Type: Income, Subcategories: []string{"Freelance", "Other"}},

	{ID: "fixed-bills", Name: "Fixed Bills", Emoji: "🏠", Type: Expense, Subcategories: []string{"Rent/Mortgage", "Utilities", "Internet/Mobile", "Insurance", "Subscriptions"}},
	{ID: "food", Name: "Food", Emoji: "🍽️", Type: Expense, Subcategories: []string{"Groceries", "Eating Out", "Coffee/Snacks"}},
	{ID: "transport", Name: "Transport", Emoji: "🚗", Type: Expense, Subcategories: []string{"Fuel", "Public Transport", "Parking/Tolls", "Maintenance"}},
	{ID: "living", Name: "Living", Emoji: "🧾", Type: Expense, Subcategories: []string{"Phone", "Clothing", "Grooming", "Personal Care"}},
	{ID: "lifestyle", Name: "Lifestyle", Emoji: "🎉", Type: Expense, Subcategories: []string{"Entertainment", "Hobbies", "Games", "Events"}},
	{ID: "travel", Name: "Travel", Emoji: "✈️", Type: Expense, Subcategories: []string{"Flights", "Accommodation", "Activities"}},
	{ID: "health", Name: "Health", Emoji: "🏥", Type: Expense, Subcategories: []string{"Doctor", "Medication", "Gym/Fitness", "Therapy"}},
	{ID: "shopping", Name: "Shopping", Emoji: "🛒", Type: Expense, Subcategories: []string{"Home", "Electronics", "Gifts", "Other"}},
	{ID: "debt", Name: "Debt", Emoji: "💳", Type: Expense, Subcategories: []string{"Credit Card", "Personal Loans", "Student Loans"}},

	{ID: "savings", Name: "Savings", Emoji: "💾", Type: Savings, Subcategories: []string{"General", "Investments", "Retirement"}},
	{ID: "emergency_fund", Name: "Emergency Fund", Emoji: "🛡️", Type: Savings},

	// System category for paying off accumulated debt.
	{ID: "debt_payment", Name: "Debt Payment", Emoji: "💸", Type: DebtPayment},
}

var catalogByID = func() map[string]Category {
	m := make(map[string]Category, len(Catalog))
	for _, c := range Catalog {
		m[c.ID] = c
	}
	return m
}()

// CategoryByID looks up a category in the fixed catalog.
func CategoryByID(id string) (Category, bool) {
	c, ok := catalogByID[id]
	return c, ok
}

// CategoriesByType returns catalog entries of the given type, in display
// order.
func CategoriesByType(t TransactionType) []Category {
	var out []Category
	for _, c := range Catalog {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// HasSubcategory reports whether the label is in the category's fixed
// subcategory list.
func (c Category) HasSubcategory(label string) bool {
	for _, s := range c.Subcategories {
		if s == label {
			return true
		}
	}
	return false
}

package reconcile

import "strings"

const (
	CategorySheetCake    = "Sheet Cake"
	CategoryMiniCupcakes = "Mini Cupcakes"
	CategoryPie          = "Pie"
	CategoryCheesecake   = "Cheesecake"
	CategorySpecial      = "Special"
	CategoryCake         = "Cake"
)

// Evaluated in order; the first matching substring wins.
var categoryRules = []struct {
	substr   string
	category string
}{
	{"sheet cake", CategorySheetCake},
	{"mini cupcake", CategoryMiniCupcakes},
	{"pie", CategoryPie},
	{"cheesecake", CategoryCheesecake},
	{"thanksgiving special", CategorySpecial},
}

// Classify maps a product title to a category. Titles matching no rule,
// including the empty title, are plain cakes.
func Classify(title string) string {
	t := strings.ToLower(title)
	for _, r := range categoryRules {
		if strings.Contains(t, r.substr) {
			return r.category
		}
	}
	return CategoryCake
}

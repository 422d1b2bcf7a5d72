package nutrition

import "healthcast/internal/plan"

// foodLibrary expands a predicted dish into portioned ingredients.
var foodLibrary = map[string][]plan.FoodPortion{
	"Oatmeal":        {{Food: "Oatmeal", Amount: "50g"}, {Food: "Banana", Amount: "1 piece"}, {Food: "Milk", Amount: "200ml"}},
	"Eggs":           {{Food: "Eggs", Amount: "2 pieces"}, {Food: "Toast", Amount: "2 slices"}, {Food: "Orange Juice", Amount: "250ml"}},
	"Smoothie":       {{Food: "Smoothie", Amount: "300ml"}, {Food: "Granola", Amount: "30g"}},
	"Chicken Salad":  {{Food: "Chicken Breast", Amount: "120g"}, {Food: "Lettuce", Amount: "50g"}, {Food: "Olive Oil", Amount: "10ml"}},
	"Rice & Beans":   {{Food: "Rice", Amount: "100g"}, {Food: "Beans", Amount: "80g"}, {Food: "Avocado", Amount: "50g"}},
	"Grilled Fish":   {{Food: "Fish", Amount: "150g"}, {Food: "Quinoa", Amount: "100g"}, {Food: "Spinach", Amount: "60g"}},
	"Pasta":          {{Food: "Pasta", Amount: "120g"}, {Food: "Tomato Sauce", Amount: "80g"}, {Food: "Parmesan", Amount: "20g"}},
	"Grilled Salmon": {{Food: "Salmon", Amount: "150g"}, {Food: "Asparagus", Amount: "80g"}, {Food: "Sweet Potato", Amount: "100g"}},
	"Steak":          {{Food: "Steak", Amount: "180g"}, {Food: "Mashed Potatoes", Amount: "100g"}, {Food: "Green Beans", Amount: "70g"}},
	"Vegetable Soup": {{Food: "Soup", Amount: "300ml"}, {Food: "Bread", Amount: "1 slice"}},
	"Chicken Wrap":   {{Food: "Chicken", Amount: "100g"}, {Food: "Tortilla", Amount: "1 piece"}, {Food: "Lettuce", Amount: "40g"}},
}

// Expand returns a fresh copy of the dish's ingredients; unknown dishes become
// a single serving of themselves.
func Expand(dish string) []plan.FoodPortion {
	foods, ok := foodLibrary[dish]
	if !ok {
		return []plan.FoodPortion{{Food: dish, Amount: "1 serving"}}
	}
	out := make([]plan.FoodPortion, len(foods))
	copy(out, foods)
	return out
}

// Default dishes used when the classifier cannot produce a plan.
const (
	DefaultBreakfast = "Oatmeal"
	DefaultLunch     = "Chicken Salad"
	DefaultDinner    = "Grilled Salmon"
)

// DefaultMealPlan is the fixed balanced plan served when prediction fails.
// It carries no confidences and no alternatives.
func DefaultMealPlan() plan.MealPlan {
	dishes := []string{DefaultBreakfast, DefaultLunch, DefaultDinner}
	out := plan.MealPlan{Meals: make([]plan.MealSlot, len(MealTypes))}
	for i, meal := range MealTypes {
		out.Meals[i] = plan.MealSlot{
			Meal:        meal,
			Recommended: dishes[i],
			Foods:       Expand(dishes[i]),
		}
	}
	return out
}

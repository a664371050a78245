package analysis

import "math"

// MinPortions and MaxPortions bound the portion counts callers may request.
const (
	MinPortions = 1
	MaxPortions = 6
)

// roundQuantity applies the display rounding policy: quantities of 10 or
// more round to the nearest integer, smaller ones keep 2 decimal places.
// Large quantities (grams, milliliters) don't need sub-unit precision while
// small ones (teaspoons, counts) do.
func roundQuantity(value float64) float64 {
	if value >= 10 {
		return math.Round(value)
	}
	return math.Round(value*100) / 100
}

// ScaleIngredientQuantity converts a quantity expressed for `from` portions
// into one for `to` portions, applying the rounding policy. Pure and total
// for from > 0; the portions invariant guarantees from is never 0 here.
func ScaleIngredientQuantity(quantity float64, from, to int) float64 {
	return roundQuantity(quantity * float64(to) / float64(from))
}

// ScaledIngredients returns the recipe's ingredient list scaled from the
// reference portion count to the requested one. Name, unit and notes are
// held fixed.
func ScaledIngredients(a *Analysis, portions int) []RecipeIngredient {
	scaled := make([]RecipeIngredient, len(a.RecipeForTwo.Ingredients))
	for i, ingredient := range a.RecipeForTwo.Ingredients {
		ingredient.Quantity = ScaleIngredientQuantity(ingredient.Quantity, a.RecipeForTwo.Portions, portions)
		scaled[i] = ingredient
	}
	return scaled
}

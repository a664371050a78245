package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatQuantity renders a scaled quantity with the shortest decimal form
// (400, 2.5, 0.13 — never 400.00).
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// RecipeToText renders the full recipe as plain Spanish text at the
// requested portion count. Output is deterministic for identical input.
func RecipeToText(a *Analysis, portions int) string {
	scaled := ScaledIngredients(a, portions)
	var lines []string

	lines = append(lines, fmt.Sprintf("%s (%d porciones)", a.RecipeForTwo.Title, portions))
	lines = append(lines, "")
	lines = append(lines, "Ingredientes:")
	for _, ingredient := range scaled {
		notes := ""
		if ingredient.Notes != "" {
			notes = fmt.Sprintf(" (%s)", ingredient.Notes)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s %s%s", ingredient.Name, FormatQuantity(ingredient.Quantity), ingredient.Unit, notes))
	}

	lines = append(lines, "")
	lines = append(lines, "Pasos:")
	for _, step := range sortedSteps(a.RecipeForTwo.Steps) {
		lines = append(lines, fmt.Sprintf("%d. %s", step.Order, step.Instruction))
	}

	if len(a.RecipeForTwo.Tips) > 0 {
		lines = append(lines, "")
		lines = append(lines, "Tips:")
		for _, tip := range a.RecipeForTwo.Tips {
			lines = append(lines, "- "+tip)
		}
	}

	return strings.Join(lines, "\n")
}

// ShoppingListToText renders one line per scaled ingredient, no headers.
func ShoppingListToText(a *Analysis, portions int) string {
	scaled := ScaledIngredients(a, portions)
	lines := make([]string, len(scaled))
	for i, item := range scaled {
		lines[i] = fmt.Sprintf("- %s: %s %s", item.Name, FormatQuantity(item.Quantity), item.Unit)
	}
	return strings.Join(lines, "\n")
}

// sortedSteps orders steps by their declared order, not list position.
func sortedSteps(steps []RecipeStep) []RecipeStep {
	out := make([]RecipeStep, len(steps))
	copy(out, steps)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

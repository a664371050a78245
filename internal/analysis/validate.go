package analysis

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError enumerates every violated field path of a candidate
// analysis.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("analysis failed validation: %s", strings.Join(e.Issues, "; "))
}

// Validate checks an arbitrary decoded JSON value against the analysis
// schema and builds the typed Analysis. It never panics: missing fields,
// wrong types and out-of-range values are all reported as issues in a
// *ValidationError. Extra fields are ignored. Absent list fields default to
// empty lists.
//
// It is used identically for first model responses and repaired ones.
func Validate(value any) (*Analysis, error) {
	v := &validator{}

	root, ok := value.(map[string]any)
	if !ok {
		return nil, &ValidationError{Issues: []string{"analysis: expected object"}}
	}

	a := &Analysis{
		Dish:                 v.dish(root, "dish"),
		Ingredients:          v.ingredientInferences(root, "ingredients"),
		RecipeForTwo:         v.recipe(root, "recipeForTwo"),
		Assumptions:          v.stringList(root, "assumptions"),
		MissingInfoQuestions: v.stringList(root, "missingInfoQuestions"),
	}

	if len(v.issues) > 0 {
		return nil, &ValidationError{Issues: v.issues}
	}
	return a, nil
}

// validator accumulates field-path issues while building the typed value.
// All methods keep going after a failure so every violation is reported.
type validator struct {
	issues []string
}

func (v *validator) add(path, msg string) {
	v.issues = append(v.issues, path+": "+msg)
}

func (v *validator) dish(m map[string]any, path string) Dish {
	obj, ok := v.childObject(m, path)
	if !ok {
		return Dish{}
	}
	return Dish{
		Name:       v.requiredText(obj, path+".name"),
		AltNames:   v.stringList(obj, path+".altNames"),
		Cuisine:    v.optionalText(obj, path+".cuisine"),
		Confidence: v.confidence(obj, path+".confidence"),
	}
}

func (v *validator) ingredientInferences(m map[string]any, path string) []IngredientInference {
	items, ok := v.childArray(m, path)
	if !ok {
		return nil
	}
	out := make([]IngredientInference, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := item.(map[string]any)
		if !ok {
			v.add(itemPath, "expected object")
			continue
		}
		out = append(out, IngredientInference{
			Name:        v.requiredText(obj, itemPath+".name"),
			AmountGuess: v.optionalPositiveNumber(obj, itemPath+".amountGuess"),
			Unit:        v.optionalText(obj, itemPath+".unit"),
			Confidence:  v.confidence(obj, itemPath+".confidence"),
			Source:      v.source(obj, itemPath+".source"),
		})
	}
	return out
}

func (v *validator) recipe(m map[string]any, path string) Recipe {
	obj, ok := v.childObject(m, path)
	if !ok {
		return Recipe{}
	}
	return Recipe{
		Title:         v.requiredText(obj, path+".title"),
		Portions:      v.portions(obj, path+".portions"),
		Time:          v.recipeTime(obj, path+".time"),
		Equipment:     v.stringList(obj, path+".equipment"),
		Ingredients:   v.recipeIngredients(obj, path+".ingredients"),
		Steps:         v.recipeSteps(obj, path+".steps"),
		Tips:          v.stringList(obj, path+".tips"),
		Substitutions: v.substitutions(obj, path+".substitutions"),
		Allergens:     v.stringList(obj, path+".allergens"),
	}
}

func (v *validator) recipeTime(m map[string]any, path string) RecipeTime {
	obj, ok := v.childObject(m, path)
	if !ok {
		return RecipeTime{}
	}
	return RecipeTime{
		PrepMinutes:  v.nonNegativeInt(obj, path+".prepMinutes"),
		CookMinutes:  v.nonNegativeInt(obj, path+".cookMinutes"),
		TotalMinutes: v.nonNegativeInt(obj, path+".totalMinutes"),
	}
}

func (v *validator) recipeIngredients(m map[string]any, path string) []RecipeIngredient {
	items, ok := v.childArray(m, path)
	if !ok {
		return nil
	}
	out := make([]RecipeIngredient, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := item.(map[string]any)
		if !ok {
			v.add(itemPath, "expected object")
			continue
		}
		out = append(out, RecipeIngredient{
			Name:     v.requiredText(obj, itemPath+".name"),
			Quantity: v.positiveNumber(obj, itemPath+".quantity"),
			Unit:     v.requiredText(obj, itemPath+".unit"),
			Notes:    v.optionalText(obj, itemPath+".notes"),
		})
	}
	return out
}

func (v *validator) recipeSteps(m map[string]any, path string) []RecipeStep {
	items, ok := v.childArray(m, path)
	if !ok {
		return nil
	}
	out := make([]RecipeStep, 0, len(items))
	seen := make(map[int]bool, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := item.(map[string]any)
		if !ok {
			v.add(itemPath, "expected object")
			continue
		}
		step := RecipeStep{
			Order:        v.positiveInt(obj, itemPath+".order"),
			Instruction:  v.requiredText(obj, itemPath+".instruction"),
			TimerMinutes: v.optionalNonNegativeInt(obj, itemPath+".timerMinutes"),
		}
		if step.Order > 0 && seen[step.Order] {
			v.add(itemPath+".order", fmt.Sprintf("duplicate order %d", step.Order))
		}
		seen[step.Order] = true
		out = append(out, step)
	}
	return out
}

func (v *validator) substitutions(m map[string]any, path string) []Substitution {
	raw, present := m[fieldName(path)]
	if !present {
		return []Substitution{}
	}
	items, ok := raw.([]any)
	if !ok {
		v.add(path, "expected array")
		return nil
	}
	out := make([]Substitution, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := item.(map[string]any)
		if !ok {
			v.add(itemPath, "expected object")
			continue
		}
		out = append(out, Substitution{
			Ingredient: v.requiredText(obj, itemPath+".ingredient"),
			Options:    v.requiredStringList(obj, itemPath+".options"),
		})
	}
	return out
}

// childObject fetches a required object field.
func (v *validator) childObject(m map[string]any, path string) (map[string]any, bool) {
	raw, present := m[fieldName(path)]
	if !present {
		v.add(path, "required")
		return nil, false
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		v.add(path, "expected object")
		return nil, false
	}
	return obj, true
}

// childArray fetches a required array field.
func (v *validator) childArray(m map[string]any, path string) ([]any, bool) {
	raw, present := m[fieldName(path)]
	if !present {
		v.add(path, "required")
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		v.add(path, "expected array")
		return nil, false
	}
	return items, true
}

func (v *validator) requiredText(m map[string]any, path string) string {
	raw, present := m[fieldName(path)]
	if !present {
		v.add(path, "required")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.add(path, "expected string")
		return ""
	}
	if s == "" {
		v.add(path, "must not be empty")
	}
	return s
}

func (v *validator) optionalText(m map[string]any, path string) string {
	raw, present := m[fieldName(path)]
	if !present || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.add(path, "expected string")
		return ""
	}
	return s
}

// stringList fetches an optional array-of-strings field, defaulting to an
// empty list when absent.
func (v *validator) stringList(m map[string]any, path string) []string {
	raw, present := m[fieldName(path)]
	if !present {
		return []string{}
	}
	items, ok := raw.([]any)
	if !ok {
		v.add(path, "expected array")
		return []string{}
	}
	return v.stringItems(items, path)
}

// requiredStringList is like stringList but the field must be present.
func (v *validator) requiredStringList(m map[string]any, path string) []string {
	raw, present := m[fieldName(path)]
	if !present {
		v.add(path, "required")
		return []string{}
	}
	items, ok := raw.([]any)
	if !ok {
		v.add(path, "expected array")
		return []string{}
	}
	return v.stringItems(items, path)
}

func (v *validator) stringItems(items []any, path string) []string {
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			v.add(fmt.Sprintf("%s[%d]", path, i), "expected string")
			continue
		}
		out = append(out, s)
	}
	return out
}

func (v *validator) number(m map[string]any, path string) (float64, bool) {
	raw, present := m[fieldName(path)]
	if !present {
		v.add(path, "required")
		return 0, false
	}
	n, ok := raw.(float64)
	if !ok {
		v.add(path, "expected number")
		return 0, false
	}
	return n, true
}

func (v *validator) confidence(m map[string]any, path string) float64 {
	n, ok := v.number(m, path)
	if !ok {
		return 0
	}
	if n < 0 || n > 1 {
		v.add(path, fmt.Sprintf("must be between 0 and 1, got %v", n))
	}
	return n
}

func (v *validator) positiveNumber(m map[string]any, path string) float64 {
	n, ok := v.number(m, path)
	if !ok {
		return 0
	}
	if n <= 0 {
		v.add(path, fmt.Sprintf("must be positive, got %v", n))
	}
	return n
}

func (v *validator) optionalPositiveNumber(m map[string]any, path string) *float64 {
	raw, present := m[fieldName(path)]
	if !present || raw == nil {
		return nil
	}
	n, ok := raw.(float64)
	if !ok {
		v.add(path, "expected number")
		return nil
	}
	if n <= 0 {
		v.add(path, fmt.Sprintf("must be positive, got %v", n))
		return nil
	}
	return &n
}

func (v *validator) integer(m map[string]any, path string) (int, bool) {
	n, ok := v.number(m, path)
	if !ok {
		return 0, false
	}
	if n != math.Trunc(n) {
		v.add(path, fmt.Sprintf("expected integer, got %v", n))
		return 0, false
	}
	return int(n), true
}

func (v *validator) nonNegativeInt(m map[string]any, path string) int {
	n, ok := v.integer(m, path)
	if !ok {
		return 0
	}
	if n < 0 {
		v.add(path, fmt.Sprintf("must not be negative, got %d", n))
	}
	return n
}

func (v *validator) positiveInt(m map[string]any, path string) int {
	n, ok := v.integer(m, path)
	if !ok {
		return 0
	}
	if n <= 0 {
		v.add(path, fmt.Sprintf("must be positive, got %d", n))
	}
	return n
}

func (v *validator) optionalNonNegativeInt(m map[string]any, path string) *int {
	raw, present := m[fieldName(path)]
	if !present || raw == nil {
		return nil
	}
	n, ok := raw.(float64)
	if !ok || n != math.Trunc(n) {
		v.add(path, "expected integer")
		return nil
	}
	i := int(n)
	if i < 0 {
		v.add(path, fmt.Sprintf("must not be negative, got %d", i))
		return nil
	}
	return &i
}

func (v *validator) source(m map[string]any, path string) string {
	s := v.requiredText(m, path)
	if s != "" && s != SourceVisible && s != SourceTypical {
		v.add(path, fmt.Sprintf("must be %q or %q, got %q", SourceVisible, SourceTypical, s))
	}
	return s
}

// portions enforces the 2-portion reference basis. The model is always
// instructed to produce a 2-portion recipe; any other value is a violation.
func (v *validator) portions(m map[string]any, path string) int {
	n, ok := v.integer(m, path)
	if !ok {
		return 0
	}
	if n != ReferencePortions {
		v.add(path, fmt.Sprintf("must equal %d, got %d", ReferencePortions, n))
	}
	return n
}

// fieldName returns the last segment of a field path.
func fieldName(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

package analysis

// Dish is the model's best guess at the depicted dish.
type Dish struct {
	Name       string   `json:"name"`
	AltNames   []string `json:"altNames"`
	Cuisine    string   `json:"cuisine,omitempty"`
	Confidence float64  `json:"confidence"`
}

// IngredientInference is one ingredient the model claims to detect or infer.
// Source distinguishes directly observed items ("visible") from typical-recipe
// inferences ("typical").
type IngredientInference struct {
	Name        string   `json:"name"`
	AmountGuess *float64 `json:"amountGuess,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Confidence  float64  `json:"confidence"`
	Source      string   `json:"source"`
}

// RecipeIngredient is one line of the cookable recipe's ingredient list,
// always expressed relative to the 2-portion reference basis.
type RecipeIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
}

// RecipeStep is a single instruction. Order defines execution sequence;
// display sorts by it, not by list position.
type RecipeStep struct {
	Order        int    `json:"order"`
	Instruction  string `json:"instruction"`
	TimerMinutes *int   `json:"timerMinutes,omitempty"`
}

// RecipeTime holds the recipe timing breakdown in minutes.
type RecipeTime struct {
	PrepMinutes  int `json:"prepMinutes"`
	CookMinutes  int `json:"cookMinutes"`
	TotalMinutes int `json:"totalMinutes"`
}

// Substitution lists replacement options for one ingredient.
type Substitution struct {
	Ingredient string   `json:"ingredient"`
	Options    []string `json:"options"`
}

// Recipe is the cookable recipe. Portions is always exactly 2; scaling to
// other portion counts happens downstream.
type Recipe struct {
	Title         string             `json:"title"`
	Portions      int                `json:"portions"`
	Time          RecipeTime         `json:"time"`
	Equipment     []string           `json:"equipment"`
	Ingredients   []RecipeIngredient `json:"ingredients"`
	Steps         []RecipeStep       `json:"steps"`
	Tips          []string           `json:"tips"`
	Substitutions []Substitution     `json:"substitutions"`
	Allergens     []string           `json:"allergens"`
}

// Analysis is the full validated result of analyzing one image.
type Analysis struct {
	Dish                 Dish                  `json:"dish"`
	Ingredients          []IngredientInference `json:"ingredients"`
	RecipeForTwo         Recipe                `json:"recipeForTwo"`
	Assumptions          []string              `json:"assumptions"`
	MissingInfoQuestions []string              `json:"missingInfoQuestions"`
}

// Ingredient source values accepted by the validator.
const (
	SourceVisible = "visible"
	SourceTypical = "typical"
)

// ReferencePortions is the fixed basis all recipe quantities are expressed
// against before scaling.
const ReferencePortions = 2

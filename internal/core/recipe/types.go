package recipe

import (
	"math"
	"strings"

	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/pkg/common"
)

// 列表分頁預設值
const (
	DefaultListLimit = 20
	maxQuantity      = math.MaxInt32
	// MaxRecipeID recipes.id 為 SERIAL (int4)
	MaxRecipeID      = math.MaxInt32
)

// Line 食譜中的一項食材（正規 ID 與公克數）
type Line struct {
	IngredientID    string
	QuantityInGrams int
}

// Recipe 已儲存的食譜
type Recipe struct {
	ID      int64
	Name    string
	Type    *string
	Cuisine *string
	Lines   []Line
}

// Summary 食譜列表項目
type Summary struct {
	RecipeID   int64   `json:"recipe_id"`
	RecipeName string  `json:"recipe_name"`
	RecipeType *string `json:"recipe_type"`
	Cuisine    *string `json:"cuisine"`
}

// LineRequest 建立食譜時的一項食材
type LineRequest struct {
	IngredientID    string  `json:"ingredient_id" binding:"required"`
	QuantityInGrams float64 `json:"quantity_in_grams"`
}

// CreateRequest 建立食譜請求
type CreateRequest struct {
	RecipeName  string        `json:"recipe_name" binding:"required"`
	Ingredients []LineRequest `json:"ingredients" binding:"required,dive"`
	RecipeType  *string       `json:"recipe_type"`
	Cuisine     *string       `json:"cuisine"`
}

// Validate 檢查請求內容，失敗時回傳 *common.ValidationError
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.RecipeName) == "" {
		return common.NewValidationError("recipe_name", "Recipe name cannot be empty")
	}
	if len(r.Ingredients) == 0 {
		return common.NewValidationError("ingredients", "Must have at least one ingredient")
	}
	for _, l := range r.Ingredients {
		if strings.TrimSpace(l.IngredientID) == "" {
			return common.NewValidationError("ingredient_id", "Ingredient ID cannot be empty")
		}
		q := l.QuantityInGrams
		if q <= 0 {
			return common.NewValidationError("quantity_in_grams", "Quantity in grams must be positive")
		}
		if q != math.Trunc(q) {
			return common.NewValidationError("quantity_in_grams", "Quantity in grams must be a whole number")
		}
		if q > maxQuantity {
			return common.NewValidationError("quantity_in_grams", "Quantity in grams is too large")
		}
	}
	return nil
}

// Lines 轉為正規 ID 的食材清單；需先通過 Validate
func (r *CreateRequest) Lines() []Line {
	out := make([]Line, len(r.Ingredients))
	for i, l := range r.Ingredients {
		out[i] = Line{
			IngredientID:    ingredient.Normalize(strings.TrimSpace(l.IngredientID)),
			QuantityInGrams: int(l.QuantityInGrams),
		}
	}
	return out
}

// ResponseLine 回應中的一項食材，ID 為純數字格式
type ResponseLine struct {
	IngredientID    string `json:"ingredient_id"`
	IngredientName  string `json:"ingredient_name"`
	QuantityInGrams int    `json:"quantity_in_grams"`
}

// Response 食譜與其成本、營養
type Response struct {
	RecipeID       int64                `json:"recipe_id"`
	RecipeName     string               `json:"recipe_name"`
	RecipeType     *string              `json:"recipe_type"`
	Cuisine        *string              `json:"cuisine"`
	Ingredients    []ResponseLine       `json:"ingredients"`
	TotalCost      float64              `json:"total_cost"`
	TotalNutrition ingredient.Nutrition `json:"total_nutrition"`
}

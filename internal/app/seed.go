package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/core/recipe"
	"recipe-nutrition/internal/pkg/common"

	"go.uber.org/zap"
)

// 匯入檔名（seed 目錄下）
const (
	IngredientsFile = "ingredients.csv"
	RecipesFile     = "recipes.csv"
)

var (
	ingredientColumns = []string{
		"id", "ingredient_name", "energy", "carb", "protein", "fat",
		"sugar", "water", "fiber", "cost_per_gram", "supplier_name",
	}
	recipeColumns = []string{
		"recipe_id", "recipe_name", "recipe_type", "cuisine",
		"ingredient_id", "quantity_in_grams",
	}
)

// SeedResult 匯入統計
type SeedResult struct {
	IngredientsInserted int
	IngredientsSkipped  int
	RecipesInserted     int
	RecipesSkipped      int
	NextRecipeID        int64
}

// csvTable 依標頭名稱取欄位
type csvTable struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader, required []string) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("missing header row")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return &csvTable{index: index, rows: records[1:]}, nil
}

func (t *csvTable) get(row []string, col string) string {
	i := t.index[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *csvTable) float(row []string, col string, line int) (float64, error) {
	raw := t.get(row, col)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q", line, col, raw)
	}
	return v, nil
}

// ParseIngredients 解析 ingredients.csv；數字 ID 會轉成 ing_XXX
func ParseIngredients(r io.Reader) ([]ingredient.Ingredient, error) {
	t, err := readTable(r, ingredientColumns)
	if err != nil {
		return nil, fmt.Errorf("ingredients: %w", err)
	}

	out := make([]ingredient.Ingredient, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		id := ingredient.Normalize(t.get(row, "id"))
		if id == "" {
			return nil, fmt.Errorf("ingredients: line %d: empty id", line)
		}

		values := make([]float64, 0, 8)
		for _, col := range ingredientColumns[2:10] {
			v, err := t.float(row, col, line)
			if err != nil {
				return nil, fmt.Errorf("ingredients: %w", err)
			}
			values = append(values, v)
		}

		out = append(out, ingredient.Ingredient{
			ID:   id,
			Name: t.get(row, "ingredient_name"),
			Nutrition: ingredient.Nutrition{
				Energy:  values[0],
				Carb:    values[1],
				Protein: values[2],
				Fat:     values[3],
				Sugar:   values[4],
				Water:   values[5],
				Fiber:   values[6],
			},
			CostPerGram:  values[7],
			SupplierName: t.get(row, "supplier_name"),
		})
	}
	return out, nil
}

// ParseRecipes 解析 recipes.csv（每列一項食材），依 recipe_id 合併並保留首次出現順序
func ParseRecipes(r io.Reader) ([]recipe.Recipe, error) {
	t, err := readTable(r, recipeColumns)
	if err != nil {
		return nil, fmt.Errorf("recipes: %w", err)
	}

	var order []int64
	byID := make(map[int64]*recipe.Recipe)
	seen := make(map[int64]map[string]bool)

	for i, row := range t.rows {
		line := i + 2
		rawID := t.get(row, "recipe_id")
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("recipes: line %d: invalid recipe_id %q", line, rawID)
		}

		qty, err := t.float(row, "quantity_in_grams", line)
		if err != nil {
			return nil, fmt.Errorf("recipes: %w", err)
		}
		if qty <= 0 || qty != math.Trunc(qty) || qty > math.MaxInt32 {
			return nil, fmt.Errorf("recipes: line %d: quantity_in_grams must be a positive whole number", line)
		}

		ingredientID := ingredient.Normalize(t.get(row, "ingredient_id"))
		if ingredientID == "" {
			return nil, fmt.Errorf("recipes: line %d: empty ingredient_id", line)
		}

		rec, ok := byID[id]
		if !ok {
			rec = &recipe.Recipe{
				ID:      id,
				Name:    t.get(row, "recipe_name"),
				Type:    optional(t.get(row, "recipe_type")),
				Cuisine: optional(t.get(row, "cuisine")),
			}
			byID[id] = rec
			seen[id] = make(map[string]bool)
			order = append(order, id)
		}

		// 同一食譜重複的食材只保留第一筆
		if seen[id][ingredientID] {
			continue
		}
		seen[id][ingredientID] = true
		rec.Lines = append(rec.Lines, recipe.Line{IngredientID: ingredientID, QuantityInGrams: int(qty)})
	}

	out := make([]recipe.Recipe, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Seed 將資料寫入儲存，已存在的食材與食譜不覆寫，最後重設食譜序列
func Seed(ctx context.Context, s *Storage, ingredients []ingredient.Ingredient, recipes []recipe.Recipe) (*SeedResult, error) {
	res := &SeedResult{}

	for _, ing := range ingredients {
		inserted, err := s.Ingredients.InsertIfMissing(ctx, ing)
		if err != nil {
			return res, fmt.Errorf("insert ingredient %s: %w", ing.ID, err)
		}
		if inserted {
			res.IngredientsInserted++
		} else {
			res.IngredientsSkipped++
		}
	}

	for i := range recipes {
		rec := &recipes[i]
		inserted, err := s.Recipes.InsertIfMissing(ctx, rec)
		if err != nil {
			return res, fmt.Errorf("insert recipe %d: %w", rec.ID, err)
		}
		if inserted {
			res.RecipesInserted++
		} else {
			res.RecipesSkipped++
		}
	}

	maxID, err := s.ResetRecipeSequence(ctx)
	if err != nil {
		// 序列重設失敗不影響已匯入的資料
		common.LogWarn("Could not reset recipe sequence", zap.Error(err))
	} else if maxID > 0 {
		res.NextRecipeID = maxID + 1
	}

	common.LogInfo("資料匯入完成",
		zap.Int("ingredients_inserted", res.IngredientsInserted),
		zap.Int("ingredients_skipped", res.IngredientsSkipped),
		zap.Int("recipes_inserted", res.RecipesInserted),
		zap.Int("recipes_skipped", res.RecipesSkipped),
	)
	return res, nil
}

// SeedFiles 讀取兩個 CSV 檔並匯入；任一路徑為空時略過該檔
func SeedFiles(ctx context.Context, s *Storage, ingredientsPath, recipesPath string) (*SeedResult, error) {
	var (
		ingredients []ingredient.Ingredient
		recipes     []recipe.Recipe
	)

	if ingredientsPath != "" {
		f, err := os.Open(ingredientsPath)
		if err != nil {
			return nil, err
		}
		ingredients, err = ParseIngredients(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	if recipesPath != "" {
		f, err := os.Open(recipesPath)
		if err != nil {
			return nil, err
		}
		recipes, err = ParseRecipes(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	return Seed(ctx, s, ingredients, recipes)
}

// SeedDir 匯入目錄下的 ingredients.csv 與 recipes.csv
func SeedDir(ctx context.Context, s *Storage, dir string) (*SeedResult, error) {
	return SeedFiles(ctx, s, filepath.Join(dir, IngredientsFile), filepath.Join(dir, RecipesFile))
}

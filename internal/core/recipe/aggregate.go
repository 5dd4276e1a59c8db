package recipe

import (
	"context"

	"recipe-nutrition/internal/core/cache"
	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/pkg/common"
)

// IngredientResolver 依 ID 讀取單一食材
type IngredientResolver interface {
	Resolve(ctx context.Context, id string) (*ingredient.Ingredient, cache.LookupResult, error)
}

// ResolvedLine 已解析的食材項目
type ResolvedLine struct {
	Ingredient      ingredient.Ingredient
	QuantityInGrams int
}

// Aggregation 食譜的總成本與總營養
type Aggregation struct {
	Cost      float64
	Nutrition ingredient.Nutrition
	Lines     []ResolvedLine
}

// Aggregator 計算食譜成本與營養
type Aggregator struct {
	resolver IngredientResolver
}

func NewAggregator(resolver IngredientResolver) *Aggregator {
	return &Aggregator{resolver: resolver}
}

// Aggregate 依序解析每一項食材並累加；任一食材不存在即失敗，不回傳部分結果。
// 營養值以每 100 公克計，成本四捨五入到小數第二位。
func (a *Aggregator) Aggregate(ctx context.Context, lines []Line) (*Aggregation, error) {
	out := &Aggregation{Lines: make([]ResolvedLine, 0, len(lines))}
	var cost float64

	for _, l := range lines {
		ing, _, err := a.resolver.Resolve(ctx, l.IngredientID)
		if err != nil {
			return nil, err
		}
		if ing == nil {
			return nil, common.NewNotFoundError("ingredient", ingredient.Display(l.IngredientID))
		}

		grams := float64(l.QuantityInGrams)
		cost += ing.CostPerGram * grams
		out.Nutrition = out.Nutrition.Add(ing.Nutrition, grams/100.0)
		out.Lines = append(out.Lines, ResolvedLine{Ingredient: *ing, QuantityInGrams: l.QuantityInGrams})
	}

	out.Cost = common.RoundTo(cost, 2)
	return out, nil
}

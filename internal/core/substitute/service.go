package substitute

import (
	"context"
	"errors"

	"recipe-nutrition/internal/core/cache"
	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/pkg/common"
	"recipe-nutrition/internal/pkg/metrics"

	"go.uber.org/zap"
)

// DefaultLimit 未指定 limit 時回傳的替代品數量
const DefaultLimit = 3

// Resolver 依 ID 讀取單一食材
type Resolver interface {
	Resolve(ctx context.Context, id string) (*ingredient.Ingredient, cache.LookupResult, error)
}

// Substitute 回傳給呼叫端的替代食材
type Substitute struct {
	IngredientID    string               `json:"ingredient_id"`
	IngredientName  string               `json:"ingredient_name"`
	SimilarityScore float64              `json:"similarity_score"`
	Nutrition       ingredient.Nutrition `json:"nutrition"`
	CostPerGram     float64              `json:"cost_per_gram"`
	SupplierName    string               `json:"supplier_name"`
}

// Service 替代食材查詢服務
type Service struct {
	resolver Resolver
	features *FeatureStore
}

func NewService(resolver Resolver, features *FeatureStore) *Service {
	return &Service{resolver: resolver, features: features}
}

// Substitutes 查詢與指定食材最相近的 limit 個替代品。
// 食材不存在時回傳 NotFoundError；特徵無法建立時回傳空清單。
func (s *Service) Substitutes(ctx context.Context, id string, limit int) ([]Substitute, error) {
	canonical := ingredient.Normalize(id)

	ing, _, err := s.resolver.Resolve(ctx, canonical)
	if err != nil {
		metrics.SubstituteRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if ing == nil {
		metrics.SubstituteRequestsTotal.WithLabelValues("not_found").Inc()
		return nil, common.NewNotFoundError("ingredient", id)
	}

	snap, err := s.features.Ensure(ctx)
	if err != nil {
		if !errors.Is(err, ErrFeatureUnavailable) {
			metrics.SubstituteRequestsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.SubstituteRequestsTotal.WithLabelValues("degraded").Inc()
		common.LogWarn("Features unavailable, returning no substitutes",
			zap.String("ingredient_id", canonical),
			zap.Error(err),
		)
		return []Substitute{}, nil
	}

	ranked := RankSubstitutes(snap, canonical, limit)
	out := make([]Substitute, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, Substitute{
			IngredientID:    ingredient.Display(r.Ingredient.ID),
			IngredientName:  r.Ingredient.Name,
			SimilarityScore: r.Score,
			Nutrition:       r.Ingredient.Nutrition,
			CostPerGram:     r.Ingredient.CostPerGram,
			SupplierName:    r.Ingredient.SupplierName,
		})
	}

	metrics.SubstituteRequestsTotal.WithLabelValues("ok").Inc()
	common.LogDebug("Substitutes ranked",
		zap.String("ingredient_id", canonical),
		zap.Uint64("snapshot_version", snap.Version),
		zap.Int("returned", len(out)),
	)
	return out, nil
}

// Reload 立即重建快照；失敗時繼續使用上一個快照
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	return s.features.Refresh(ctx)
}

// Features 回傳底層的特徵快照管理器
func (s *Service) Features() *FeatureStore {
	return s.features
}

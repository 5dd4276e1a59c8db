package recipe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"recipe-nutrition/internal/core/cache"
	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/pkg/common"
	"recipe-nutrition/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Service 食譜建立與查詢
type Service struct {
	repo       Repository
	aggregator *Aggregator
	cache      cache.Store
	ttl        time.Duration
}

// NewService 創建食譜服務
func NewService(repo Repository, resolver IngredientResolver, store cache.Store, ttl time.Duration) *Service {
	if store == nil {
		store = cache.NopStore{}
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Service{
		repo:       repo,
		aggregator: NewAggregator(resolver),
		cache:      store,
		ttl:        ttl,
	}
}

// Create 驗證、計算並儲存食譜。
// 任一食材不存在時回傳 NotFoundError，且不會寫入任何資料。
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lines := req.Lines()
	agg, err := s.aggregator.Aggregate(ctx, lines)
	if err != nil {
		return nil, err
	}

	rec := &Recipe{
		Name:    strings.TrimSpace(req.RecipeName),
		Type:    req.RecipeType,
		Cuisine: req.Cuisine,
		Lines:   lines,
	}
	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	rec.ID = id

	resp := buildResponse(rec, agg)
	common.LogInfo("Recipe created",
		zap.Int64("recipe_id", id),
		zap.Int("ingredients", len(lines)),
		zap.Float64("total_cost", resp.TotalCost),
	)
	return resp, nil
}

// Get 讀取食譜並以目前的食材資料重新計算；結果快取於 recipe:<id>
func (s *Service) Get(ctx context.Context, id int64) (*Response, error) {
	if id <= 0 || id > MaxRecipeID {
		return nil, common.NewNotFoundError("recipe", strconv.FormatInt(id, 10))
	}
	key := cache.RecipeKey(id)

	var cached Response
	res := cache.GetJSON(ctx, s.cache, key, &cached)
	metrics.RecordCacheLookup("recipe", res.String())
	switch res {
	case cache.Hit:
		common.LogCacheHit("recipe", key)
		return &cached, nil
	case cache.Unavailable:
		common.LogWarn("Cache read failed for recipe, falling back to database", zap.Int64("recipe_id", id))
	default:
		common.LogCacheMiss("recipe", key)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe %d: %w", id, err)
	}
	if rec == nil {
		return nil, common.NewNotFoundError("recipe", strconv.FormatInt(id, 10))
	}

	agg, err := s.aggregator.Aggregate(ctx, rec.Lines)
	if err != nil {
		return nil, err
	}
	resp := buildResponse(rec, agg)

	if err := cache.SetJSON(ctx, s.cache, key, resp, s.ttl); err != nil {
		metrics.RecordCacheWriteFailure("recipe")
		common.LogWarn("Cache write failed for recipe", zap.Int64("recipe_id", id), zap.Error(err))
	}
	return resp, nil
}

// List 分頁列出食譜摘要
func (s *Service) List(ctx context.Context, limit, skip int) ([]Summary, error) {
	if limit < 0 {
		return nil, common.NewValidationError("limit", "limit must be non-negative")
	}
	if skip < 0 {
		return nil, common.NewValidationError("skip", "skip must be non-negative")
	}
	return s.repo.List(ctx, limit, skip)
}

// Count 食譜總數
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func buildResponse(rec *Recipe, agg *Aggregation) *Response {
	lines := make([]ResponseLine, len(agg.Lines))
	for i, l := range agg.Lines {
		lines[i] = ResponseLine{
			IngredientID:    ingredient.Display(l.Ingredient.ID),
			IngredientName:  l.Ingredient.Name,
			QuantityInGrams: l.QuantityInGrams,
		}
	}
	return &Response{
		RecipeID:       rec.ID,
		RecipeName:     rec.Name,
		RecipeType:     nonEmpty(rec.Type),
		Cuisine:        nonEmpty(rec.Cuisine),
		Ingredients:    lines,
		TotalCost:      agg.Cost,
		TotalNutrition: agg.Nutrition,
	}
}

// nonEmpty 空字串視為未設定
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

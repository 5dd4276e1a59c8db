package ingredient

import (
	"context"
	"fmt"
	"time"

	"recipe-nutrition/internal/core/cache"
	"recipe-nutrition/internal/pkg/common"
	"recipe-nutrition/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Resolver 先查快取、再查資料庫的食材讀取器
type Resolver struct {
	repo  Repository
	cache cache.Store
	ttl   time.Duration
}

// NewResolver 創建食材讀取器；ttl <= 0 時使用預設的一小時
func NewResolver(repo Repository, store cache.Store, ttl time.Duration) *Resolver {
	if store == nil {
		store = cache.NopStore{}
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Resolver{repo: repo, cache: store, ttl: ttl}
}

// Resolve 依任一格式的 ID 取得食材。
// 快取失敗一律視同未命中；只有資料庫也查無資料時才回傳 nil。
func (r *Resolver) Resolve(ctx context.Context, id string) (*Ingredient, cache.LookupResult, error) {
	canonical := Normalize(id)
	key := cache.IngredientKey(canonical)

	var cached Ingredient
	res := cache.GetJSON(ctx, r.cache, key, &cached)
	metrics.RecordCacheLookup("ingredient", res.String())

	switch res {
	case cache.Hit:
		common.LogCacheHit("ingredient", key)
		return &cached, res, nil
	case cache.Unavailable:
		common.LogWarn("Cache read failed for ingredient, falling back to database",
			zap.String("ingredient_id", canonical),
		)
	default:
		common.LogCacheMiss("ingredient", key)
	}

	ing, err := r.repo.GetByID(ctx, canonical)
	if err != nil {
		return nil, res, fmt.Errorf("failed to load ingredient %s: %w", canonical, err)
	}
	if ing == nil {
		return nil, res, nil
	}

	if err := cache.SetJSON(ctx, r.cache, key, ing, r.ttl); err != nil {
		metrics.RecordCacheWriteFailure("ingredient")
		common.LogWarn("Cache write failed for ingredient",
			zap.String("ingredient_id", canonical),
			zap.Error(err),
		)
	}

	return ing, res, nil
}

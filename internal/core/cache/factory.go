package cache

import (
	"context"

	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	"go.uber.org/zap"
)

// New 依設定建立快取後端。Redis 無法連線時只記錄警告並保留 Redis 後端，
// 連線恢復前每次查詢都回報 Unavailable，由呼叫端改查資料庫。
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return NopStore{}, nil
	}

	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		return NewMemoryStore(cfg.Cache), nil
	default:
		store, err := NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			common.LogWarn("Redis connection failed, continuing without cache until it recovers",
				zap.Error(err),
			)
		} else {
			common.LogInfo("Redis connected")
		}
		return store, nil
	}
}

package app

import (
	"context"

	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/core/recipe"
	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/infrastructure/database"
	"recipe-nutrition/internal/pkg/common"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage 食材與食譜儲存；memory:// 模式下 pool 為 nil
type Storage struct {
	Ingredients ingredient.Repository
	Recipes     recipe.Repository

	pool *pgxpool.Pool
}

// OpenStorage 依 database.url 連線 PostgreSQL，或建立行程內儲存
func OpenStorage(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	if cfg.InMemory() {
		common.LogWarn("Using in-memory storage, data will not survive a restart")
		return &Storage{
			Ingredients: ingredient.NewMemoryRepository(),
			Recipes:     recipe.NewMemoryRepository(),
		}, nil
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{
		Ingredients: ingredient.NewPostgresRepository(pool),
		Recipes:     recipe.NewPostgresRepository(pool),
		pool:        pool,
	}, nil
}

// ResetRecipeSequence 匯入指定 ID 的食譜後，讓自動編號從最大 ID 之後開始
func (s *Storage) ResetRecipeSequence(ctx context.Context) (int64, error) {
	if s.pool == nil {
		return 0, nil
	}
	return database.ResetRecipeSequence(ctx, s.pool)
}

func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

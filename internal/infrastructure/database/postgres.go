package database

import (
	"context"
	"fmt"

	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Querier pgxpool.Pool 與 pgx.Tx 的共同介面，讓 repository 可在交易內外使用
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB 可開啟交易的 Querier（*pgxpool.Pool）
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx 在交易中執行 fn；fn 回傳錯誤時先回滾再回傳
func WithTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// commit 之後的 rollback 是 no-op
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Connect 建立連線池、測試連線並初始化資料表
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	common.LogInfo("Connected to PostgreSQL",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.String("database", poolConfig.ConnConfig.Database),
	)

	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return pool, nil
}

// InitSchema 建立資料表（若不存在）
func InitSchema(ctx context.Context, db Querier) error {
	// -------------------------------
	// INGREDIENTS
	// -------------------------------
	ingredientsSQL := `
		CREATE TABLE IF NOT EXISTS ingredients (
			id VARCHAR(32) PRIMARY KEY,
			ingredient_name VARCHAR(255) NOT NULL,
			energy DOUBLE PRECISION NOT NULL DEFAULT 0,
			carb DOUBLE PRECISION NOT NULL DEFAULT 0,
			protein DOUBLE PRECISION NOT NULL DEFAULT 0,
			fat DOUBLE PRECISION NOT NULL DEFAULT 0,
			sugar DOUBLE PRECISION NOT NULL DEFAULT 0,
			water DOUBLE PRECISION NOT NULL DEFAULT 0,
			fiber DOUBLE PRECISION NOT NULL DEFAULT 0,
			cost_per_gram DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (cost_per_gram >= 0),
			supplier_name VARCHAR(255) NOT NULL DEFAULT ''
		)
	`
	if _, err := db.Exec(ctx, ingredientsSQL); err != nil {
		return err
	}
	if _, err := db.Exec(ctx, `CREATE INDEX IF NOT EXISTS ix_ingredients_name ON ingredients (ingredient_name)`); err != nil {
		return err
	}

	// -------------------------------
	// RECIPES
	// -------------------------------
	recipesSQL := `
		CREATE TABLE IF NOT EXISTS recipes (
			id SERIAL PRIMARY KEY,
			recipe_name VARCHAR(255) NOT NULL,
			recipe_type VARCHAR(100) NULL,
			cuisine VARCHAR(100) NULL
		)
	`
	if _, err := db.Exec(ctx, recipesSQL); err != nil {
		return err
	}
	if _, err := db.Exec(ctx, `CREATE INDEX IF NOT EXISTS ix_recipes_name ON recipes (recipe_name)`); err != nil {
		return err
	}

	// -------------------------------
	// RECIPE INGREDIENTS
	// -------------------------------
	recipeIngredientsSQL := `
		CREATE TABLE IF NOT EXISTS recipe_ingredients (
			id SERIAL PRIMARY KEY,
			recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			ingredient_id VARCHAR(32) NOT NULL REFERENCES ingredients(id),
			quantity_in_grams INTEGER NOT NULL CHECK (quantity_in_grams > 0)
		)
	`
	if _, err := db.Exec(ctx, recipeIngredientsSQL); err != nil {
		return err
	}
	if _, err := db.Exec(ctx, `CREATE INDEX IF NOT EXISTS ix_recipe_ingredients_recipe ON recipe_ingredients (recipe_id)`); err != nil {
		return err
	}

	common.LogInfo("Schema initialized successfully")
	return nil
}

// ResetRecipeSequence 將 recipes 的序列對齊目前最大 ID，避免匯入資料後 ID 衝突
func ResetRecipeSequence(ctx context.Context, db Querier) (int64, error) {
	var maxID int64
	if err := db.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM recipes`).Scan(&maxID); err != nil {
		return 0, err
	}
	if maxID == 0 {
		// setval 不接受 0，空表時讓下一個值從 1 開始
		_, err := db.Exec(ctx, `SELECT setval('recipes_id_seq', 1, false)`)
		return 0, err
	}
	_, err := db.Exec(ctx, `SELECT setval('recipes_id_seq', $1, true)`, maxID)
	return maxID, err
}

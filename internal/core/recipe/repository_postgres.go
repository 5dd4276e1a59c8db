package recipe

import (
	"context"
	"errors"
	"fmt"

	"recipe-nutrition/internal/infrastructure/database"

	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	db database.DB
}

func NewPostgresRepository(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rec *Recipe) (int64, error) {
	var id int64
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO recipes (recipe_name, recipe_type, cuisine)
			VALUES ($1, $2, $3)
			RETURNING id
		`, rec.Name, rec.Type, rec.Cuisine).Scan(&id); err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		return insertLines(ctx, tx, id, rec.Lines)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresRepository) InsertIfMissing(ctx context.Context, rec *Recipe) (bool, error) {
	inserted := false
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO recipes (id, recipe_name, recipe_type, cuisine)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, rec.ID, rec.Name, rec.Type, rec.Cuisine)
		if err != nil {
			return fmt.Errorf("insert recipe %d: %w", rec.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		inserted = true
		return insertLines(ctx, tx, rec.ID, rec.Lines)
	})
	return inserted, err
}

func insertLines(ctx context.Context, tx pgx.Tx, recipeID int64, lines []Line) error {
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity_in_grams)
			VALUES ($1, $2, $3)
		`, recipeID, l.IngredientID, l.QuantityInGrams)
	}
	br := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert recipe line: %w", err)
		}
	}
	return br.Close()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Recipe, error) {
	rec := Recipe{ID: id}
	err := r.db.QueryRow(ctx, `
		SELECT recipe_name, recipe_type, cuisine
		FROM recipes
		WHERE id = $1
	`, id).Scan(&rec.Name, &rec.Type, &rec.Cuisine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT ingredient_id, quantity_in_grams
		FROM recipe_ingredients
		WHERE recipe_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.IngredientID, &l.QuantityInGrams); err != nil {
			return nil, err
		}
		rec.Lines = append(rec.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, skip int) ([]Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, recipe_name, recipe_type, cuisine
		FROM recipes
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.RecipeID, &s.RecipeName, &s.RecipeType, &s.Cuisine); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n)
	return n, err
}

package ingredient

import (
	"context"
	"errors"

	"recipe-nutrition/internal/infrastructure/database"

	"github.com/jackc/pgx/v5"
)

const ingredientColumns = `id, ingredient_name, energy, carb, protein, fat, sugar, water, fiber, cost_per_gram, supplier_name`

type PostgresRepository struct {
	db database.Querier
}

func NewPostgresRepository(db database.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanIngredient(row pgx.Row) (*Ingredient, error) {
	var ing Ingredient
	n := &ing.Nutrition
	err := row.Scan(
		&ing.ID, &ing.Name,
		&n.Energy, &n.Carb, &n.Protein, &n.Fat, &n.Sugar, &n.Water, &n.Fiber,
		&ing.CostPerGram, &ing.SupplierName,
	)
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Ingredient, error) {
	ing, err := scanIngredient(r.db.QueryRow(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ing, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Ingredient, error) {
	return r.query(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		ORDER BY id
	`)
}

func (r *PostgresRepository) List(ctx context.Context, limit, skip int) ([]Ingredient, error) {
	return r.query(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, skip)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ingredients`).Scan(&n)
	return n, err
}

func (r *PostgresRepository) InsertIfMissing(ctx context.Context, ing Ingredient) (bool, error) {
	n := ing.Nutrition
	tag, err := r.db.Exec(ctx, `
		INSERT INTO ingredients (`+ingredientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, ing.ID, ing.Name,
		n.Energy, n.Carb, n.Protein, n.Fat, n.Sugar, n.Water, n.Fiber,
		ing.CostPerGram, ing.SupplierName)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) query(ctx context.Context, sql string, args ...any) ([]Ingredient, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ing)
	}
	return out, rows.Err()
}

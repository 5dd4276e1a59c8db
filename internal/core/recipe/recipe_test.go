package recipe

import (
	"context"
	"errors"
	"math"
	"testing"

	"recipe-nutrition/internal/core/cache"
	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIngredients() []ingredient.Ingredient {
	return []ingredient.Ingredient{
		{
			ID:           "ing_001",
			Name:         "Rice",
			Nutrition:    ingredient.Nutrition{Energy: 150, Carb: 30, Protein: 3, Fat: 0.5, Sugar: 0.1, Water: 60, Fiber: 0.4},
			CostPerGram:  0.05,
			SupplierName: "Acme",
		},
		{
			ID:           "ing_002",
			Name:         "Chicken",
			Nutrition:    ingredient.Nutrition{Energy: 239, Protein: 27, Fat: 14, Water: 58},
			CostPerGram:  0.013,
			SupplierName: "Farm",
		},
		{
			ID:          "ing_010",
			Name:        "Olive Oil",
			Nutrition:   ingredient.Nutrition{Energy: 884, Fat: 100},
			CostPerGram: 0.021,
		},
	}
}

func newTestService(t *testing.T) (*Service, *MemoryRepository, *ingredient.MemoryRepository) {
	t.Helper()
	common.InitNopLogger()
	ingRepo := ingredient.NewMemoryRepository(testIngredients()...)
	store := cache.NewMemoryStore(config.CacheConfig{Enabled: true, MaxSize: 100})
	t.Cleanup(func() { _ = store.Close() })

	resolver := ingredient.NewResolver(ingRepo, store, 0)
	repo := NewMemoryRepository()
	return NewService(repo, resolver, store, 0), repo, ingRepo
}

func aggregatorFor(items ...ingredient.Ingredient) *Aggregator {
	return NewAggregator(ingredient.NewResolver(ingredient.NewMemoryRepository(items...), nil, 0))
}

func TestAggregate_ExampleLine(t *testing.T) {
	common.InitNopLogger()
	a := aggregatorFor(testIngredients()...)

	agg, err := a.Aggregate(context.Background(), []Line{{IngredientID: ingredient.Normalize("1"), QuantityInGrams: 100}})
	require.NoError(t, err)
	assert.Equal(t, 5.00, agg.Cost)
	assert.Equal(t, 150.0, agg.Nutrition.Energy)
	assert.Equal(t, 60.0, agg.Nutrition.Water)
}

func TestAggregate_LinearInQuantity(t *testing.T) {
	common.InitNopLogger()
	a := aggregatorFor(testIngredients()...)
	ctx := context.Background()

	for _, id := range []string{"ing_001", "ing_002", "ing_010"} {
		single, err := a.Aggregate(ctx, []Line{{IngredientID: id, QuantityInGrams: 137}})
		require.NoError(t, err)
		double, err := a.Aggregate(ctx, []Line{{IngredientID: id, QuantityInGrams: 274}})
		require.NoError(t, err)

		s := nutritionFields(single.Nutrition)
		d := nutritionFields(double.Nutrition)
		for i := range s {
			assert.InDelta(t, 2*s[i], d[i], 1e-6*math.Max(1, math.Abs(d[i])))
		}
	}
}

func nutritionFields(n ingredient.Nutrition) []float64 {
	return []float64{n.Energy, n.Carb, n.Protein, n.Fat, n.Sugar, n.Water, n.Fiber}
}

func TestAggregate_CostIsSumOfLines(t *testing.T) {
	common.InitNopLogger()
	a := aggregatorFor(testIngredients()...)
	lines := []Line{
		{IngredientID: "ing_001", QuantityInGrams: 250},
		{IngredientID: "ing_002", QuantityInGrams: 333},
		{IngredientID: "ing_010", QuantityInGrams: 15},
		{IngredientID: "ing_001", QuantityInGrams: 1},
	}
	want := 0.05*250 + 0.013*333 + 0.021*15 + 0.05*1

	agg, err := a.Aggregate(context.Background(), lines)
	require.NoError(t, err)
	assert.InDelta(t, want, agg.Cost, 0.01)
	assert.Len(t, agg.Lines, 4)
	assert.Equal(t, "Olive Oil", agg.Lines[2].Ingredient.Name)
}

func TestAggregate_UnknownIngredient(t *testing.T) {
	common.InitNopLogger()
	a := aggregatorFor(testIngredients()...)

	agg, err := a.Aggregate(context.Background(), []Line{
		{IngredientID: "ing_001", QuantityInGrams: 100},
		{IngredientID: "ing_404", QuantityInGrams: 100},
	})
	assert.Nil(t, agg)
	require.Error(t, err)
	assert.True(t, common.IsNotFoundError(err))
	assert.Equal(t, "Ingredient 404 not found", err.Error())
}

func TestCreateRequest_Validate(t *testing.T) {
	valid := func() CreateRequest {
		return CreateRequest{
			RecipeName:  "Fried Rice",
			Ingredients: []LineRequest{{IngredientID: "1", QuantityInGrams: 100}},
		}
	}

	r := valid()
	assert.NoError(t, r.Validate())

	cases := map[string]func(*CreateRequest){
		"recipe_name":       func(r *CreateRequest) { r.RecipeName = "  " },
		"ingredients":       func(r *CreateRequest) { r.Ingredients = nil },
		"ingredient_id":     func(r *CreateRequest) { r.Ingredients[0].IngredientID = "" },
		"zero quantity":     func(r *CreateRequest) { r.Ingredients[0].QuantityInGrams = 0 },
		"negative quantity": func(r *CreateRequest) { r.Ingredients[0].QuantityInGrams = -5 },
		"fraction":          func(r *CreateRequest) { r.Ingredients[0].QuantityInGrams = 12.5 },
		"overflow":          func(r *CreateRequest) { r.Ingredients[0].QuantityInGrams = 1e12 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := valid()
			mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, common.IsValidationError(err))
		})
	}
}

func TestCreateRequest_QuantityMessages(t *testing.T) {
	cases := []struct {
		qty  float64
		want string
	}{
		{0, "Quantity in grams must be positive"},
		{-1, "Quantity in grams must be positive"},
		{2.5, "Quantity in grams must be a whole number"},
		{math.MaxInt32 + 1, "Quantity in grams is too large"},
	}
	for _, tc := range cases {
		r := CreateRequest{RecipeName: "Q", Ingredients: []LineRequest{{IngredientID: "1", QuantityInGrams: tc.qty}}}
		var ve *common.ValidationError
		require.True(t, errors.As(r.Validate(), &ve), "qty %v", tc.qty)
		assert.Equal(t, "quantity_in_grams", ve.Field)
		assert.Equal(t, tc.want, ve.Message)
	}
}

func TestCreateRequest_LinesNormalizeIDs(t *testing.T) {
	r := CreateRequest{Ingredients: []LineRequest{
		{IngredientID: "7", QuantityInGrams: 10},
		{IngredientID: " ing_020 ", QuantityInGrams: 20},
	}}
	assert.Equal(t, []Line{
		{IngredientID: "ing_007", QuantityInGrams: 10},
		{IngredientID: "ing_020", QuantityInGrams: 20},
	}, r.Lines())
}

func TestService_CreateThenGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	cuisine := "Asian"

	created, err := svc.Create(ctx, &CreateRequest{
		RecipeName: "Chicken Rice",
		Cuisine:    &cuisine,
		Ingredients: []LineRequest{
			{IngredientID: "1", QuantityInGrams: 200},
			{IngredientID: "ing_002", QuantityInGrams: 150},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.RecipeID)
	assert.Nil(t, created.RecipeType)
	assert.Equal(t, "Asian", *created.Cuisine)
	assert.Equal(t, []ResponseLine{
		{IngredientID: "1", IngredientName: "Rice", QuantityInGrams: 200},
		{IngredientID: "2", IngredientName: "Chicken", QuantityInGrams: 150},
	}, created.Ingredients)
	assert.InDelta(t, 0.05*200+0.013*150, created.TotalCost, 0.01)

	fetched, err := svc.Get(ctx, created.RecipeID)
	require.NoError(t, err)
	assert.Equal(t, created.Ingredients, fetched.Ingredients)
	assert.InDelta(t, created.TotalCost, fetched.TotalCost, 0.01)
	assert.InDelta(t, created.TotalNutrition.Energy, fetched.TotalNutrition.Energy, 1e-6)
	assert.InDelta(t, created.TotalNutrition.Protein, fetched.TotalNutrition.Protein, 1e-6)
}

func TestService_CreateUnknownIngredientPersistsNothing(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateRequest{
		RecipeName: "Mystery",
		Ingredients: []LineRequest{
			{IngredientID: "1", QuantityInGrams: 100},
			{IngredientID: "999", QuantityInGrams: 100},
		},
	})
	require.Error(t, err)
	assert.True(t, common.IsNotFoundError(err))
	assert.Contains(t, err.Error(), "999")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_CreateRejectsInvalidBeforeStorage(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &CreateRequest{
		RecipeName:  "Bad",
		Ingredients: []LineRequest{{IngredientID: "1", QuantityInGrams: 2.5}},
	})
	assert.True(t, common.IsValidationError(err))
	n, _ := repo.Count(context.Background())
	assert.Zero(t, n)
}

func TestService_GetServesFromCache(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &Recipe{Name: "Plain Rice", Lines: []Line{{IngredientID: "ing_001", QuantityInGrams: 100}}})
	require.NoError(t, err)

	first, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5.0, first.TotalCost)

	// 快取命中時不再讀取資料庫
	repo.mu.Lock()
	delete(repo.recipes, id)
	repo.mu.Unlock()

	second, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestService_GetUnknownRecipe(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, common.IsNotFoundError(err))
	assert.Equal(t, "Recipe 42 not found", err.Error())
}

// strictRepo 讀取時檢查 ID 是否在 int4 範圍內，模擬 SERIAL 欄位
type strictRepo struct {
	*MemoryRepository
	reads int
}

func (r *strictRepo) GetByID(ctx context.Context, id int64) (*Recipe, error) {
	r.reads++
	if id > math.MaxInt32 {
		return nil, errors.New("9999999999 is greater than maximum value for int4")
	}
	return r.MemoryRepository.GetByID(ctx, id)
}

func TestService_GetOutOfRangeIDIsNotFound(t *testing.T) {
	common.InitNopLogger()
	repo := &strictRepo{MemoryRepository: NewMemoryRepository()}
	svc := NewService(repo, ingredient.NewResolver(ingredient.NewMemoryRepository(testIngredients()...), nil, 0), nil, 0)

	for _, id := range []int64{9999999999, math.MaxInt32 + 1, 0, -3} {
		_, err := svc.Get(context.Background(), id)
		require.Error(t, err, "id %d", id)
		assert.True(t, common.IsNotFoundError(err), "id %d: %v", id, err)
	}
	assert.Zero(t, repo.reads)
}

type brokenRepo struct{ *MemoryRepository }

func (brokenRepo) Create(context.Context, *Recipe) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestService_CreateStorageFailure(t *testing.T) {
	common.InitNopLogger()
	resolver := ingredient.NewResolver(ingredient.NewMemoryRepository(testIngredients()...), nil, 0)
	svc := NewService(brokenRepo{NewMemoryRepository()}, resolver, nil, 0)

	_, err := svc.Create(context.Background(), &CreateRequest{
		RecipeName:  "Rice",
		Ingredients: []LineRequest{{IngredientID: "1", QuantityInGrams: 100}},
	})
	require.Error(t, err)
	assert.False(t, common.IsNotFoundError(err))
	assert.False(t, common.IsValidationError(err))
	assert.ErrorContains(t, err, "connection refused")
}

func TestService_List(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, &Recipe{Name: name})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].RecipeName)
	assert.Equal(t, int64(3), page[1].RecipeID)

	_, err = svc.List(ctx, -1, 0)
	assert.True(t, common.IsValidationError(err))
	_, err = svc.List(ctx, 1, -1)
	assert.True(t, common.IsValidationError(err))
}

func TestMemoryRepository_InsertIfMissingKeepsSequence(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	ok, err := repo.InsertIfMissing(ctx, &Recipe{ID: 5, Name: "seeded"})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.InsertIfMissing(ctx, &Recipe{ID: 5, Name: "again"})
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := repo.Create(ctx, &Recipe{Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), id)
}

package ingredient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"recipe-nutrition/internal/core/cache"
	"recipe-nutrition/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"1":       "ing_001",
		"01":      "ing_001",
		"42":      "ing_042",
		"123":     "ing_123",
		"1234":    "ing_1234",
		"ing_001": "ing_001",
		"abc":     "abc",
		"":        "",
		"-1":      "-1",
		"1.5":     "1.5",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"1", "7", "99", "100", "ing_005", "garlic", "0"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize not idempotent for %q", in)
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "1", Display("ing_001"))
	assert.Equal(t, "42", Display("ing_042"))
	assert.Equal(t, "1234", Display("ing_1234"))
	assert.Equal(t, "0", Display("ing_000"))
	assert.Equal(t, "ing_abc", Display("ing_abc"))
	assert.Equal(t, "7", Display("7"))
	assert.Equal(t, "garlic", Display("garlic"))

	for _, n := range []string{"1", "12", "123"} {
		assert.Equal(t, n, Display(Normalize(n)))
	}
	assert.Equal(t, "ing_009", FromNumber(9))
}

func TestNutritionFeatureVector(t *testing.T) {
	n := Nutrition{Energy: 1, Carb: 2, Protein: 3, Fat: 4, Sugar: 5, Water: 99, Fiber: 6}
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, n.FeatureVector())
}

// countingStore 記錄呼叫次數並可模擬故障
type countingStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	sets    int
	failGet bool
	failSet bool
	lastTTL time.Duration
}

func newCountingStore() *countingStore {
	return &countingStore{data: make(map[string][]byte)}
}

func (s *countingStore) Get(_ context.Context, key string) ([]byte, cache.LookupResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.failGet {
		return nil, cache.Unavailable
	}
	v, ok := s.data[key]
	if !ok {
		return nil, cache.Miss
	}
	return v, cache.Hit
}

func (s *countingStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.lastTTL = ttl
	if s.failSet {
		return errors.New("redis down")
	}
	s.data[key] = value
	return nil
}

func (s *countingStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *countingStore) Ping(context.Context) error { return nil }
func (s *countingStore) Close() error { return nil }

// countingRepo 包裝 MemoryRepository 並計算讀取次數
type countingRepo struct {
	*MemoryRepository
	reads int
	err   error
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*Ingredient, error) {
	r.reads++
	if r.err != nil {
		return nil, r.err
	}
	return r.MemoryRepository.GetByID(ctx, id)
}

func sampleIngredient() Ingredient {
	return Ingredient{
		ID:           "ing_001",
		Name:         "Rice",
		Nutrition:    Nutrition{Energy: 150, Carb: 30, Protein: 3},
		CostPerGram:  0.05,
		SupplierName: "Acme",
	}
}

func TestResolver_ReadThrough(t *testing.T) {
	common.InitNopLogger()
	repo := &countingRepo{MemoryRepository: NewMemoryRepository(sampleIngredient())}
	store := newCountingStore()
	r := NewResolver(repo, store, 0)
	ctx := context.Background()

	ing, res, err := r.Resolve(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, ing)
	assert.Equal(t, cache.Miss, res)
	assert.Equal(t, "Rice", ing.Name)
	assert.Equal(t, 1, repo.reads)
	assert.Equal(t, cache.DefaultTTL, store.lastTTL)
	assert.Contains(t, store.data, "ingredient:ing_001")

	// 第二次以正規格式查詢，應命中同一個快取鍵
	ing, res, err = r.Resolve(ctx, "ing_001")
	require.NoError(t, err)
	assert.Equal(t, cache.Hit, res)
	assert.Equal(t, sampleIngredient(), *ing)
	assert.Equal(t, 1, repo.reads)
}

func TestResolver_CacheUnavailableFallsThrough(t *testing.T) {
	common.InitNopLogger()
	repo := &countingRepo{MemoryRepository: NewMemoryRepository(sampleIngredient())}
	store := newCountingStore()
	store.failGet = true
	store.failSet = true
	r := NewResolver(repo, store, time.Minute)

	ing, res, err := r.Resolve(context.Background(), "001")
	require.NoError(t, err)
	require.NotNil(t, ing)
	assert.Equal(t, cache.Unavailable, res)
	assert.Equal(t, 1, store.sets)
	assert.Equal(t, 1, repo.reads)
}

func TestResolver_CorruptCacheEntry(t *testing.T) {
	common.InitNopLogger()
	repo := &countingRepo{MemoryRepository: NewMemoryRepository(sampleIngredient())}
	store := newCountingStore()
	store.data["ingredient:ing_001"] = []byte("not-json")
	r := NewResolver(repo, store, time.Minute)

	ing, res, err := r.Resolve(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, ing)
	assert.Equal(t, cache.Unavailable, res)
	assert.Equal(t, 1, repo.reads)
}

func TestResolver_NotFound(t *testing.T) {
	common.InitNopLogger()
	repo := &countingRepo{MemoryRepository: NewMemoryRepository()}
	store := newCountingStore()
	r := NewResolver(repo, store, time.Minute)

	ing, _, err := r.Resolve(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, ing)
	assert.Equal(t, 0, store.sets)
}

func TestResolver_StorageError(t *testing.T) {
	common.InitNopLogger()
	repo := &countingRepo{MemoryRepository: NewMemoryRepository(), err: errors.New("connection reset")}
	r := NewResolver(repo, nil, time.Minute)

	_, _, err := r.Resolve(context.Background(), "1")
	assert.ErrorContains(t, err, "connection reset")
}

func TestMemoryRepository_Paging(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for i := 1; i <= 5; i++ {
		inserted, err := repo.InsertIfMissing(ctx, Ingredient{ID: FromNumber(i), Name: "x"})
		require.NoError(t, err)
		assert.True(t, inserted)
	}
	inserted, err := repo.InsertIfMissing(ctx, Ingredient{ID: "ing_001"})
	require.NoError(t, err)
	assert.False(t, inserted)

	page, err := repo.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ing_002", page[0].ID)
	assert.Equal(t, "ing_003", page[1].ID)

	page, err = repo.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

package recipe

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository 行程內的食譜儲存，用於 memory:// 模式與測試
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	recipes map[int64]Recipe
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, recipes: make(map[int64]Recipe)}
}

func (r *MemoryRepository) Create(_ context.Context, rec *Recipe) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	stored := *rec
	stored.ID = id
	stored.Lines = append([]Line(nil), rec.Lines...)
	r.recipes[id] = stored
	return id, nil
}

func (r *MemoryRepository) InsertIfMissing(_ context.Context, rec *Recipe) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recipes[rec.ID]; ok {
		return false, nil
	}
	stored := *rec
	stored.Lines = append([]Line(nil), rec.Lines...)
	r.recipes[rec.ID] = stored
	if rec.ID >= r.nextID {
		r.nextID = rec.ID + 1
	}
	return true, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recipes[id]
	if !ok {
		return nil, nil
	}
	rec.Lines = append([]Line(nil), rec.Lines...)
	return &rec, nil
}

func (r *MemoryRepository) List(_ context.Context, limit, skip int) ([]Summary, error) {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.recipes))
	for id := range r.recipes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []Summary{}
	for i, id := range ids {
		if i < skip {
			continue
		}
		if len(out) == limit {
			break
		}
		rec := r.recipes[id]
		out = append(out, Summary{RecipeID: rec.ID, RecipeName: rec.Name, RecipeType: rec.Type, Cuisine: rec.Cuisine})
	}
	r.mu.RUnlock()
	return out, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipes), nil
}

package ingredient

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository 行程內的食材儲存，用於 memory:// 模式與測試
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Ingredient
}

func NewMemoryRepository(items ...Ingredient) *MemoryRepository {
	r := &MemoryRepository{items: make(map[string]Ingredient, len(items))}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Ingredient, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) List(ctx context.Context, limit, skip int) ([]Ingredient, error) {
	all, _ := r.ListAll(ctx)
	if skip >= len(all) {
		return []Ingredient{}, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func (r *MemoryRepository) InsertIfMissing(_ context.Context, ing Ingredient) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[ing.ID]; ok {
		return false, nil
	}
	r.items[ing.ID] = ing
	return true, nil
}

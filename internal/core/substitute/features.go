package substitute

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"recipe-nutrition/internal/core/ai/embedding"
	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/pkg/common"
	"recipe-nutrition/internal/pkg/metrics"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const rebuildKey = "rebuild"

// ErrFeatureUnavailable 特徵快照無法建立（沒有食材或向量模型失敗）
var ErrFeatureUnavailable = errors.New("ingredient features unavailable")

// IngredientSource 提供建立快照所需的全部食材
type IngredientSource interface {
	ListAll(ctx context.Context) ([]ingredient.Ingredient, error)
}

// Snapshot 某一時間點的特徵矩陣，發佈後不可修改。
// Ingredients[i]、Nutrition[i]、Names[i] 指向同一個食材。
type Snapshot struct {
	Version     uint64
	BuiltAt     time.Time
	Ingredients []ingredient.Ingredient
	Nutrition   [][]float64
	Names       [][]float64

	index map[string]int
}

// Row 依正規 ID 找出列號
func (s *Snapshot) Row(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Len 快照內的食材數
func (s *Snapshot) Len() int {
	return len(s.Ingredients)
}

// FeatureStore 持有目前發佈的特徵快照
type FeatureStore struct {
	source   IngredientSource
	embedder embedding.Embedder

	attempts int
	interval time.Duration

	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	group   singleflight.Group
}

// NewFeatureStore 創建特徵快照管理器；attempts 為重建次數上限
func NewFeatureStore(source IngredientSource, embedder embedding.Embedder, attempts int, interval time.Duration) *FeatureStore {
	if attempts <= 0 {
		attempts = 3
	}
	if interval < 0 {
		interval = 0
	}
	return &FeatureStore{
		source:   source,
		embedder: embedder,
		attempts: attempts,
		interval: interval,
	}
}

// Current 回傳目前的快照，尚未建立時為 nil
func (f *FeatureStore) Current() *Snapshot {
	return f.current.Load()
}

// Invalidate 丟棄目前快照，下一次查詢時重建
func (f *FeatureStore) Invalidate() {
	f.current.Store(nil)
	common.LogInfo("Feature snapshot invalidated")
}

// Build 從資料庫讀取所有食材並計算兩個正規化矩陣；不會發佈結果
func (f *FeatureStore) Build(ctx context.Context) (*Snapshot, error) {
	items, err := f.source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list ingredients: %v", ErrFeatureUnavailable, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no ingredients in storage", ErrFeatureUnavailable)
	}

	names := make([]string, len(items))
	nutrition := make([][]float64, len(items))
	index := make(map[string]int, len(items))
	for i, it := range items {
		names[i] = it.Name
		nutrition[i] = l2Normalize(it.Nutrition.FeatureVector())
		index[it.ID] = i
	}

	vectors, err := f.embedder.Embed(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("%w: embed names: %v", ErrFeatureUnavailable, err)
	}
	if len(vectors) != len(items) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d names", ErrFeatureUnavailable, len(vectors), len(items))
	}
	for i := range vectors {
		vectors[i] = l2Normalize(vectors[i])
	}

	return &Snapshot{
		BuiltAt:     time.Now(),
		Ingredients: items,
		Nutrition:   nutrition,
		Names:       vectors,
		index:       index,
	}, nil
}

// Rebuild 建立並發佈新快照；同時間的多個呼叫只會執行一次建立
func (f *FeatureStore) Rebuild(ctx context.Context) (*Snapshot, error) {
	v, err, _ := f.group.Do(rebuildKey, func() (interface{}, error) {
		start := time.Now()
		snap, err := f.Build(context.WithoutCancel(ctx))
		if err != nil {
			metrics.RecordFeatureRebuild(false, time.Since(start), 0)
			return nil, err
		}
		snap.Version = f.version.Add(1)
		f.current.Store(snap)
		metrics.RecordFeatureRebuild(true, time.Since(start), snap.Len())

		common.LogInfo("Feature snapshot published",
			zap.Uint64("version", snap.Version),
			zap.Int("ingredients", snap.Len()),
			zap.String("model", f.embedder.Model()),
			zap.Duration("took", time.Since(start)),
		)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Ensure 回傳目前快照；沒有快照時以有限次數重試重建
func (f *FeatureStore) Ensure(ctx context.Context) (*Snapshot, error) {
	if snap := f.Current(); snap != nil {
		return snap, nil
	}
	return f.rebuildWithRetry(ctx)
}

// Refresh 以最新資料重建快照，不加入資料變更前已開始的重建。
// 失敗時保留目前發佈的快照。
func (f *FeatureStore) Refresh(ctx context.Context) (*Snapshot, error) {
	f.group.Forget(rebuildKey)
	return f.rebuildWithRetry(ctx)
}

func (f *FeatureStore) rebuildWithRetry(ctx context.Context) (*Snapshot, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.interval
	b.MaxElapsedTime = 0

	var snap *Snapshot
	attempt := 0
	op := func() error {
		attempt++
		s, err := f.Rebuild(ctx)
		if err != nil {
			common.LogWarn("Feature snapshot build failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", f.attempts),
				zap.Error(err),
			)
			return err
		}
		snap = s
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.attempts-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		if errors.Is(err, ErrFeatureUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrFeatureUnavailable, err)
	}
	return snap, nil
}

// Warmup 啟動時盡力建立快照；失敗時改為查詢時再建立
func (f *FeatureStore) Warmup(ctx context.Context) {
	if _, err := f.Ensure(ctx); err != nil {
		common.LogWarn("Feature warmup failed, features will be loaded on demand", zap.Error(err))
	}
}

func l2Normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	out := make([]float64, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

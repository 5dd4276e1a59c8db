package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-nutrition/internal/pkg/common"
)

// LookupResult 快取查詢結果。Unavailable 與 Miss 的處理方式相同，
// 只是為了可觀測性而區分。
type LookupResult int

const (
	Miss LookupResult = iota
	Hit
	Unavailable
)

func (r LookupResult) String() string {
	switch r {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// DefaultTTL 快取條目的固定存活時間
const DefaultTTL = time.Hour

// ErrDisabled 快取未啟用
var ErrDisabled = errors.New("cache is disabled")

// Store 鍵值快取介面，所有失敗都只是建議性的
type Store interface {
	Get(ctx context.Context, key string) ([]byte, LookupResult)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// IngredientKey 食材快取鍵，id 必須是正規格式
func IngredientKey(canonicalID string) string {
	return "ingredient:" + canonicalID
}

// RecipeKey 食譜快取鍵
func RecipeKey(recipeID int64) string {
	return fmt.Sprintf("recipe:%d", recipeID)
}

// GetJSON 讀取並反序列化；資料損壞視為 Unavailable
func GetJSON(ctx context.Context, s Store, key string, v interface{}) LookupResult {
	data, res := s.Get(ctx, key)
	if res != Hit {
		return res
	}
	if err := common.ParseJSONBytes(data, v); err != nil {
		return Unavailable
	}
	return Hit
}

// SetJSON 序列化後寫入
func SetJSON(ctx context.Context, s Store, key string, v interface{}, ttl time.Duration) error {
	data, err := common.ToJSONBytes(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.Set(ctx, key, data, ttl)
}

// NopStore 快取關閉時使用，永遠未命中
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, LookupResult) { return nil, Miss }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) Delete(context.Context, string) error { return nil }
func (NopStore) Ping(context.Context) error { return ErrDisabled }
func (NopStore) Close() error { return nil }

package ingredient

import "context"

// Repository 食材資料存取介面；ID 參數一律為正規格式
type Repository interface {
	// GetByID 查無資料時回傳 (nil, nil)
	GetByID(ctx context.Context, id string) (*Ingredient, error)

	// ListAll 依 ID 排序回傳全部食材
	ListAll(ctx context.Context) ([]Ingredient, error)

	// List 分頁列出食材
	List(ctx context.Context, limit, skip int) ([]Ingredient, error)

	Count(ctx context.Context) (int, error)

	// InsertIfMissing 不存在時新增，已存在則略過；回傳是否新增
	InsertIfMissing(ctx context.Context, ing Ingredient) (bool, error)
}

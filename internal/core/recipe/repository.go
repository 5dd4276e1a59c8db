package recipe

import "context"

// Repository 食譜儲存
type Repository interface {
	// Create 以單一交易寫入食譜與所有食材項目，回傳新的 ID
	Create(ctx context.Context, r *Recipe) (int64, error)

	// GetByID 查無資料時回傳 nil, nil
	GetByID(ctx context.Context, id int64) (*Recipe, error)

	List(ctx context.Context, limit, skip int) ([]Summary, error)
	Count(ctx context.Context) (int, error)

	// InsertIfMissing 以指定 ID 寫入（資料匯入用），已存在時不覆寫
	InsertIfMissing(ctx context.Context, r *Recipe) (bool, error)
}

package embedding

import (
	"context"
	"errors"
)

// ErrEmptyResponse 模型回傳的向量數量與輸入不符
var ErrEmptyResponse = errors.New("embedding provider returned an incomplete response")

// Embedder 定義名稱向量模型介面
type Embedder interface {
	// Embed 依輸入順序回傳每個文字的向量
	Embed(ctx context.Context, texts []string) ([][]float64, error)

	// Model 獲取當前使用的模型名稱
	Model() string
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

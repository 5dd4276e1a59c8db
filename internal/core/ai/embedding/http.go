package embedding

import (
	"context"
	"fmt"
	"net/http"

	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// HTTPEmbedder 呼叫 OpenAI 相容的 /embeddings 端點（自架模型服務）
type HTTPEmbedder struct {
	client *resty.Client
	model  string
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewHTTPEmbedder 創建 HTTP 向量客戶端
func NewHTTPEmbedder(cfg config.EmbeddingConfig) *HTTPEmbedder {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))
	}

	return &HTTPEmbedder{client: client, model: cfg.Model}
}

func (e *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Model: e.model, Input: texts}).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("Embedding API error",
			zap.Int("status", resp.StatusCode()),
			zap.String("model", e.model),
		)
		return nil, fmt.Errorf("embedding API returned status %d", resp.StatusCode())
	}

	var result embeddingResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if len(result.Data) != len(texts) {
		return nil, ErrEmptyResponse
	}

	out := make([][]float64, len(texts))
	for i, d := range result.Data {
		idx := d.Index
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		out[idx] = d.Embedding
	}
	return out, nil
}

func (e *HTTPEmbedder) Model() string {
	return e.model
}

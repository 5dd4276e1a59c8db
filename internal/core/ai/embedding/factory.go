package embedding

import (
	"fmt"

	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	"go.uber.org/zap"
)

// New 依設定建立向量模型；遠端模型一律加上斷路器
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	var remote Embedder

	switch cfg.Provider {
	case config.EmbeddingProviderHashing, "":
		e := NewHashingEmbedder(cfg.Dimensions)
		common.LogInfo("Using local hashing embedder", zap.Int("dimensions", e.dims))
		return e, nil
	case config.EmbeddingProviderOpenAI:
		e, err := NewOpenAIEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		remote = e
	case config.EmbeddingProviderHTTP:
		remote = NewHTTPEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	common.LogInfo("Using remote embedder",
		zap.String("provider", cfg.Provider),
		zap.String("model", remote.Model()),
	)
	return NewBreakerEmbedder(remote, cfg.BreakerFailures, cfg.BreakerTimeout), nil
}

package embedding

import (
	"context"
	"time"

	"recipe-nutrition/internal/pkg/common"
	"recipe-nutrition/internal/pkg/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerEmbedder 以斷路器包裝外部向量服務，連續失敗後快速失敗
type BreakerEmbedder struct {
	next Embedder
	cb   *gobreaker.CircuitBreaker[[][]float64]
}

// NewBreakerEmbedder 連續失敗 failures 次後開路，timeout 後進入半開
func NewBreakerEmbedder(next Embedder, failures uint32, timeout time.Duration) *BreakerEmbedder {
	if failures == 0 {
		failures = 3
	}
	settings := gobreaker.Settings{
		Name:        "embedding:" + next.Model(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.EmbeddingBreakerState.Set(float64(to))
			common.LogWarn("Embedding circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerEmbedder{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[[][]float64](settings),
	}
}

func (e *BreakerEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	return e.cb.Execute(func() ([][]float64, error) {
		return e.next.Embed(ctx, texts)
	})
}

func (e *BreakerEmbedder) Model() string {
	return e.next.Model()
}

// State 斷路器目前狀態
func (e *BreakerEmbedder) State() string {
	return e.cb.State().String()
}

package embedding

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(128)
	ctx := context.Background()

	a, err := e.Embed(ctx, []string{"Brown Rice", "brown rice"})
	require.NoError(t, err)
	require.Len(t, a, 2)
	assert.Len(t, a[0], 128)
	assert.Equal(t, a[0], a[1])

	b, err := e.Embed(ctx, []string{"Brown Rice"})
	require.NoError(t, err)
	assert.Equal(t, a[0], b[0])
}

func TestHashingEmbedder_SimilarNamesCloser(t *testing.T) {
	e := NewHashingEmbedder(384)
	vecs, err := e.Embed(context.Background(), []string{"brown rice", "white rice", "olive oil"})
	require.NoError(t, err)

	assert.Greater(t, cosine(vecs[0], vecs[1]), cosine(vecs[0], vecs[2]))
}

func TestHashingEmbedder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHashingEmbedder(8).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPEmbedder(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		// 故意以相反順序回傳，驗證依 index 排序
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL, APIKey: "k", Model: "m", Timeout: time.Second})
	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, vecs)
	assert.Equal(t, "Bearer k", gotAuth)
	assert.JSONEq(t, `{"model":"m","input":["a","b"]}`, gotBody)
}

func TestHTTPEmbedder_ErrorStatus(t *testing.T) {
	common.InitNopLogger()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL, Model: "m", Timeout: time.Second})
	_, err := e.Embed(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "502")
}

func TestHTTPEmbedder_ShortResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(config.EmbeddingConfig{BaseURL: srv.URL, Model: "m", Timeout: time.Second})
	_, err := e.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(config.EmbeddingConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	require.NoError(t, err)
	vecs, err := e.Embed(context.Background(), []string{"rice"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, 0.25}}, vecs)
	assert.Equal(t, "m", e.Model())
}

func TestOpenAIEmbedder_RequiresKey(t *testing.T) {
	_, err := NewOpenAIEmbedder(config.EmbeddingConfig{})
	assert.Error(t, err)
}

type failingEmbedder struct{ calls int }

func (f *failingEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	f.calls++
	return nil, errors.New("upstream down")
}

func (f *failingEmbedder) Model() string { return "failing" }

func TestBreakerEmbedder_OpensAfterFailures(t *testing.T) {
	common.InitNopLogger()
	inner := &failingEmbedder{}
	e := NewBreakerEmbedder(inner, 2, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := e.Embed(context.Background(), []string{"x"})
		assert.ErrorContains(t, err, "upstream down")
	}
	_, err := e.Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "open", e.State())
}

func TestNew(t *testing.T) {
	common.InitNopLogger()

	e, err := New(config.EmbeddingConfig{Provider: config.EmbeddingProviderHashing, Dimensions: 16})
	require.NoError(t, err)
	assert.IsType(t, &HashingEmbedder{}, e)

	e, err = New(config.EmbeddingConfig{Provider: config.EmbeddingProviderHTTP, BaseURL: "http://localhost", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &BreakerEmbedder{}, e)

	_, err = New(config.EmbeddingConfig{Provider: "bogus"})
	assert.Error(t, err)
}

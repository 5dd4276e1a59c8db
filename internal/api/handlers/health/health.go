package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-nutrition/internal/core/cache"
	"recipe-nutrition/internal/core/substitute"
	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Counter 提供資料筆數
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// redisInfo 只有 Redis 後端提供伺服器資訊
type redisInfo interface {
	Info(ctx context.Context) (map[string]string, error)
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status           string                 `json:"status"`
	Timestamp        time.Time              `json:"timestamp"`
	Version          string                 `json:"version"`
	IngredientsCount int                    `json:"ingredients_count"`
	RecipesCount     int                    `json:"recipes_count"`
	RedisConnected   bool                   `json:"redis_connected"`
	FeaturesLoaded   bool                   `json:"features_loaded"`
	FeaturesVersion  uint64                 `json:"features_version,omitempty"`
	Runtime          map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg         *config.Config
	ingredients Counter
	recipes     Counter
	cache       cache.Store
	features    *substitute.FeatureStore
}

func NewHandler(cfg *config.Config, ingredients, recipes Counter, store cache.Store, features *substitute.FeatureStore) *Handler {
	return &Handler{
		cfg:         cfg,
		ingredients: ingredients,
		recipes:     recipes,
		cache:       store,
		features:    features,
	}
}

// Root 服務名稱與版本
func (h *Handler) Root(c *gin.Context) {
	// 名稱含 &，不做 HTML 跳脫
	c.PureJSON(http.StatusOK, gin.H{
		"message": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// HealthCheck 健康檢查，包含資料筆數與快取狀態
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	ingredients, err := h.ingredients.Count(ctx)
	if err != nil {
		common.LogError("Health check failed to count ingredients", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
		return
	}
	recipes, err := h.recipes.Count(ctx)
	if err != nil {
		common.LogError("Health check failed to count recipes", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:           "healthy",
		Timestamp:        time.Now(),
		Version:          h.cfg.App.Version,
		IngredientsCount: ingredients,
		RecipesCount:     recipes,
		RedisConnected:   h.cache.Ping(ctx) == nil,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":  m.Alloc,
				"sys":    m.Sys,
				"num_gc": m.NumGC,
			},
		},
	}
	if snap := h.features.Current(); snap != nil {
		resp.FeaturesLoaded = true
		resp.FeaturesVersion = snap.Version
	}

	c.JSON(http.StatusOK, resp)
}

// RedisStatus 快取連線狀態
func (h *Handler) RedisStatus(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.cache.Ping(ctx); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"connected": false,
			"status":    "Redis connection failed",
			"error":     err.Error(),
		})
		return
	}

	ri, ok := h.cache.(redisInfo)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"connected": true,
			"status":    "Cache is connected (limited info available)",
		})
		return
	}
	info, err := ri.Info(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"connected": true,
			"status":    "Redis is connected (limited info available)",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":         true,
		"status":            "Redis is connected and responsive",
		"redis_version":     valueOr(info, "redis_version"),
		"used_memory":       valueOr(info, "used_memory_human"),
		"connected_clients": valueOr(info, "connected_clients"),
	})
}

// ReadinessCheck 就緒檢查：資料庫可用即就緒，特徵快照可稍後建立
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if _, err := h.ingredients.Count(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "ready",
		"features_loaded": h.features.Current() != nil,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func valueOr(info map[string]string, key string) string {
	if v, ok := info[key]; ok {
		return v
	}
	return "unknown"
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-nutrition/internal/api"
	"recipe-nutrition/internal/app"
	"recipe-nutrition/internal/core/ai/embedding"
	"recipe-nutrition/internal/core/cache"
	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/core/recipe"
	"recipe-nutrition/internal/core/substitute"
	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("env", cfg.App.Env),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	// 初始化資料庫
	storage, err := app.OpenStorage(startCtx, cfg.Database)
	if err != nil {
		common.LogFatal("Failed to connect to database", zap.Error(err))
	}
	defer storage.Close()

	// 啟動時匯入 CSV（memory:// 模式下必要）
	if cfg.Database.SeedDir != "" {
		if _, err := app.SeedDir(startCtx, storage, cfg.Database.SeedDir); err != nil {
			common.LogFatal("Failed to seed data", zap.String("dir", cfg.Database.SeedDir), zap.Error(err))
		}
	}

	// 初始化快取
	store, err := cache.New(startCtx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	defer store.Close()

	// 初始化向量模型
	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		common.LogFatal("Failed to initialize embedder", zap.Error(err))
	}

	resolver := ingredient.NewResolver(storage.Ingredients, store, cfg.Cache.TTL)
	features := substitute.NewFeatureStore(storage.Ingredients, embedder, cfg.Features.WarmupAttempts, cfg.Features.RetryInterval)
	recipes := recipe.NewService(storage.Recipes, resolver, store, cfg.Cache.TTL)
	substitutes := substitute.NewService(resolver, features)

	// 預先建立特徵快照，失敗時改為查詢時建立
	features.Warmup(startCtx)

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Ingredients: storage.Ingredients,
		Recipes:     recipes,
		Substitutes: substitutes,
		Cache:       store,
	})
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}

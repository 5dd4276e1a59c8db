package api

import (
	"fmt"
	"time"

	"recipe-nutrition/internal/api/handlers/health"
	recipeHandler "recipe-nutrition/internal/api/handlers/recipe"
	"recipe-nutrition/internal/api/middleware"
	"recipe-nutrition/internal/core/cache"
	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/core/recipe"
	"recipe-nutrition/internal/core/substitute"
	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// 各路由每分鐘請求上限（以 IP 計）
const (
	createRecipeLimit = 10
	getRecipeLimit    = 30
	substitutesLimit  = 20
	listLimit         = 50
	rateWindow        = time.Minute
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Ingredients ingredient.Repository
	Recipes     *recipe.Service
	Substitutes *substitute.Service
	Cache       cache.Store
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Ingredients == nil || deps.Recipes == nil || deps.Substitutes == nil {
		return nil, fmt.Errorf("router dependencies are incomplete")
	}
	if deps.Cache == nil {
		deps.Cache = cache.NopStore{}
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}))

	if cfg.Server.MaxBodyBytes > 0 {
		router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	}
	if cfg.Server.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	limit := func(requests int) gin.HandlerFunc {
		if !cfg.RateLimit.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(middleware.NewRateLimiter(requests, rateWindow))
	}

	healthHandler := health.NewHandler(cfg, deps.Ingredients, deps.Recipes, deps.Cache, deps.Substitutes.Features())
	recipes := recipeHandler.NewHandler(deps.Recipes, cfg.App.Debug)
	ingredients := recipeHandler.NewIngredientHandler(deps.Ingredients, deps.Substitutes, cfg.App.Debug)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	// 健康檢查路由
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/redis/status", healthHandler.RedisStatus)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	recipeGroup := router.Group("/recipes")
	{
		recipeGroup.POST("/", limit(createRecipeLimit), middleware.Deduplication(dedup), recipes.HandleCreateRecipe)
		recipeGroup.GET("/", limit(listLimit), recipes.HandleListRecipes)
		recipeGroup.GET("/:id/", limit(getRecipeLimit), recipes.HandleGetRecipe)
	}

	ingredientGroup := router.Group("/ingredients")
	{
		ingredientGroup.GET("/", limit(listLimit), ingredients.HandleListIngredients)
		ingredientGroup.GET("/:id/substitutes/", limit(substitutesLimit), ingredients.HandleSubstitutes)
	}

	router.POST("/admin/features/reload", ingredients.HandleReloadFeatures)

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}

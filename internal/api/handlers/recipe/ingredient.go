package recipe

import (
	"net/http"

	"recipe-nutrition/internal/core/ingredient"
	"recipe-nutrition/internal/core/substitute"
	"recipe-nutrition/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultIngredientLimit 食材列表預設筆數
const DefaultIngredientLimit = 50

// IngredientHandler 食材與替代品處理程序
type IngredientHandler struct {
	repo        ingredient.Repository
	substitutes *substitute.Service
	debug       bool
}

// NewIngredientHandler 創建食材處理程序
func NewIngredientHandler(repo ingredient.Repository, substitutes *substitute.Service, debug bool) *IngredientHandler {
	return &IngredientHandler{repo: repo, substitutes: substitutes, debug: debug}
}

// HandleListIngredients 分頁列出食材，ID 以純數字呈現
func (h *IngredientHandler) HandleListIngredients(c *gin.Context) {
	limit, err := queryInt(c, "limit", DefaultIngredientLimit)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	items, err := h.repo.List(c.Request.Context(), limit, skip)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	out := make([]ingredient.Ingredient, len(items))
	for i, it := range items {
		it.ID = ingredient.Display(it.ID)
		out[i] = it
	}
	c.JSON(http.StatusOK, out)
}

// HandleSubstitutes 查詢替代食材
func (h *IngredientHandler) HandleSubstitutes(c *gin.Context) {
	limit, err := queryInt(c, "limit", substitute.DefaultLimit)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	id := c.Param("id")
	subs, err := h.substitutes.Substitutes(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	common.LogDebug("替代食材查詢完成",
		zap.String("ingredient_id", id),
		zap.Int("count", len(subs)),
		zap.String("request_id", requestid.Get(c)),
	)
	c.JSON(http.StatusOK, subs)
}

// HandleReloadFeatures 重建特徵快照（食材資料更新後呼叫）
func (h *IngredientHandler) HandleReloadFeatures(c *gin.Context) {
	snap, err := h.substitutes.Reload(c.Request.Context())
	if err != nil {
		common.LogWarn("Feature reload failed", zap.Error(err))
		respondError(c, common.NewError(common.ErrCodeServiceUnavailable, "Ingredient features unavailable",
			http.StatusServiceUnavailable, err), h.debug)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"version":     snap.Version,
		"ingredients": snap.Len(),
		"built_at":    snap.BuiltAt,
	})
}

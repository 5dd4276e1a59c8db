package recipe

import (
	"errors"
	"net/http"
	"strconv"

	recipeService "recipe-nutrition/internal/core/recipe"
	"recipe-nutrition/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜處理程序
type Handler struct {
	recipes *recipeService.Service
	debug   bool
}

// NewHandler 創建新的食譜處理程序
func NewHandler(recipes *recipeService.Service, debug bool) *Handler {
	return &Handler{recipes: recipes, debug: debug}
}

// HandleCreateRecipe 建立食譜並回傳成本與營養
func (h *Handler) HandleCreateRecipe(c *gin.Context) {
	var req recipeService.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		respondError(c, bindingError(err), h.debug)
		return
	}

	resp, err := h.recipes.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleGetRecipe 取得單一食譜
func (h *Handler) HandleGetRecipe(c *gin.Context) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			// 超出範圍的整數不可能是已存在的食譜
			respondError(c, common.NewNotFoundError("recipe", raw), h.debug)
			return
		}
		respondError(c, common.NewValidationError("recipe_id", "recipe_id must be an integer"), h.debug)
		return
	}

	resp, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleListRecipes 分頁列出食譜
func (h *Handler) HandleListRecipes(c *gin.Context) {
	limit, err := queryInt(c, "limit", recipeService.DefaultListLimit)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	list, err := h.recipes.List(c.Request.Context(), limit, skip)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, list)
}

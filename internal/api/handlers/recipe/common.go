package recipe

import (
	"errors"
	"strconv"
	"strings"

	"recipe-nutrition/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// respondError 依錯誤類型回傳 422 / 404 / 500
func respondError(c *gin.Context, err error, debug bool) {
	status, body := common.ToResponse(err, debug)
	if status >= 500 {
		common.LogError("請求處理失敗",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// bindingError 將 gin 綁定錯誤轉為欄位驗證錯誤
func bindingError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		field := jsonFieldName(fe.Namespace())
		switch fe.Tag() {
		case "required":
			return common.NewValidationError(field, "Field required")
		default:
			return common.NewValidationError(field, "Invalid value for "+field)
		}
	}
	return common.NewValidationError("body", "Invalid request body: "+err.Error())
}

var jsonFields = map[string]string{
	"RecipeName":      "recipe_name",
	"Ingredients":     "ingredients",
	"IngredientID":    "ingredient_id",
	"QuantityInGrams": "quantity_in_grams",
}

// jsonFieldName 從 CreateRequest.Ingredients[0].QuantityInGrams 取出最後一段的 JSON 名稱
func jsonFieldName(namespace string) string {
	name := namespace
	if i := strings.LastIndex(namespace, "."); i >= 0 {
		name = namespace[i+1:]
	}
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	if f, ok := jsonFields[name]; ok {
		return f
	}
	return name
}

// queryInt 讀取非負整數查詢參數，未提供時使用預設值
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewValidationError(name, name+" must be an integer")
	}
	if v < 0 {
		return 0, common.NewValidationError(name, name+" must be non-negative")
	}
	return v, nil
}

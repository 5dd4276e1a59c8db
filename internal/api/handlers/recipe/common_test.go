package recipe

import (
	"errors"
	"net/http/httptest"
	"testing"

	"recipe-nutrition/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldName(t *testing.T) {
	assert.Equal(t, "recipe_name", jsonFieldName("CreateRequest.RecipeName"))
	assert.Equal(t, "ingredients", jsonFieldName("CreateRequest.Ingredients"))
	assert.Equal(t, "quantity_in_grams", jsonFieldName("CreateRequest.Ingredients[0].QuantityInGrams"))
	assert.Equal(t, "ingredient_id", jsonFieldName("CreateRequest.Ingredients[3].IngredientID"))
	assert.Equal(t, "Other", jsonFieldName("Other"))
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctxFor := func(query string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/recipes/"+query, nil)
		return c
	}

	v, err := queryInt(ctxFor(""), "limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	v, err = queryInt(ctxFor("?limit=5"), "limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = queryInt(ctxFor("?limit=abc"), "limit", 20)
	assert.True(t, common.IsValidationError(err))

	_, err = queryInt(ctxFor("?skip=-1"), "skip", 0)
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "skip", ve.Field)
}

func TestBindingError_NonValidator(t *testing.T) {
	err := bindingError(errors.New("unexpected EOF"))
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "body", ve.Field)
	assert.Contains(t, ve.Message, "unexpected EOF")
}

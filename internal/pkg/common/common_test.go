package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 5.0, RoundTo(4.999999, 2))
	assert.Equal(t, 1.23, RoundTo(1.234, 2))
	assert.Equal(t, 1.24, RoundTo(1.235000001, 2))
	assert.Equal(t, 0.0, RoundTo(0, 2))
}

func TestToResponse(t *testing.T) {
	status, resp := ToResponse(NewValidationError("recipe_name", "must not be empty"), false)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, ErrCodeValidation, resp.Code)
	assert.Equal(t, "recipe_name", resp.Field)

	wrapped := fmt.Errorf("aggregate: %w", NewNotFoundError("ingredient", "ing_999"))
	status, resp = ToResponse(wrapped, false)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Ingredient ing_999 not found", resp.Message)

	status, resp = ToResponse(errors.New("boom"), false)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Empty(t, resp.Details)

	_, resp = ToResponse(errors.New("boom"), true)
	assert.Equal(t, "boom", resp.Details)

	status, _ = ToResponse(NewError(ErrCodeServiceUnavailable, "down", http.StatusServiceUnavailable, nil), false)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsValidationError(fmt.Errorf("x: %w", NewValidationError("f", "bad"))))
	assert.False(t, IsValidationError(errors.New("x")))
	assert.True(t, IsNotFoundError(NewNotFoundError("recipe", "7")))
	assert.Equal(t, "Recipe 7 not found", NewNotFoundError("recipe", "7").Error())
}

func TestParseJSONBytes(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSONBytes([]byte(`{"a":1,"b":2}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSONBytes([]byte(`{"a":1}{"a":2}`), &v))
	assert.Error(t, ParseJSONBytes([]byte(`{"a":`), &v))
}

func TestToResponse_InternalErrorMessage(t *testing.T) {
	status, resp := ToResponse(errors.New("pool closed"), false)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrCodeInternalError, resp.Code)
	assert.Equal(t, ErrInternalError.Message, resp.Message)
}

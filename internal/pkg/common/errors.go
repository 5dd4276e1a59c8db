package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Field   string `json:"field,omitempty"`   // 驗證失敗的欄位
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示輸入格式錯誤，在存取資料庫之前就被拒絕
type ValidationError struct {
	Field   string
	Message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError 表示引用的食材或食譜不存在
type NotFoundError struct {
	Kind string
	ID   string
}

// Error 實現 error 介面
func (e *NotFoundError) Error() string {
	switch e.Kind {
	case "ingredient":
		return fmt.Sprintf("Ingredient %s not found", e.ID)
	case "recipe":
		return fmt.Sprintf("Recipe %s not found", e.ID)
	default:
		return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
	}
}

// NewNotFoundError 創建新的不存在錯誤
func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFoundError 檢查是否為不存在錯誤
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeValidation      = "VALIDATION_ERROR"  // 422
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// ErrInternalError 未分類錯誤對外顯示的內容
var ErrInternalError = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)

// ToResponse 將錯誤轉換為 HTTP 狀態碼與響應內容
func ToResponse(err error, debug bool) (int, ErrorResponse) {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *CustomError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Code:    ErrCodeValidation,
			Message: ve.Message,
			Field:   ve.Field,
		}
	case errors.As(err, &nf):
		return http.StatusNotFound, ErrorResponse{
			Code:    ErrCodeNotFound,
			Message: nf.Error(),
		}
	case errors.As(err, &ce):
		resp := ErrorResponse{Code: ce.Code, Message: ce.Message}
		if debug && ce.Err != nil {
			resp.Details = ce.Err.Error()
		}
		return ce.Status, resp
	default:
		resp := ErrorResponse{Code: ErrCodeInternalError, Message: ErrInternalError.Message}
		if debug && err != nil {
			resp.Details = err.Error()
		}
		return http.StatusInternalServerError, resp
	}
}

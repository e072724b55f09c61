package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
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

// Unwrap 讓 errors.Is / errors.As 可以看到原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithErr 複製預定義錯誤並附上原始錯誤
func (e *CustomError) WithErr(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// WithMessage 複製預定義錯誤並替換訊息
func (e *CustomError) WithMessage(message string) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
		Err:     e.Err,
	}
}

// Response 轉換為 API 錯誤響應，debug 時附上原始錯誤
func (e *CustomError) Response(debug bool) ErrorResponse {
	resp := ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
	}
	if debug && e.Err != nil {
		resp.Details = e.Err.Error()
	}
	return resp
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

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeConflict         = "CONFLICT"           // 409
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429
	ErrCodeRequestTimeout   = "REQUEST_TIMEOUT"    // 408
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504

	// 業務錯誤
	ErrCodeInsufficientIngredients = "INSUFFICIENT_INGREDIENTS"
	ErrCodeStepIncomplete          = "STEP_INCOMPLETE"
	ErrCodeInvalidTransition       = "INVALID_TRANSITION"
	ErrCodeNoPlan                  = "NO_PLAN"
	ErrCodeGenerationFailed        = "GENERATION_FAILED"
	ErrCodeSwapFailed              = "SWAP_FAILED"
	ErrCodeSwapInFlight            = "SWAP_IN_FLIGHT"
	ErrCodeGenerationInFlight      = "GENERATION_IN_FLIGHT"
	ErrCodeValidation              = "VALIDATION_FAILED"
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "Invalid request", http.StatusBadRequest, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "Resource not found", http.StatusNotFound, nil)
	ErrConflict         = NewError(ErrCodeConflict, "Resource conflict", http.StatusConflict, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrRequestTimeout   = NewError(ErrCodeRequestTimeout, "Request timeout", http.StatusRequestTimeout, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "Service temporarily unavailable", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "Gateway timeout", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrSessionNotFound         = NewError(ErrCodeNotFound, "Session not found or expired", http.StatusNotFound, nil)
	ErrInsufficientIngredients = NewError(ErrCodeInsufficientIngredients, "Add 5 ingredients to optimize!", http.StatusUnprocessableEntity, nil)
	ErrStepIncomplete          = NewError(ErrCodeStepIncomplete, "Complete this step before moving on", http.StatusConflict, nil)
	ErrInvalidTransition       = NewError(ErrCodeInvalidTransition, "This action is not available at the current step", http.StatusConflict, nil)
	ErrNoPlan                  = NewError(ErrCodeNoPlan, "No plan has been generated yet", http.StatusConflict, nil)
	ErrGenerationFailed        = NewError(ErrCodeGenerationFailed, "Planner error. Please try again.", http.StatusBadGateway, nil)
	ErrSwapFailed              = NewError(ErrCodeSwapFailed, "Swap failed. Budget limits might be too tight.", http.StatusBadGateway, nil)
	ErrZeroPrepFailed          = NewError(ErrCodeSwapFailed, "No zero-prep staples found in your pantry.", http.StatusBadGateway, nil)
	ErrSwapInFlight            = NewError(ErrCodeSwapInFlight, "A swap for this meal is already in progress", http.StatusConflict, nil)
	ErrAIServiceError          = NewError("AI_SERVICE_ERROR", "AI service error", http.StatusServiceUnavailable, nil)
	ErrSessionStoreFull        = NewError("SESSION_STORE_FULL", "Too many active sessions", http.StatusServiceUnavailable, nil)
	ErrGenerationInFlight      = NewError(ErrCodeGenerationInFlight, "A plan is already being generated", http.StatusConflict, nil)
	ErrValidation              = NewError(ErrCodeValidation, "Invalid preferences", http.StatusBadRequest, nil)
	ErrMealNotFound            = NewError(ErrCodeNotFound, "Meal not found for the active day", http.StatusNotFound, nil)
)

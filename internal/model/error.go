// internal/model/error.go
package model

import "errors"

// アプリケーション固有のエラー
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternalServer  = errors.New("internal server error")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("resource conflict")        // 進行中の受験が既に存在する等
	ErrLimitExceeded   = errors.New("attempt limit exceeded")   // 最大受験回数に到達
	ErrInvalidState    = errors.New("invalid state transition") // 提出済みの再提出など
	ErrInvalidQuestion = errors.New("invalid question")         // 採点時に見つかった不正な設問データ
)

// AppError はエラーコードとユーザー向けメッセージを持つアプリケーションエラーです。
// Err には上記のセンチネルエラーを入れ、errors.Is で判定できるようにします。
type AppError struct {
	Code    string
	Message string
	Field   string
	Err     error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Detail はレスポンス用のエラー詳細を返します
func (e *AppError) Detail() ErrorDetail {
	return ErrorDetail{
		Code:    e.Code,
		Message: e.Message,
		Field:   e.Field,
	}
}

// ErrorDetail はAPIエラーレスポンスの error フィールド
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIResponse は全エンドポイント共通のレスポンスエンベロープです。
type APIResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// internal/webutil/response.go
package webutil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go_4_learn_progress/internal/model"

	"github.com/go-playground/validator/v10"
)

// HandleError はエラーを解釈し、共通エンベロープのエラーレスポンスを返します。
// AppError 以外の予期しないエラーは詳細をログに出し、クライアントには汎用メッセージのみ返します。
func HandleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := MapErrorToStatusCode(err)

	var appErr *model.AppError
	var detail model.ErrorDetail
	if errors.As(err, &appErr) {
		detail = appErr.Detail()
		if statusCode >= http.StatusInternalServerError {
			logger.Error("Internal error", "error", err, "code", appErr.Code)
		}
	} else {
		logger.Error("Unhandled error", "error", err)
		detail = model.ErrorDetail{
			Code:    "INTERNAL_SERVER_ERROR",
			Message: "サーバー内部でエラーが発生しました。",
		}
	}

	RespondWithJSON(w, statusCode, model.APIResponse{
		Success: false,
		Message: detail.Message,
		Error:   &detail,
	})
}

// MapErrorToStatusCode はアプリケーションエラーをHTTPステータスコードにマッピングします
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, model.ErrLimitExceeded), errors.Is(err, model.ErrInvalidQuestion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithSuccess は success=true のエンベロープで data を返します
func RespondWithSuccess(w http.ResponseWriter, code int, data any, message string) {
	RespondWithJSON(w, code, model.APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// RespondWithJSON はJSONレスポンスを返します
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Error marshaling JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"レスポンス生成中にエラーが発生しました。","error":{"code":"INTERNAL_SERVER_ERROR","message":"レスポンス生成中にエラーが発生しました。"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// NewValidationErrorResponse はバリデーションエラーを日本語メッセージの AppError にまとめます
func NewValidationErrorResponse(errs validator.ValidationErrors) *model.AppError {
	fields := make([]string, 0, len(errs))
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field())
		messages = append(messages, fe.Translate(Trans))
	}
	return model.NewAppError(
		"VALIDATION_ERROR",
		strings.Join(messages, " "),
		strings.Join(fields, ","),
		model.ErrInvalidInput,
	)
}

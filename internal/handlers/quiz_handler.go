// internal/handlers/quiz_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/service"
	"go_4_learn_progress/internal/webutil"
)

type QuizHandler struct {
	service service.QuizService
}

func NewQuizHandler(s service.QuizService) *QuizHandler {
	return &QuizHandler{service: s}
}

// StartAttempt は受験を開始します
// POST /quizzes/{quizId}/attempts  body: {"enrollment_id": "..."}
func (h *QuizHandler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "StartAttempt"))

	quizID, err := webutil.URLParamUUID(r, "quizId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.StartAttemptRequest
	if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
		logger.Warn("Invalid start attempt request", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	attempt, err := h.service.StartAttempt(r.Context(), quizID, req.EnrollmentID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusCreated, attempt, "受験を開始しました。")
}

// ListAttempts は受験履歴を返します
// GET /quizzes/{quizId}/attempts?enrollment_id=...
func (h *QuizHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "ListAttempts"))

	quizID, err := webutil.URLParamUUID(r, "quizId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	enrollmentID, err := webutil.QueryUUID(r, "enrollment_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if enrollmentID == nil {
		webutil.HandleError(w, logger, model.NewAppError("VALIDATION_ERROR", "受講登録IDは必須項目です。", "enrollment_id", model.ErrInvalidInput))
		return
	}

	attempts, err := h.service.ListAttempts(r.Context(), quizID, *enrollmentID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusOK, attempts, "")
}

// SubmitAttempt は回答を提出して採点結果を返します
// POST /attempts/{attemptId}/submit  body: {"answers": [...]}
func (h *QuizHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "SubmitAttempt"))

	attemptID, err := webutil.URLParamUUID(r, "attemptId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.SubmitAttemptRequest
	if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
		logger.Warn("Invalid submit request", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	result, err := h.service.SubmitAttempt(r.Context(), attemptID, req.Answers)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusOK, result, "提出しました。")
}

// GetAttempt は受験の状態 (進行中ならスナップショット、提出済みなら結果) を返します
// GET /attempts/{attemptId}
func (h *QuizHandler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "GetAttempt"))

	attemptID, err := webutil.URLParamUUID(r, "attemptId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	detail, err := h.service.GetAttempt(r.Context(), attemptID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusOK, detail, "")
}

// internal/handlers/progress_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/service"
	"go_4_learn_progress/internal/webutil"
)

type ProgressHandler struct {
	service service.ProgressService
}

func NewProgressHandler(s service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: s}
}

// GetCourseProgress はコース全体とモジュールごとの進捗率を返します
// GET /progress/{enrollmentId}/{courseId}
func (h *ProgressHandler) GetCourseProgress(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "GetCourseProgress"))

	enrollmentID, err := webutil.URLParamUUID(r, "enrollmentId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	courseID, err := webutil.URLParamUUID(r, "courseId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	progress, err := h.service.GetCourseProgress(r.Context(), enrollmentID, courseID)
	if err != nil {
		logger.Warn("Failed to get course progress", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusOK, progress, "")
}

// MarkLesson はレッスンの進捗を記録します
// PUT /progress/{enrollmentId}/lesson/{lessonId}  body: {"status": "in_progress"|"completed"}
func (h *ProgressHandler) MarkLesson(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "MarkLesson"))

	enrollmentID, err := webutil.URLParamUUID(r, "enrollmentId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	lessonID, err := webutil.URLParamUUID(r, "lessonId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	var req model.MarkLessonRequest
	if err := webutil.DecodeAndValidate(w, r, &req); err != nil {
		logger.Warn("Invalid mark lesson request", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	progress, err := h.service.MarkLesson(r.Context(), enrollmentID, lessonID, req.Status)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusOK, progress, "進捗を記録しました。")
}

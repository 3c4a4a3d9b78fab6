// internal/handlers/curriculum_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/service"
	"go_4_learn_progress/internal/webutil"
)

type CurriculumHandler struct {
	service service.CurriculumService
}

func NewCurriculumHandler(s service.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{service: s}
}

// GetSequence はコースを平坦化したレッスン順を返します
// GET /courses/{courseId}/sequence
func (h *CurriculumHandler) GetSequence(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "GetSequence"))

	courseID, err := webutil.URLParamUUID(r, "courseId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	seq, err := h.service.GetSequence(r.Context(), courseID)
	if err != nil {
		logger.Warn("Failed to resolve sequence", slog.Any("error", err), slog.String("course_id", courseID.String()))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusOK, seq, "")
}

// GetNeighbors は指定レッスンの前後のレッスンを返します。module_id クエリは任意。
// GET /courses/{courseId}/sequence/{lessonId}
func (h *CurriculumHandler) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "GetNeighbors"))

	courseID, err := webutil.URLParamUUID(r, "courseId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	lessonID, err := webutil.URLParamUUID(r, "lessonId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	moduleID, err := webutil.QueryUUID(r, "module_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	neighbors, err := h.service.GetNeighbors(r.Context(), courseID, moduleID, lessonID)
	if err != nil {
		logger.Warn("Failed to resolve neighbors", slog.Any("error", err), slog.String("lesson_id", lessonID.String()))
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusOK, neighbors, "")
}

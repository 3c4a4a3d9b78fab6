// internal/handlers/access_handler.go
package handlers

import (
	"log/slog"
	"net/http"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/service"
	"go_4_learn_progress/internal/webutil"
)

// AccessHandler は教材アクセス可否と事前・事後テスト比較のエンドポイントです
type AccessHandler struct {
	gating    service.GatingService
	analytics service.AnalyticsService
}

func NewAccessHandler(gating service.GatingService, analytics service.AnalyticsService) *AccessHandler {
	return &AccessHandler{gating: gating, analytics: analytics}
}

// GetAccessStatus GET /courses/{courseId}/access-status/{enrollmentId}
func (h *AccessHandler) GetAccessStatus(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "GetAccessStatus"))

	courseID, err := webutil.URLParamUUID(r, "courseId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	enrollmentID, err := webutil.URLParamUUID(r, "enrollmentId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	status, err := h.gating.GetAccessStatus(r.Context(), enrollmentID, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusOK, status, "")
}

// GetTestComparison GET /courses/{courseId}/test-comparison/{enrollmentId}
// 未提出のテストがある場合も 200 で data.ready=false を返します。
func (h *AccessHandler) GetTestComparison(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "GetTestComparison"))

	courseID, err := webutil.URLParamUUID(r, "courseId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	enrollmentID, err := webutil.URLParamUUID(r, "enrollmentId")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	cmp, err := h.analytics.CompareTests(r.Context(), enrollmentID, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithSuccess(w, http.StatusOK, cmp, cmp.Message)
}

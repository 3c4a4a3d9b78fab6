// internal/handlers/routes.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/webutil"

	"github.com/go-chi/chi/v5"
)

// Handlers はルーティングに必要なハンドラ一式です
type Handlers struct {
	Curriculum *CurriculumHandler
	Progress   *ProgressHandler
	Quiz       *QuizHandler
	Access     *AccessHandler
}

// RegisterRoutes は学習進捗エンジンのルートを登録します (認証ミドルウェアは呼び出し側で付与)
func RegisterRoutes(r chi.Router, h *Handlers) {
	r.Route("/progress/{enrollmentId}", func(r chi.Router) {
		r.Get("/{courseId}", h.Progress.GetCourseProgress)
		r.Put("/lesson/{lessonId}", h.Progress.MarkLesson)
	})

	r.Route("/courses/{courseId}", func(r chi.Router) {
		r.Get("/sequence", h.Curriculum.GetSequence)
		r.Get("/sequence/{lessonId}", h.Curriculum.GetNeighbors)
		r.Get("/access-status/{enrollmentId}", h.Access.GetAccessStatus)
		r.Get("/test-comparison/{enrollmentId}", h.Access.GetTestComparison)
	})

	r.Route("/quizzes/{quizId}/attempts", func(r chi.Router) {
		r.Post("/", h.Quiz.StartAttempt)
		r.Get("/", h.Quiz.ListAttempts)
	})

	r.Route("/attempts/{attemptId}", func(r chi.Router) {
		r.Get("/", h.Quiz.GetAttempt)
		r.Post("/submit", h.Quiz.SubmitAttempt)
	})
}

// HealthHandler はDB疎通を確認します
// GET /health
func HealthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.GetLogger(r.Context()).With(slog.String("handler", "Health"))
		if err := ping(r.Context()); err != nil {
			logger.Error("Health check failed", slog.Any("error", err))
			webutil.RespondWithJSON(w, http.StatusServiceUnavailable, model.APIResponse{
				Success: false,
				Message: "データベースに接続できません。",
				Error:   &model.ErrorDetail{Code: "UNAVAILABLE", Message: "データベースに接続できません。"},
			})
			return
		}
		webutil.RespondWithSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	}
}

// internal/middleware/dev_auth.go
package middleware

import (
	"net/http"

	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/webutil"

	"github.com/google/uuid"
)

// DevLearnerContextMiddleware は開発時用ミドルウェアです。
// X-Learner-ID ヘッダーがあればその学習者IDをコンテキストに設定します。
// ヘッダーが無い場合は学習者を特定せずに通します (受講登録の本人確認も行われません)。
func DevLearnerContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLogger(r.Context())

		learnerIDStr := r.Header.Get("X-Learner-ID")
		if learnerIDStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		learnerID, err := uuid.Parse(learnerIDStr)
		if err != nil {
			logger.Warn("[DEV AUTH] Invalid X-Learner-ID format", "value", learnerIDStr)
			webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "[DEV] X-Learner-ID の形式が正しくありません。", "X-Learner-ID", model.ErrForbidden))
			return
		}

		logger.Debug("[DEV AUTH] Learner ID set to context (no validation)", "learner_id", learnerID)
		next.ServeHTTP(w, r.WithContext(WithLearnerID(r.Context(), learnerID)))
	})
}

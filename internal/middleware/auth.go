package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/webutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuthMiddleware は Authorization ヘッダーの Bearer トークンを検証し、
// sub クレームの学習者IDをコンテキストに設定します。トークンの発行は外部の認証基盤が行います。
func JWTAuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := GetLogger(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("JWT auth failed: Authorization header missing")
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーが必要です。", "", model.ErrForbidden))
				return
			}

			// "Bearer {token}" の形式を検証
			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
				logger.Warn("JWT auth failed: Invalid Authorization header format")
				webutil.HandleError(w, logger, model.NewAppError("UNAUTHORIZED", "Authorizationヘッダーの形式が正しくありません。", "", model.ErrForbidden))
				return
			}

			// 署名と有効期限(exp)を検証
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secretKey), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				logger.Warn("JWT auth failed: Invalid token", "error", err)
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrForbidden))
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				logger.Warn("JWT auth failed: Subject (sub) claim missing", "error", err)
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "トークンに学習者情報が含まれていません。", "", model.ErrForbidden))
				return
			}
			learnerID, err := uuid.Parse(subject)
			if err != nil {
				logger.Warn("JWT auth failed: Invalid subject (sub) format", "subject", subject, "error", err)
				webutil.HandleError(w, logger, model.NewAppError("INVALID_TOKEN", "トークンの学習者情報が不正です。", "", model.ErrForbidden))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithLearnerID(r.Context(), learnerID)))
		})
	}
}

// WithLearnerID は学習者IDをコンテキストに設定し、ロガーにも付与します
func WithLearnerID(ctx context.Context, learnerID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, model.LearnerIDKey, learnerID)
	return context.WithValue(ctx, logCtxKey{}, GetLogger(ctx).With("learner_id", learnerID.String()))
}

// LearnerIDFromContext は認証済み学習者のIDを返します。未認証 (認証無効時など) は false。
func LearnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	learnerID, ok := ctx.Value(model.LearnerIDKey).(uuid.UUID)
	return learnerID, ok
}

package handlers_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go_4_learn_progress/internal/handlers"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/service/mocks"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// testServer はモックサービスを注入したルーター
type testServer struct {
	router     chi.Router
	curriculum *mocks.CurriculumService
	progress   *mocks.ProgressService
	quiz       *mocks.QuizService
	gating     *mocks.GatingService
	analytics  *mocks.AnalyticsService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		curriculum: mocks.NewCurriculumService(t),
		progress:   mocks.NewProgressService(t),
		quiz:       mocks.NewQuizService(t),
		gating:     mocks.NewGatingService(t),
		analytics:  mocks.NewAnalyticsService(t),
	}
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, &handlers.Handlers{
		Curriculum: handlers.NewCurriculumHandler(s.curriculum),
		Progress:   handlers.NewProgressHandler(s.progress),
		Quiz:       handlers.NewQuizHandler(s.quiz),
		Access:     handlers.NewAccessHandler(s.gating, s.analytics),
	})
	s.router = r
	return s
}

// do はリクエストを送り、ステータスとデコード済みエンベロープを返します
func (s *testServer) do(t *testing.T, method, path, body string) (int, model.APIResponse, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	var raw struct {
		Data map[string]any `json:"data"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &raw)
	return rr.Code, resp, raw.Data
}

package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"go_4_learn_progress/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStartAttempt(t *testing.T) {
	quizID := uuid.New()
	enrollmentID := uuid.New()

	t.Run("201 で受験を返す", func(t *testing.T) {
		s := newTestServer(t)
		view := &model.AttemptView{
			AttemptID:     uuid.New(),
			QuizID:        quizID,
			EnrollmentID:  enrollmentID,
			AttemptNumber: 1,
			Status:        model.AttemptInProgress,
			StartedAt:     time.Now(),
		}
		s.quiz.On("StartAttempt", mock.Anything, quizID, enrollmentID).Return(view, nil).Once()

		code, resp, data := s.do(t, http.MethodPost, "/quizzes/"+quizID.String()+"/attempts",
			fmt.Sprintf(`{"enrollment_id":%q}`, enrollmentID))

		assert.Equal(t, http.StatusCreated, code)
		assert.True(t, resp.Success)
		assert.Equal(t, "受験を開始しました。", resp.Message)
		assert.Equal(t, view.AttemptID.String(), data["attempt_id"])
		assert.EqualValues(t, 1, data["attempt_number"])
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "進行中の受験あり", err: model.NewAppError("ATTEMPT_IN_PROGRESS", "進行中", "", model.ErrConflict), wantStatus: http.StatusConflict, wantCode: "ATTEMPT_IN_PROGRESS"},
		{name: "回数上限", err: model.NewAppError("ATTEMPT_LIMIT_EXCEEDED", "上限", "", model.ErrLimitExceeded), wantStatus: http.StatusUnprocessableEntity, wantCode: "ATTEMPT_LIMIT_EXCEEDED"},
		{name: "クイズなし", err: model.NewAppError("QUIZ_NOT_FOUND", "なし", "", model.ErrNotFound), wantStatus: http.StatusNotFound, wantCode: "QUIZ_NOT_FOUND"},
		{name: "他人の受講登録", err: model.NewAppError("FORBIDDEN", "不可", "", model.ErrForbidden), wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "予期しないエラー", err: fmt.Errorf("db down"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.quiz.On("StartAttempt", mock.Anything, quizID, enrollmentID).Return(nil, tt.err).Once()

			code, resp, _ := s.do(t, http.MethodPost, "/quizzes/"+quizID.String()+"/attempts",
				fmt.Sprintf(`{"enrollment_id":%q}`, enrollmentID))

			assert.Equal(t, tt.wantStatus, code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}

	t.Run("不正な quizId は 400", func(t *testing.T) {
		s := newTestServer(t)
		code, resp, _ := s.do(t, http.MethodPost, "/quizzes/abc/attempts", fmt.Sprintf(`{"enrollment_id":%q}`, enrollmentID))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "quizId", resp.Error.Field)
	})

	t.Run("enrollment_id なしは 400", func(t *testing.T) {
		s := newTestServer(t)
		code, resp, _ := s.do(t, http.MethodPost, "/quizzes/"+quizID.String()+"/attempts", `{}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "enrollment_id", resp.Error.Field)
		assert.Contains(t, resp.Error.Message, "受講登録ID")
	})

	t.Run("未知のフィールドは 400", func(t *testing.T) {
		s := newTestServer(t)
		code, resp, _ := s.do(t, http.MethodPost, "/quizzes/"+quizID.String()+"/attempts",
			fmt.Sprintf(`{"enrollment_id":%q,"extra":1}`, enrollmentID))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "INVALID_REQUEST_BODY", resp.Error.Code)
	})

	t.Run("空ボディは 400", func(t *testing.T) {
		s := newTestServer(t)
		code, resp, _ := s.do(t, http.MethodPost, "/quizzes/"+quizID.String()+"/attempts", "")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "INVALID_REQUEST_BODY", resp.Error.Code)
	})
}

func TestListAttempts(t *testing.T) {
	quizID := uuid.New()
	enrollmentID := uuid.New()

	t.Run("履歴を返す", func(t *testing.T) {
		s := newTestServer(t)
		score := 80.0
		passed := true
		s.quiz.On("ListAttempts", mock.Anything, quizID, enrollmentID).Return([]model.AttemptSummary{
			{AttemptID: uuid.New(), AttemptNumber: 1, Status: model.AttemptSubmitted, Score: &score, Passed: &passed},
		}, nil).Once()

		code, resp, _ := s.do(t, http.MethodGet, "/quizzes/"+quizID.String()+"/attempts?enrollment_id="+enrollmentID.String(), "")
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, resp.Success)
		items, ok := resp.Data.([]any)
		require.True(t, ok)
		assert.Len(t, items, 1)
	})

	t.Run("enrollment_id 必須", func(t *testing.T) {
		s := newTestServer(t)
		code, resp, _ := s.do(t, http.MethodGet, "/quizzes/"+quizID.String()+"/attempts", "")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "enrollment_id", resp.Error.Field)
	})

	t.Run("enrollment_id の形式不正", func(t *testing.T) {
		s := newTestServer(t)
		code, resp, _ := s.do(t, http.MethodGet, "/quizzes/"+quizID.String()+"/attempts?enrollment_id=x", "")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "INVALID_ID", resp.Error.Code)
	})
}

func TestSubmitAttempt(t *testing.T) {
	attemptID := uuid.New()
	questionID := uuid.New()
	optionID := uuid.New()

	t.Run("回答を渡して結果を返す", func(t *testing.T) {
		s := newTestServer(t)
		want := []model.SubmittedAnswer{{QuestionID: questionID, SelectedOptionID: &optionID}}
		s.quiz.On("SubmitAttempt", mock.Anything, attemptID, want).Return(&model.AttemptResult{
			AttemptID: attemptID,
			Status:    model.AttemptSubmitted,
			Score:     66.67,
			Passed:    true,
		}, nil).Once()

		code, resp, data := s.do(t, http.MethodPost, "/attempts/"+attemptID.String()+"/submit",
			fmt.Sprintf(`{"answers":[{"question_id":%q,"selected_option_id":%q}]}`, questionID, optionID))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "提出しました。", resp.Message)
		assert.Equal(t, 66.67, data["score"])
		assert.Equal(t, true, data["passed"])
	})

	t.Run("question_id なしは 400", func(t *testing.T) {
		s := newTestServer(t)
		code, resp, _ := s.do(t, http.MethodPost, "/attempts/"+attemptID.String()+"/submit", `{"answers":[{"text_answer":"x"}]}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "設問ID")
	})

	t.Run("提出済みは 409", func(t *testing.T) {
		s := newTestServer(t)
		s.quiz.On("SubmitAttempt", mock.Anything, attemptID, mock.Anything).
			Return(nil, model.NewAppError("ATTEMPT_ALREADY_SUBMITTED", "提出済み", "", model.ErrInvalidState)).Once()
		code, _, _ := s.do(t, http.MethodPost, "/attempts/"+attemptID.String()+"/submit", `{"answers":[]}`)
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("正解のない設問は 422", func(t *testing.T) {
		s := newTestServer(t)
		s.quiz.On("SubmitAttempt", mock.Anything, attemptID, mock.Anything).
			Return(nil, model.NewAppError("INVALID_QUESTION", "設問不正", "", model.ErrInvalidQuestion)).Once()
		code, _, _ := s.do(t, http.MethodPost, "/attempts/"+attemptID.String()+"/submit", `{"answers":[]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
	})
}

func TestGetAttempt(t *testing.T) {
	attemptID := uuid.New()

	t.Run("進行中", func(t *testing.T) {
		s := newTestServer(t)
		s.quiz.On("GetAttempt", mock.Anything, attemptID).Return(&model.AttemptDetail{
			Status:  model.AttemptInProgress,
			Attempt: &model.AttemptView{AttemptID: attemptID, Status: model.AttemptInProgress},
		}, nil).Once()

		code, _, data := s.do(t, http.MethodGet, "/attempts/"+attemptID.String(), "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "in_progress", data["status"])
		assert.NotNil(t, data["attempt"])
		assert.Nil(t, data["result"])
	})

	t.Run("存在しない", func(t *testing.T) {
		s := newTestServer(t)
		s.quiz.On("GetAttempt", mock.Anything, attemptID).
			Return(nil, model.NewAppError("ATTEMPT_NOT_FOUND", "なし", "", model.ErrNotFound)).Once()
		code, _, _ := s.do(t, http.MethodGet, "/attempts/"+attemptID.String(), "")
		assert.Equal(t, http.StatusNotFound, code)
	})
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/repository"
	"go_4_learn_progress/internal/seed"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// テスト用フィクスチャのID
var (
	courseA = uuid.MustParse("c0000000-0000-4000-8000-00000000000a")
	courseB = uuid.MustParse("c0000000-0000-4000-8000-00000000000b")

	module1 = uuid.MustParse("d0000000-0000-4000-8000-000000000001")
	module2 = uuid.MustParse("d0000000-0000-4000-8000-000000000002") // レッスンなし
	module3 = uuid.MustParse("d0000000-0000-4000-8000-000000000003")

	lesson1 = uuid.MustParse("e1000000-0000-4000-8000-000000000001")
	lesson2 = uuid.MustParse("e1000000-0000-4000-8000-000000000002")
	lesson3 = uuid.MustParse("e1000000-0000-4000-8000-000000000003")
	lessonB = uuid.MustParse("e1000000-0000-4000-8000-00000000000b")

	enrollA = uuid.MustParse("f0000000-0000-4000-8000-00000000000a")
	enrollB = uuid.MustParse("f0000000-0000-4000-8000-00000000000b")
	learner = uuid.MustParse("b0000000-0000-4000-8000-000000000001")

	quizPre    = uuid.MustParse("a0000000-0000-4000-8000-000000000001")
	quizPost   = uuid.MustParse("a0000000-0000-4000-8000-000000000002")
	quizModule = uuid.MustParse("a0000000-0000-4000-8000-000000000003")
	quizBad    = uuid.MustParse("a0000000-0000-4000-8000-000000000004")

	// quizModule: 選択式・○×・記述の3問 (各1点)
	qChoice    = uuid.MustParse("90000000-0000-4000-8000-000000000001")
	qTrueFalse = uuid.MustParse("90000000-0000-4000-8000-000000000002")
	qShort     = uuid.MustParse("90000000-0000-4000-8000-000000000003")
	optChoiceA = uuid.MustParse("91000000-0000-4000-8000-000000000001")
	optChoiceB = uuid.MustParse("91000000-0000-4000-8000-000000000002") // 正解
	optTrue    = uuid.MustParse("92000000-0000-4000-8000-000000000001") // 正解
	optFalse   = uuid.MustParse("92000000-0000-4000-8000-000000000002")

	// 事前・事後テスト: 各2問
	preQ1      = uuid.MustParse("93000000-0000-4000-8000-000000000001")
	preQ2      = uuid.MustParse("93000000-0000-4000-8000-000000000002")
	preQ1Good  = uuid.MustParse("94000000-0000-4000-8000-000000000001")
	preQ2Good  = uuid.MustParse("94000000-0000-4000-8000-000000000003")
	postQ1     = uuid.MustParse("95000000-0000-4000-8000-000000000001")
	postQ2     = uuid.MustParse("95000000-0000-4000-8000-000000000002")
	postQ1Good = uuid.MustParse("96000000-0000-4000-8000-000000000001")
	postQ2Good = uuid.MustParse("96000000-0000-4000-8000-000000000003")
)

const fixtureYAML = `
courses:
  - id: "c0000000-0000-4000-8000-00000000000a"
    title: "コースA"
    require_pre_test: true
    pre_test:
      id: "a0000000-0000-4000-8000-000000000001"
      title: "事前テスト"
      questions:
        - id: "93000000-0000-4000-8000-000000000001"
          type: true_false
          prompt: "pre1"
          options:
            - { id: "94000000-0000-4000-8000-000000000001", text: "○", correct: true }
            - { id: "94000000-0000-4000-8000-000000000002", text: "×" }
        - id: "93000000-0000-4000-8000-000000000002"
          type: true_false
          prompt: "pre2"
          options:
            - { id: "94000000-0000-4000-8000-000000000003", text: "○", correct: true }
            - { id: "94000000-0000-4000-8000-000000000004", text: "×" }
    post_test:
      id: "a0000000-0000-4000-8000-000000000002"
      title: "事後テスト"
      passing_score: 60
      questions:
        - id: "95000000-0000-4000-8000-000000000001"
          type: true_false
          prompt: "post1"
          options:
            - { id: "96000000-0000-4000-8000-000000000001", text: "○", correct: true }
            - { id: "96000000-0000-4000-8000-000000000002", text: "×" }
        - id: "95000000-0000-4000-8000-000000000002"
          type: true_false
          prompt: "post2"
          options:
            - { id: "96000000-0000-4000-8000-000000000003", text: "○", correct: true }
            - { id: "96000000-0000-4000-8000-000000000004", text: "×" }
    modules:
      - id: "d0000000-0000-4000-8000-000000000001"
        title: "M1"
        position: 1
        lessons:
          - { id: "e1000000-0000-4000-8000-000000000002", title: "L2", position: 2 }
          - { id: "e1000000-0000-4000-8000-000000000001", title: "L1", position: 1 }
        quizzes:
          - id: "a0000000-0000-4000-8000-000000000003"
            title: "M1 小テスト"
            passing_score: 60
            max_attempts: 2
            questions:
              - id: "90000000-0000-4000-8000-000000000001"
                type: multiple_choice
                prompt: "choice"
                explanation: "B が正解"
                options:
                  - { id: "91000000-0000-4000-8000-000000000001", text: "A" }
                  - { id: "91000000-0000-4000-8000-000000000002", text: "B", correct: true }
              - id: "90000000-0000-4000-8000-000000000002"
                type: true_false
                prompt: "tf"
                options:
                  - { id: "92000000-0000-4000-8000-000000000001", text: "○", correct: true }
                  - { id: "92000000-0000-4000-8000-000000000002", text: "×" }
              - id: "90000000-0000-4000-8000-000000000003"
                type: short_answer
                prompt: "short"
      - id: "d0000000-0000-4000-8000-000000000002"
        title: "M2 (空)"
        position: 2
      - id: "d0000000-0000-4000-8000-000000000003"
        title: "M3"
        position: 3
        lessons:
          - { id: "e1000000-0000-4000-8000-000000000003", title: "L3" }
    enrollments:
      - id: "f0000000-0000-4000-8000-00000000000a"
        learner_id: "b0000000-0000-4000-8000-000000000001"

  - id: "c0000000-0000-4000-8000-00000000000b"
    title: "コースB"
    modules:
      - title: "MB"
        lessons:
          - { id: "e1000000-0000-4000-8000-00000000000b", title: "LB" }
        quizzes:
          - id: "a0000000-0000-4000-8000-000000000004"
            title: "壊れた小テスト"
            questions:
              - type: multiple_choice
                prompt: "正解なし"
                options:
                  - { text: "A" }
                  - { text: "B" }
    enrollments:
      - id: "f0000000-0000-4000-8000-00000000000b"
        learner_id: "b0000000-0000-4000-8000-000000000001"
`

type testEnv struct {
	db         *gorm.DB
	curriculum CurriculumService
	progress   ProgressService
	quiz       QuizService
	gating     GatingService
	analytics  AnalyticsService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to connect database for testing")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(context.Background(), db))
	return db
}

// newTestEnv はフィクスチャを投入したDBと実装一式を用意します
func newTestEnv(t *testing.T, cache repository.CurriculumCache) *testEnv {
	t.Helper()
	db := newTestDB(t)
	_, err := seed.Load(context.Background(), db, strings.NewReader(fixtureYAML))
	require.NoError(t, err, "failed to load fixture")

	currRepo := repository.NewGormCurriculumRepository()
	enrollRepo := repository.NewGormEnrollmentRepository()
	progRepo := repository.NewGormProgressRepository()
	quizRepo := repository.NewGormQuizRepository()
	attemptRepo := repository.NewGormAttemptRepository()

	env := &testEnv{db: db}
	env.curriculum = NewCurriculumService(db, currRepo, cache)
	env.progress = NewProgressService(db, enrollRepo, currRepo, progRepo, env.curriculum)
	env.quiz = NewQuizService(db, enrollRepo, currRepo, quizRepo, attemptRepo, 42)
	env.gating = NewGatingService(db, enrollRepo, currRepo, attemptRepo, env.progress)
	env.analytics = NewAnalyticsService(db, enrollRepo, currRepo, attemptRepo)
	return env
}

// asLearner は認証済み学習者のコンテキストを返します
func asLearner(id uuid.UUID) context.Context {
	return middleware.WithLearnerID(context.Background(), id)
}

func optionAnswer(questionID, optionID uuid.UUID) model.SubmittedAnswer {
	return model.SubmittedAnswer{QuestionID: questionID, SelectedOptionID: &optionID}
}

// takeQuiz は受験を開始して answers を提出します
func takeQuiz(t *testing.T, env *testEnv, quizID, enrollmentID uuid.UUID, answers ...model.SubmittedAnswer) *model.AttemptResult {
	t.Helper()
	ctx := context.Background()
	view, err := env.quiz.StartAttempt(ctx, quizID, enrollmentID)
	require.NoError(t, err)
	result, err := env.quiz.SubmitAttempt(ctx, view.AttemptID, answers)
	require.NoError(t, err)
	return result
}

// requireAppError は AppError のコードとセンチネルを確認します
func requireAppError(t *testing.T, err error, sentinel error, code string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, sentinel)
	var appErr *model.AppError
	require.True(t, errors.As(err, &appErr), "expected *model.AppError, got %T", err)
	if code != "" {
		require.Equal(t, code, appErr.Code)
	}
}

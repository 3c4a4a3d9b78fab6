package repository

import (
	"context"
	"testing"
	"time"

	"go_4_learn_progress/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB はテストごとに独立したインメモリSQLiteを用意します
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(context.Background(), db))
	return db
}

type courseFixture struct {
	course     *model.Course
	modules    []*model.Module
	lessons    []*model.Lesson
	enrollment *model.Enrollment
	quiz       *model.Quiz
}

// createCourse はモジュール2つ (レッスン2つ / 1つ) と受講登録、小テスト1つを作成します。
// 並び順の検証のため position は逆順に挿入します。
func createCourse(t *testing.T, db *gorm.DB) *courseFixture {
	t.Helper()
	f := &courseFixture{}
	f.course = &model.Course{CourseID: uuid.New(), Title: "コース"}
	require.NoError(t, db.Create(f.course).Error)

	m2 := &model.Module{ModuleID: uuid.New(), CourseID: f.course.CourseID, Title: "M2", Position: 2}
	m1 := &model.Module{ModuleID: uuid.New(), CourseID: f.course.CourseID, Title: "M1", Position: 1}
	require.NoError(t, db.Create(m2).Error)
	require.NoError(t, db.Create(m1).Error)
	f.modules = []*model.Module{m1, m2}

	l12 := &model.Lesson{LessonID: uuid.New(), ModuleID: m1.ModuleID, Title: "L1-2", Position: 2}
	l11 := &model.Lesson{LessonID: uuid.New(), ModuleID: m1.ModuleID, Title: "L1-1", Position: 1}
	l21 := &model.Lesson{LessonID: uuid.New(), ModuleID: m2.ModuleID, Title: "L2-1", Position: 1}
	for _, l := range []*model.Lesson{l12, l11, l21} {
		require.NoError(t, db.Create(l).Error)
	}
	f.lessons = []*model.Lesson{l11, l12, l21}

	f.enrollment = &model.Enrollment{EnrollmentID: uuid.New(), LearnerID: uuid.New(), CourseID: f.course.CourseID}
	require.NoError(t, db.Create(f.enrollment).Error)

	f.quiz = &model.Quiz{QuizID: uuid.New(), ModuleID: &m1.ModuleID, Title: "Q", PassingScore: 60}
	require.NoError(t, db.Create(f.quiz).Error)
	return f
}

func newAttempt(f *courseFixture, number int) *model.QuizAttempt {
	return &model.QuizAttempt{
		AttemptID:     uuid.New(),
		EnrollmentID:  f.enrollment.EnrollmentID,
		QuizID:        f.quiz.QuizID,
		AttemptNumber: number,
		Status:        model.AttemptInProgress,
		QuestionOrder: []uuid.UUID{uuid.New(), uuid.New()},
		StartedAt:     time.Now(),
	}
}

//go:generate mockery --name AnalyticsService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	msgPreTestIncomplete  = "事前テストがまだ提出されていません。まず事前テストを受験してください。"
	msgPostTestIncomplete = "事後テストがまだ提出されていません。コースを修了して事後テストを受験してください。"
)

// AnalyticsService は事前テストと事後テストのスコアを比較します
type AnalyticsService interface {
	// CompareTests はどちらかが未提出なら Ready=false の結果を返します (エラーではない)
	CompareTests(ctx context.Context, enrollmentID, courseID uuid.UUID) (*model.TestComparison, error)
}

type analyticsService struct {
	db          *gorm.DB
	enrollRepo  repository.EnrollmentRepository
	currRepo    repository.CurriculumRepository
	attemptRepo repository.AttemptRepository
}

func NewAnalyticsService(
	db *gorm.DB,
	enrollRepo repository.EnrollmentRepository,
	currRepo repository.CurriculumRepository,
	attemptRepo repository.AttemptRepository,
) AnalyticsService {
	return &analyticsService{
		db:          db,
		enrollRepo:  enrollRepo,
		currRepo:    currRepo,
		attemptRepo: attemptRepo,
	}
}

func (s *analyticsService) CompareTests(ctx context.Context, enrollmentID, courseID uuid.UUID) (*model.TestComparison, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollmentID, "course_id", courseID)

	if _, err := loadEnrollmentForCourse(ctx, s.db, s.enrollRepo, enrollmentID, courseID); err != nil {
		return nil, err
	}
	course, err := s.currRepo.FindCourseByID(ctx, s.db, courseID)
	if err != nil {
		return nil, wrapRepoError(err, codeCourseNotFound, "コースが見つかりません。", "コースの取得に失敗しました。")
	}
	if course.PreTestQuizID == nil || course.PostTestQuizID == nil {
		return nil, model.NewAppError(codeTestsNotSet, "このコースには事前・事後テストが設定されていません。", "course_id", model.ErrNotFound)
	}

	cmp := &model.TestComparison{EnrollmentID: enrollmentID, CourseID: courseID}

	// 事前テストは最初の提出、事後テストは最新の提出を使う
	pre, err := s.attemptRepo.FindFirstSubmitted(ctx, s.db, enrollmentID, *course.PreTestQuizID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			cmp.Reason = model.PreTestIncomplete
			cmp.Message = msgPreTestIncomplete
			return cmp, nil
		}
		logger.Error("Failed to load pre-test attempt", "error", err)
		return nil, model.NewAppError(codeInternal, "事前テストの結果取得に失敗しました。", "", err)
	}
	cmp.PreTest = testScore(pre)

	post, err := s.attemptRepo.FindLatestSubmitted(ctx, s.db, enrollmentID, *course.PostTestQuizID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			cmp.Reason = model.PostTestIncomplete
			cmp.Message = msgPostTestIncomplete
			return cmp, nil
		}
		logger.Error("Failed to load post-test attempt", "error", err)
		return nil, model.NewAppError(codeInternal, "事後テストの結果取得に失敗しました。", "", err)
	}
	cmp.PostTest = testScore(post)

	comparison := CompareScores(cmp.PreTest.Score, cmp.PostTest.Score)
	cmp.Comparison = &comparison
	cmp.Ready = true
	return cmp, nil
}

func testScore(a *model.QuizAttempt) *model.TestScore {
	ts := &model.TestScore{QuizID: a.QuizID, AttemptID: a.AttemptID}
	if a.Score != nil {
		ts.Score = *a.Score
	}
	return ts
}

// CompareScores は改善幅を計算します。
// Improvement は post - pre (負もあり得る)。ImprovementPercentage は事前スコアに対する伸び率を 0〜100 に丸めた表示用の値で、
// 事前スコアが0の場合は伸びがあれば100、なければ0。
func CompareScores(pre, post float64) model.ScoreComparison {
	improvement := round2(post - pre)

	var pct float64
	switch {
	case pre > 0:
		pct = improvement / pre * 100
	case improvement > 0:
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return model.ScoreComparison{
		Improvement:           improvement,
		ImprovementPercentage: round2(pct),
	}
}

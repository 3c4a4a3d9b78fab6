//go:generate mockery --name GatingService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GatingService は事前テストによる教材アクセスの可否を判定します。
// 状態は保存せず、受験の提出有無から毎回導出します (一度 Unlocked になれば戻らない)。
type GatingService interface {
	GetAccessStatus(ctx context.Context, enrollmentID, courseID uuid.UUID) (*model.AccessStatus, error)
}

type gatingService struct {
	db          *gorm.DB
	enrollRepo  repository.EnrollmentRepository
	currRepo    repository.CurriculumRepository
	attemptRepo repository.AttemptRepository
	progress    ProgressService
}

func NewGatingService(
	db *gorm.DB,
	enrollRepo repository.EnrollmentRepository,
	currRepo repository.CurriculumRepository,
	attemptRepo repository.AttemptRepository,
	progress ProgressService,
) GatingService {
	return &gatingService{
		db:          db,
		enrollRepo:  enrollRepo,
		currRepo:    currRepo,
		attemptRepo: attemptRepo,
		progress:    progress,
	}
}

func (s *gatingService) GetAccessStatus(ctx context.Context, enrollmentID, courseID uuid.UUID) (*model.AccessStatus, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollmentID, "course_id", courseID)

	if _, err := loadEnrollmentForCourse(ctx, s.db, s.enrollRepo, enrollmentID, courseID); err != nil {
		return nil, err
	}
	course, err := s.currRepo.FindCourseByID(ctx, s.db, courseID)
	if err != nil {
		return nil, wrapRepoError(err, codeCourseNotFound, "コースが見つかりません。", "コースの取得に失敗しました。")
	}

	preCompleted, err := s.hasSubmitted(ctx, enrollmentID, course.PreTestQuizID)
	if err != nil {
		logger.Error("Failed to check pre-test attempts", "error", err)
		return nil, model.NewAppError(codeInternal, "事前テストの受験状況の確認に失敗しました。", "", err)
	}
	postCompleted, err := s.hasSubmitted(ctx, enrollmentID, course.PostTestQuizID)
	if err != nil {
		logger.Error("Failed to check post-test attempts", "error", err)
		return nil, model.NewAppError(codeInternal, "事後テストの受験状況の確認に失敗しました。", "", err)
	}

	progress, err := s.progress.GetCourseProgress(ctx, enrollmentID, courseID)
	if err != nil {
		return nil, err
	}

	return DecideAccess(course, enrollmentID, preCompleted, postCompleted, progress.OverallProgress), nil
}

func (s *gatingService) hasSubmitted(ctx context.Context, enrollmentID uuid.UUID, quizID *uuid.UUID) (bool, error) {
	if quizID == nil {
		return false, nil
	}
	n, err := s.attemptRepo.CountSubmitted(ctx, s.db, enrollmentID, *quizID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DecideAccess はアクセス可否を決めます。
// 事前テストは提出されていれば合否に関係なく解放、事後テストはコース進捗100%で受験可能。
func DecideAccess(course *model.Course, enrollmentID uuid.UUID, preCompleted, postCompleted bool, overallProgress int) *model.AccessStatus {
	preRequired := course.RequirePreTest && course.PreTestQuizID != nil
	canAccess := !preRequired || preCompleted

	state := model.AccessLocked
	if canAccess {
		state = model.AccessUnlocked
	}
	return &model.AccessStatus{
		EnrollmentID:      enrollmentID,
		CourseID:          course.CourseID,
		State:             state,
		PreTestRequired:   preRequired,
		PreTestID:         course.PreTestQuizID,
		PreTestCompleted:  preCompleted,
		PostTestAvailable: course.PostTestQuizID != nil && overallProgress == 100,
		PostTestID:        course.PostTestQuizID,
		PostTestCompleted: postCompleted,
		OverallProgress:   overallProgress,
		CanAccess:         canAccess,
	}
}

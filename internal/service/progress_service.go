//go:generate mockery --name ProgressService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressService はレッスン単位の進捗を記録し、モジュール・コース単位の進捗率を集計します
type ProgressService interface {
	// MarkLesson は in_progress / completed を記録します。completed は後退せず、completed_at は最初の値を保持します。
	MarkLesson(ctx context.Context, enrollmentID, lessonID uuid.UUID, status model.LessonStatus) (*model.LessonProgress, error)
	GetCourseProgress(ctx context.Context, enrollmentID, courseID uuid.UUID) (*model.CourseProgress, error)
}

type progressService struct {
	db         *gorm.DB
	enrollRepo repository.EnrollmentRepository
	currRepo   repository.CurriculumRepository
	progRepo   repository.ProgressRepository
	curriculum CurriculumService
	now        func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	enrollRepo repository.EnrollmentRepository,
	currRepo repository.CurriculumRepository,
	progRepo repository.ProgressRepository,
	curriculum CurriculumService,
) ProgressService {
	return &progressService{
		db:         db,
		enrollRepo: enrollRepo,
		currRepo:   currRepo,
		progRepo:   progRepo,
		curriculum: curriculum,
		now:        time.Now,
	}
}

func (s *progressService) MarkLesson(ctx context.Context, enrollmentID, lessonID uuid.UUID, status model.LessonStatus) (*model.LessonProgress, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollmentID, "lesson_id", lessonID)

	if status != model.LessonInProgress && status != model.LessonCompleted {
		return nil, model.NewAppError(codeInvalidInput, "status には in_progress または completed を指定してください。", "status", model.ErrInvalidInput)
	}

	now := s.now().UTC()
	var saved *model.LessonProgress
	var enrollment *model.Enrollment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, err = s.enrollRepo.FindByID(ctx, tx, enrollmentID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return enrollmentNotFound()
			}
			return wrapRepoError(err, "", "", "受講登録の取得に失敗しました。")
		}
		if err := checkLearner(ctx, enrollment); err != nil {
			return err
		}

		// レッスンが受講中のコースに属するか
		if err := s.ensureLessonInCourse(ctx, tx, lessonID, enrollment.CourseID); err != nil {
			return err
		}

		current := model.LessonNotStarted
		existing, err := s.progRepo.FindByEnrollmentAndLesson(ctx, tx, enrollmentID, lessonID)
		switch {
		case err == nil:
			current = existing.Status
		case errors.Is(err, model.ErrNotFound):
		default:
			return wrapRepoError(err, "", "", "進捗の取得に失敗しました。")
		}

		// 状態が変わらない再送は書き込まない (updated_at も completed_at もそのまま)
		next := current.Advance(status)
		if existing != nil && next == current {
			saved = existing
			return nil
		}

		progress := &model.LessonProgress{
			ProgressID:   uuid.New(),
			EnrollmentID: enrollmentID,
			LessonID:     lessonID,
			Status:       next,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if next == model.LessonCompleted {
			progress.CompletedAt = &now
		}
		// 同時実行時の後退防止は upsert 側の CASE が担う
		if err := s.progRepo.Upsert(ctx, tx, progress); err != nil {
			return model.NewAppError(codeInternal, "進捗の保存に失敗しました。", "", err)
		}

		saved, err = s.progRepo.FindByEnrollmentAndLesson(ctx, tx, enrollmentID, lessonID)
		if err != nil {
			return wrapRepoError(err, codeInternal, "進捗の保存に失敗しました。", "進捗の取得に失敗しました。")
		}
		return nil
	})
	if err != nil {
		logger.Warn("MarkLesson failed", "error", err, "status", status)
		return nil, err
	}

	logger.Info("Lesson progress recorded", "requested", status, "status", saved.Status)

	if saved.Status == model.LessonCompleted && enrollment.CompletedAt == nil {
		// 進捗は保存済み。修了記録に失敗しても次の completed で再判定される。
		if err := s.stampCourseCompletion(ctx, enrollment, now); err != nil {
			logger.Warn("Failed to stamp course completion", "error", err)
		}
	}
	return saved, nil
}

// ensureLessonInCourse は存在しないレッスン・他コースのレッスンを ErrInvalidState として拒否します
func (s *progressService) ensureLessonInCourse(ctx context.Context, tx *gorm.DB, lessonID, courseID uuid.UUID) error {
	notInCourse := model.NewAppError(codeLessonNotInCourse, "このコースに存在しないレッスンです。", "lesson_id", model.ErrInvalidState)

	lesson, err := s.currRepo.FindLessonByID(ctx, tx, lessonID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return notInCourse
		}
		return wrapRepoError(err, "", "", "レッスンの取得に失敗しました。")
	}
	module, err := s.currRepo.FindModuleByID(ctx, tx, lesson.ModuleID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return notInCourse
		}
		return wrapRepoError(err, "", "", "モジュールの取得に失敗しました。")
	}
	if module.CourseID != courseID {
		return notInCourse
	}
	return nil
}

// stampCourseCompletion は進捗が初めて100%になったときに受講登録へ修了時刻を記録します。
// 進捗率は GetCourseProgress と同じコース構成 (キャッシュ経由) で判定します。
func (s *progressService) stampCourseCompletion(ctx context.Context, enrollment *model.Enrollment, now time.Time) error {
	course, err := s.curriculum.CourseTree(ctx, enrollment.CourseID)
	if err != nil {
		return err
	}
	progresses, err := s.progRepo.FindByEnrollment(ctx, s.db, enrollment.EnrollmentID)
	if err != nil {
		return model.NewAppError(codeInternal, "進捗の取得に失敗しました。", "", err)
	}
	if summary := SummarizeProgress(course, progresses); summary.OverallProgress < 100 {
		return nil
	}
	stamped, err := s.enrollRepo.MarkCompleted(ctx, s.db, enrollment.EnrollmentID, now)
	if err != nil {
		return model.NewAppError(codeInternal, "受講登録の更新に失敗しました。", "", err)
	}
	if stamped {
		middleware.GetLogger(ctx).Info("Course completed", "enrollment_id", enrollment.EnrollmentID, "course_id", enrollment.CourseID)
	}
	return nil
}

func (s *progressService) GetCourseProgress(ctx context.Context, enrollmentID, courseID uuid.UUID) (*model.CourseProgress, error) {
	logger := middleware.GetLogger(ctx).With("enrollment_id", enrollmentID, "course_id", courseID)

	enrollment, err := loadEnrollmentForCourse(ctx, s.db, s.enrollRepo, enrollmentID, courseID)
	if err != nil {
		return nil, err
	}

	course, err := s.curriculum.CourseTree(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	progresses, err := s.progRepo.FindByEnrollment(ctx, s.db, enrollmentID)
	if err != nil {
		logger.Error("Failed to list lesson progress", "error", err)
		return nil, model.NewAppError(codeInternal, "進捗の取得に失敗しました。", "", err)
	}

	summary := SummarizeProgress(course, progresses)
	summary.EnrollmentID = enrollmentID
	return summary, nil
}

// SummarizeProgress はコース構成と進捗行から進捗率を計算します。
// 進捗率は round(100 * 完了数 / レッスン数)、レッスン数0の場合は0。コース外のレッスンの進捗は数えません。
func SummarizeProgress(course *model.Course, progresses []*model.LessonProgress) *model.CourseProgress {
	completed := make(map[uuid.UUID]bool, len(progresses))
	for _, p := range progresses {
		if p.Status == model.LessonCompleted {
			completed[p.LessonID] = true
		}
	}

	modules := make([]model.Module, len(course.Modules))
	copy(modules, course.Modules)
	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Position != modules[j].Position {
			return modules[i].Position < modules[j].Position
		}
		return modules[i].ModuleID.String() < modules[j].ModuleID.String()
	})

	result := &model.CourseProgress{
		CourseID:          course.CourseID,
		PerModuleProgress: make(map[uuid.UUID]int, len(modules)),
		Modules:           make([]model.ModuleProgress, 0, len(modules)),
	}
	for _, m := range modules {
		mp := model.ModuleProgress{ModuleID: m.ModuleID, TotalLessons: len(m.Lessons)}
		for _, l := range m.Lessons {
			if completed[l.LessonID] {
				mp.CompletedLessons++
			}
		}
		mp.Progress = percent(mp.CompletedLessons, mp.TotalLessons)

		result.CompletedLessons += mp.CompletedLessons
		result.TotalLessons += mp.TotalLessons
		result.PerModuleProgress[m.ModuleID] = mp.Progress
		result.Modules = append(result.Modules, mp)
	}
	result.OverallProgress = percent(result.CompletedLessons, result.TotalLessons)
	result.IsCompleted = result.OverallProgress == 100
	return result
}

func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// loadEnrollmentForCourse は受講登録を取得し、指定コースのものであることを確認します
func loadEnrollmentForCourse(ctx context.Context, db *gorm.DB, repo repository.EnrollmentRepository, enrollmentID, courseID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := repo.FindByID(ctx, db, enrollmentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, enrollmentNotFound()
		}
		return nil, wrapRepoError(err, "", "", "受講登録の取得に失敗しました。")
	}
	if enrollment.CourseID != courseID {
		return nil, model.NewAppError(codeEnrollmentMissing, "このコースの受講登録が見つかりません。", "enrollment_id", model.ErrNotFound)
	}
	if err := checkLearner(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// checkLearner は認証済み学習者がいる場合、受講登録の本人であることを確認します
func checkLearner(ctx context.Context, enrollment *model.Enrollment) error {
	learnerID, ok := middleware.LearnerIDFromContext(ctx)
	if !ok {
		return nil
	}
	if learnerID != enrollment.LearnerID {
		return model.NewAppError(codeForbidden, "この受講登録にはアクセスできません。", "enrollment_id", model.ErrForbidden)
	}
	return nil
}

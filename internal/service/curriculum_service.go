//go:generate mockery --name CurriculumService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"sort"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// CurriculumService はコースのモジュール・レッスンを1本の順序に平坦化し、前後のレッスンを解決します。
// 読み取り専用で、並行に何度呼んでも安全です。
type CurriculumService interface {
	// CourseTree はモジュール・レッスン付きのコースを返します (キャッシュ経由)
	CourseTree(ctx context.Context, courseID uuid.UUID) (*model.Course, error)
	GetSequence(ctx context.Context, courseID uuid.UUID) ([]model.SequenceEntry, error)
	// GetNeighbors は lessonID の前後を返します。moduleID が nil の場合はシーケンスからモジュールを解決します。
	GetNeighbors(ctx context.Context, courseID uuid.UUID, moduleID *uuid.UUID, lessonID uuid.UUID) (*model.LessonNeighbors, error)
}

type curriculumService struct {
	db    *gorm.DB
	repo  repository.CurriculumRepository
	cache repository.CurriculumCache
	sf    singleflight.Group
}

func NewCurriculumService(db *gorm.DB, repo repository.CurriculumRepository, cache repository.CurriculumCache) CurriculumService {
	if cache == nil {
		cache = repository.NewNopCurriculumCache()
	}
	return &curriculumService{
		db:    db,
		repo:  repo,
		cache: cache,
	}
}

func (s *curriculumService) CourseTree(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	logger := middleware.GetLogger(ctx).With("course_id", courseID)

	course, err := s.cache.GetCourseTree(ctx, courseID)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		// キャッシュ障害時はDBから読む
		logger.Warn("Curriculum cache read failed, falling back to database", "error", err)
	}

	// 共有の読み込みは呼び出し元のキャンセルから切り離す。各呼び出し元は自分の ctx の終了で待機をやめる。
	loadCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(courseID.String(), func() (any, error) {
		course, err := s.repo.FindCourseTree(loadCtx, s.db, courseID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetCourseTree(loadCtx, course); err != nil {
			logger.Warn("Failed to store course tree in cache", "error", err)
		}
		return course, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		logger.Warn("Course tree load abandoned", "error", ctx.Err())
		return nil, model.NewAppError(codeInternal, "コース構成の取得に失敗しました。", "", ctx.Err())
	case res = <-ch:
	}
	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, courseNotFound()
		}
		logger.Error("Failed to load course tree", "error", err)
		return nil, wrapRepoError(err, codeCourseNotFound, "コースが見つかりません。", "コース構成の取得に失敗しました。")
	}
	return v.(*model.Course), nil
}

func (s *curriculumService) GetSequence(ctx context.Context, courseID uuid.UUID) ([]model.SequenceEntry, error) {
	course, err := s.CourseTree(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return FlattenCourse(course), nil
}

func (s *curriculumService) GetNeighbors(ctx context.Context, courseID uuid.UUID, moduleID *uuid.UUID, lessonID uuid.UUID) (*model.LessonNeighbors, error) {
	course, err := s.CourseTree(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return ResolveNeighbors(course, moduleID, lessonID)
}

// FlattenCourse はモジュールを position 昇順、各モジュール内のレッスンを position 昇順に並べた
// 1本のシーケンスを返します。position が同じ場合は ID 順。レッスンの無いモジュールは現れません。
func FlattenCourse(course *model.Course) []model.SequenceEntry {
	modules := make([]model.Module, len(course.Modules))
	copy(modules, course.Modules)
	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Position != modules[j].Position {
			return modules[i].Position < modules[j].Position
		}
		return modules[i].ModuleID.String() < modules[j].ModuleID.String()
	})

	seq := make([]model.SequenceEntry, 0)
	for _, m := range modules {
		lessons := make([]model.Lesson, len(m.Lessons))
		copy(lessons, m.Lessons)
		sort.SliceStable(lessons, func(i, j int) bool {
			if lessons[i].Position != lessons[j].Position {
				return lessons[i].Position < lessons[j].Position
			}
			return lessons[i].LessonID.String() < lessons[j].LessonID.String()
		})
		for _, l := range lessons {
			seq = append(seq, model.SequenceEntry{
				ModuleID:    m.ModuleID,
				LessonID:    l.LessonID,
				ModuleTitle: m.Title,
				LessonTitle: l.Title,
				Index:       len(seq),
			})
		}
	}
	return seq
}

// ResolveNeighbors はシーケンス上の前後のレッスンを返します。端では nil。
func ResolveNeighbors(course *model.Course, moduleID *uuid.UUID, lessonID uuid.UUID) (*model.LessonNeighbors, error) {
	if moduleID != nil && !courseHasModule(course, *moduleID) {
		return nil, model.NewAppError(codeModuleNotFound, "モジュールがこのコースに存在しません。", "module_id", model.ErrNotFound)
	}

	seq := FlattenCourse(course)
	idx := -1
	for i := range seq {
		if seq[i].LessonID == lessonID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, model.NewAppError(codeLessonNotFound, "レッスンがこのコースに存在しません。", "lesson_id", model.ErrNotFound)
	}
	if moduleID != nil && seq[idx].ModuleID != *moduleID {
		return nil, model.NewAppError(codeLessonNotFound, "レッスンがこのモジュールに存在しません。", "lesson_id", model.ErrNotFound)
	}

	n := &model.LessonNeighbors{Current: seq[idx]}
	if idx > 0 {
		prev := seq[idx-1]
		n.Previous = &prev
	}
	if idx < len(seq)-1 {
		next := seq[idx+1]
		n.Next = &next
	}
	return n, nil
}

func courseHasModule(course *model.Course, moduleID uuid.UUID) bool {
	for _, m := range course.Modules {
		if m.ModuleID == moduleID {
			return true
		}
	}
	return false
}

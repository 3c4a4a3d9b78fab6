// internal/repository/progress_repository.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	// Upsert は (enrollment_id, lesson_id) をキーに進捗を書き込みます。
	// completed は後退せず、completed_at は最初の値が残ります。
	Upsert(ctx context.Context, tx *gorm.DB, progress *model.LessonProgress) error
	FindByEnrollmentAndLesson(ctx context.Context, db *gorm.DB, enrollmentID, lessonID uuid.UUID) (*model.LessonProgress, error)
	FindByEnrollment(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]*model.LessonProgress, error)
}

type gormProgressRepository struct {
	// DB接続はService層から渡される想定
}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) Upsert(ctx context.Context, tx *gorm.DB, progress *model.LessonProgress) error {
	logger := middleware.GetLogger(ctx)

	// 同時実行でも収束するよう、1文の INSERT ... ON CONFLICT で更新する
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "enrollment_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status": gorm.Expr(
				"CASE WHEN lesson_progress.status = ? THEN lesson_progress.status ELSE excluded.status END",
				string(model.LessonCompleted),
			),
			"completed_at": gorm.Expr("COALESCE(lesson_progress.completed_at, excluded.completed_at)"),
			"updated_at":   gorm.Expr("excluded.updated_at"),
		}),
	}).Create(progress)
	if result.Error != nil {
		logger.Error(
			"Error upserting lesson progress in DB",
			"error", result.Error,
			"enrollment_id", progress.EnrollmentID.String(),
			"lesson_id", progress.LessonID.String(),
		)
		return fmt.Errorf("gormProgressRepository.Upsert: %w", result.Error)
	}
	return nil
}

func (r *gormProgressRepository) FindByEnrollmentAndLesson(ctx context.Context, db *gorm.DB, enrollmentID, lessonID uuid.UUID) (*model.LessonProgress, error) {
	logger := middleware.GetLogger(ctx)
	var progress model.LessonProgress

	result := db.WithContext(ctx).
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding lesson progress in DB", "error", result.Error, "enrollment_id", enrollmentID.String(), "lesson_id", lessonID.String())
		return nil, fmt.Errorf("gormProgressRepository.FindByEnrollmentAndLesson: %w", result.Error)
	}
	return &progress, nil
}

func (r *gormProgressRepository) FindByEnrollment(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]*model.LessonProgress, error) {
	logger := middleware.GetLogger(ctx)
	var progresses []*model.LessonProgress

	result := db.WithContext(ctx).Where("enrollment_id = ?", enrollmentID).Find(&progresses)
	if result.Error != nil {
		logger.Error("Error listing lesson progress in DB", "error", result.Error, "enrollment_id", enrollmentID.String())
		return nil, fmt.Errorf("gormProgressRepository.FindByEnrollment: %w", result.Error)
	}
	return progresses, nil
}

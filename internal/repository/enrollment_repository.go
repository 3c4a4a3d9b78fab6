package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*model.Enrollment, error)
	// MarkCompleted は completed_at が未設定の場合のみ設定します。設定した場合 true。
	MarkCompleted(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID, at time.Time) (bool, error)
}

type gormEnrollmentRepository struct{}

func NewGormEnrollmentRepository() EnrollmentRepository {
	return &gormEnrollmentRepository{}
}

func (r *gormEnrollmentRepository) FindByID(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	logger := middleware.GetLogger(ctx)
	var enrollment model.Enrollment

	result := db.WithContext(ctx).Where("enrollment_id = ?", enrollmentID).First(&enrollment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding enrollment by ID in DB", "error", result.Error, "enrollment_id", enrollmentID.String())
		return nil, fmt.Errorf("gormEnrollmentRepository.FindByID: %w", result.Error)
	}
	return &enrollment, nil
}

func (r *gormEnrollmentRepository) MarkCompleted(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID, at time.Time) (bool, error) {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ? AND completed_at IS NULL", enrollmentID).
		Updates(map[string]any{"completed_at": at, "updated_at": at})
	if result.Error != nil {
		logger.Error("Error marking enrollment completed in DB", "error", result.Error, "enrollment_id", enrollmentID.String())
		return false, fmt.Errorf("gormEnrollmentRepository.MarkCompleted: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

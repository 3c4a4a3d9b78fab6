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

type AttemptRepository interface {
	// Create は受験を作成します。進行中の受験が既にある場合などユニーク制約違反は ErrConflict。
	Create(ctx context.Context, tx *gorm.DB, attempt *model.QuizAttempt) error
	FindByID(ctx context.Context, db *gorm.DB, attemptID uuid.UUID) (*model.QuizAttempt, error)
	FindInProgress(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (*model.QuizAttempt, error)
	CountAll(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (int64, error)
	CountSubmitted(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (int64, error)
	// FindFirstSubmitted / FindLatestSubmitted は提出時刻順で最初 / 最後の提出済み受験を返します
	FindFirstSubmitted(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (*model.QuizAttempt, error)
	FindLatestSubmitted(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (*model.QuizAttempt, error)
	FindByEnrollmentAndQuiz(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) ([]*model.QuizAttempt, error)
	// MarkSubmitted は in_progress の受験のみを submitted に更新します。更新できた場合 true。
	MarkSubmitted(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, score float64, passed bool, at time.Time) (bool, error)
	CreateAnswers(ctx context.Context, tx *gorm.DB, answers []model.AttemptAnswer) error
}

type gormAttemptRepository struct{}

func NewGormAttemptRepository() AttemptRepository {
	return &gormAttemptRepository{}
}

func (r *gormAttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *model.QuizAttempt) error {
	logger := middleware.GetLogger(ctx)

	result := tx.WithContext(ctx).Create(attempt)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Warn(
				"Duplicate key error on create attempt",
				"error", result.Error,
				"enrollment_id", attempt.EnrollmentID.String(),
				"quiz_id", attempt.QuizID.String(),
				"attempt_number", attempt.AttemptNumber,
			)
			return model.ErrConflict
		}
		logger.Error("Error creating attempt in DB", "error", result.Error, "quiz_id", attempt.QuizID.String())
		return fmt.Errorf("gormAttemptRepository.Create: %w", result.Error)
	}
	return nil
}

func (r *gormAttemptRepository) FindByID(ctx context.Context, db *gorm.DB, attemptID uuid.UUID) (*model.QuizAttempt, error) {
	logger := middleware.GetLogger(ctx)
	var attempt model.QuizAttempt

	result := db.WithContext(ctx).Preload("Answers").Where("attempt_id = ?", attemptID).First(&attempt)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding attempt by ID in DB", "error", result.Error, "attempt_id", attemptID.String())
		return nil, fmt.Errorf("gormAttemptRepository.FindByID: %w", result.Error)
	}
	return &attempt, nil
}

func (r *gormAttemptRepository) FindInProgress(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (*model.QuizAttempt, error) {
	return r.findOne(ctx, "FindInProgress",
		db.WithContext(ctx).
			Where("enrollment_id = ? AND quiz_id = ? AND status = ?", enrollmentID, quizID, model.AttemptInProgress))
}

func (r *gormAttemptRepository) FindFirstSubmitted(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (*model.QuizAttempt, error) {
	return r.findOne(ctx, "FindFirstSubmitted",
		db.WithContext(ctx).
			Where("enrollment_id = ? AND quiz_id = ? AND status = ?", enrollmentID, quizID, model.AttemptSubmitted).
			Order("submitted_at ASC").Order("attempt_number ASC"))
}

func (r *gormAttemptRepository) FindLatestSubmitted(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (*model.QuizAttempt, error) {
	return r.findOne(ctx, "FindLatestSubmitted",
		db.WithContext(ctx).
			Where("enrollment_id = ? AND quiz_id = ? AND status = ?", enrollmentID, quizID, model.AttemptSubmitted).
			Order("submitted_at DESC").Order("attempt_number DESC"))
}

func (r *gormAttemptRepository) findOne(ctx context.Context, op string, query *gorm.DB) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	result := query.Limit(1).Find(&attempt)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error finding attempt in DB", "error", result.Error, "op", op)
		return nil, fmt.Errorf("gormAttemptRepository.%s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, model.ErrNotFound
	}
	return &attempt, nil
}

func (r *gormAttemptRepository) CountAll(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.QuizAttempt{}).
		Where("enrollment_id = ? AND quiz_id = ?", enrollmentID, quizID).
		Count(&count)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error counting attempts in DB", "error", result.Error, "quiz_id", quizID.String())
		return 0, fmt.Errorf("gormAttemptRepository.CountAll: %w", result.Error)
	}
	return count, nil
}

func (r *gormAttemptRepository) CountSubmitted(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.QuizAttempt{}).
		Where("enrollment_id = ? AND quiz_id = ? AND status = ?", enrollmentID, quizID, model.AttemptSubmitted).
		Count(&count)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error counting submitted attempts in DB", "error", result.Error, "quiz_id", quizID.String())
		return 0, fmt.Errorf("gormAttemptRepository.CountSubmitted: %w", result.Error)
	}
	return count, nil
}

func (r *gormAttemptRepository) FindByEnrollmentAndQuiz(ctx context.Context, db *gorm.DB, enrollmentID, quizID uuid.UUID) ([]*model.QuizAttempt, error) {
	var attempts []*model.QuizAttempt
	result := db.WithContext(ctx).
		Where("enrollment_id = ? AND quiz_id = ?", enrollmentID, quizID).
		Order("attempt_number ASC").
		Find(&attempts)
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error listing attempts in DB", "error", result.Error, "quiz_id", quizID.String())
		return nil, fmt.Errorf("gormAttemptRepository.FindByEnrollmentAndQuiz: %w", result.Error)
	}
	return attempts, nil
}

func (r *gormAttemptRepository) MarkSubmitted(ctx context.Context, tx *gorm.DB, attemptID uuid.UUID, score float64, passed bool, at time.Time) (bool, error) {
	result := tx.WithContext(ctx).
		Model(&model.QuizAttempt{}).
		Where("attempt_id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Updates(map[string]any{
			"status":       model.AttemptSubmitted,
			"score":        score,
			"passed":       passed,
			"submitted_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		middleware.GetLogger(ctx).Error("Error submitting attempt in DB", "error", result.Error, "attempt_id", attemptID.String())
		return false, fmt.Errorf("gormAttemptRepository.MarkSubmitted: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormAttemptRepository) CreateAnswers(ctx context.Context, tx *gorm.DB, answers []model.AttemptAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Create(&answers)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return model.ErrConflict
		}
		middleware.GetLogger(ctx).Error("Error creating attempt answers in DB", "error", result.Error, "count", len(answers))
		return fmt.Errorf("gormAttemptRepository.CreateAnswers: %w", result.Error)
	}
	return nil
}

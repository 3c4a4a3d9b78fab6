package repository

import (
	"context"
	"errors"
	"fmt"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizRepository は小テストの定義 (設問・選択肢) を読み取ります
type QuizRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, quizID uuid.UUID) (*model.Quiz, error)
	// FindWithQuestions は設問と選択肢を position 順で Preload します
	FindWithQuestions(ctx context.Context, db *gorm.DB, quizID uuid.UUID) (*model.Quiz, error)
}

type gormQuizRepository struct{}

func NewGormQuizRepository() QuizRepository {
	return &gormQuizRepository{}
}

func (r *gormQuizRepository) FindByID(ctx context.Context, db *gorm.DB, quizID uuid.UUID) (*model.Quiz, error) {
	logger := middleware.GetLogger(ctx)
	var quiz model.Quiz

	result := db.WithContext(ctx).Where("quiz_id = ?", quizID).First(&quiz)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding quiz by ID in DB", "error", result.Error, "quiz_id", quizID.String())
		return nil, fmt.Errorf("gormQuizRepository.FindByID: %w", result.Error)
	}
	return &quiz, nil
}

func (r *gormQuizRepository) FindWithQuestions(ctx context.Context, db *gorm.DB, quizID uuid.UUID) (*model.Quiz, error) {
	logger := middleware.GetLogger(ctx)
	var quiz model.Quiz

	result := db.WithContext(ctx).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC").Order("question_id ASC")
		}).
		Preload("Questions.Options", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC").Order("option_id ASC")
		}).
		Where("quiz_id = ?", quizID).
		First(&quiz)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error loading quiz questions in DB", "error", result.Error, "quiz_id", quizID.String())
		return nil, fmt.Errorf("gormQuizRepository.FindWithQuestions: %w", result.Error)
	}
	return &quiz, nil
}

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

// CurriculumRepository はコース構造 (コース・モジュール・レッスン) を読み取ります。
// 構造の更新は外部のオーサリング側の責務なので読み取り専用です。
type CurriculumRepository interface {
	FindCourseByID(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (*model.Course, error)
	// FindCourseTree はモジュールとレッスンを position 順で Preload したコースを返します
	FindCourseTree(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (*model.Course, error)
	FindLessonByID(ctx context.Context, db *gorm.DB, lessonID uuid.UUID) (*model.Lesson, error)
	FindModuleByID(ctx context.Context, db *gorm.DB, moduleID uuid.UUID) (*model.Module, error)
}

type gormCurriculumRepository struct{}

func NewGormCurriculumRepository() CurriculumRepository {
	return &gormCurriculumRepository{}
}

func (r *gormCurriculumRepository) FindCourseByID(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (*model.Course, error) {
	logger := middleware.GetLogger(ctx)
	var course model.Course

	result := db.WithContext(ctx).Where("course_id = ?", courseID).First(&course)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding course by ID in DB", "error", result.Error, "course_id", courseID.String())
		return nil, fmt.Errorf("gormCurriculumRepository.FindCourseByID: %w", result.Error)
	}
	return &course, nil
}

func (r *gormCurriculumRepository) FindCourseTree(ctx context.Context, db *gorm.DB, courseID uuid.UUID) (*model.Course, error) {
	logger := middleware.GetLogger(ctx)
	var course model.Course

	result := db.WithContext(ctx).
		Preload("Modules", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC").Order("module_id ASC")
		}).
		Preload("Modules.Lessons", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC").Order("lesson_id ASC")
		}).
		Where("course_id = ?", courseID).
		First(&course)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error loading course tree in DB", "error", result.Error, "course_id", courseID.String())
		return nil, fmt.Errorf("gormCurriculumRepository.FindCourseTree: %w", result.Error)
	}
	return &course, nil
}

func (r *gormCurriculumRepository) FindLessonByID(ctx context.Context, db *gorm.DB, lessonID uuid.UUID) (*model.Lesson, error) {
	logger := middleware.GetLogger(ctx)
	var lesson model.Lesson

	result := db.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&lesson)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding lesson by ID in DB", "error", result.Error, "lesson_id", lessonID.String())
		return nil, fmt.Errorf("gormCurriculumRepository.FindLessonByID: %w", result.Error)
	}
	return &lesson, nil
}

func (r *gormCurriculumRepository) FindModuleByID(ctx context.Context, db *gorm.DB, moduleID uuid.UUID) (*model.Module, error) {
	logger := middleware.GetLogger(ctx)
	var module model.Module

	result := db.WithContext(ctx).Where("module_id = ?", moduleID).First(&module)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding module by ID in DB", "error", result.Error, "module_id", moduleID.String())
		return nil, fmt.Errorf("gormCurriculumRepository.FindModuleByID: %w", result.Error)
	}
	return &module, nil
}

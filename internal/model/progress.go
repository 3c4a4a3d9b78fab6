// internal/model/progress.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type LessonStatus string

const (
	LessonNotStarted LessonStatus = "not_started"
	LessonInProgress LessonStatus = "in_progress"
	LessonCompleted  LessonStatus = "completed"
)

// rank は状態の順序。completed からの後退は起こさない。
func (s LessonStatus) rank() int {
	switch s {
	case LessonInProgress:
		return 1
	case LessonCompleted:
		return 2
	default:
		return 0
	}
}

// Advance は現在の状態に target を適用した結果を返します (後退しない)
func (s LessonStatus) Advance(target LessonStatus) LessonStatus {
	if target.rank() > s.rank() {
		return target
	}
	return s
}

// LessonProgress はレッスン単位の学習進捗を表します
type LessonProgress struct {
	ProgressID   uuid.UUID    `gorm:"type:uuid;primaryKey" json:"progress_id"`
	EnrollmentID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_progress_enrollment_lesson" json:"enrollment_id"`
	LessonID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_progress_enrollment_lesson" json:"lesson_id"`
	Status       LessonStatus `gorm:"type:varchar(16);not null;default:'not_started'" json:"status"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"` // completed への最初の遷移時に一度だけ設定
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// MarkLessonRequest はレッスン進捗更新リクエストのDTO
type MarkLessonRequest struct {
	Status LessonStatus `json:"status" validate:"required,oneof=in_progress completed"`
}

// ModuleProgress はモジュール単位の集計
type ModuleProgress struct {
	ModuleID         uuid.UUID `json:"module_id"`
	CompletedLessons int       `json:"completed_lessons"`
	TotalLessons     int       `json:"total_lessons"`
	Progress         int       `json:"progress"`
}

// CourseProgress はコース全体の進捗レスポンス
type CourseProgress struct {
	EnrollmentID      uuid.UUID         `json:"enrollment_id"`
	CourseID          uuid.UUID         `json:"course_id"`
	OverallProgress   int               `json:"overall_progress"`
	CompletedLessons  int               `json:"completed_lessons"`
	TotalLessons      int               `json:"total_lessons"`
	IsCompleted       bool              `json:"is_completed"`
	PerModuleProgress map[uuid.UUID]int `json:"per_module_progress"`
	Modules           []ModuleProgress  `json:"modules"`
}

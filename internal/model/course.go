// internal/model/course.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Course はコースを表します。構造の編集は外部のオーサリング側で行われ、
// このサービスからは読み取りのみ行います。
type Course struct {
	CourseID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"course_id"`
	Title          string     `gorm:"not null" json:"title"`
	RequirePreTest bool       `gorm:"not null;default:false" json:"require_pre_test"`
	PreTestQuizID  *uuid.UUID `gorm:"type:uuid" json:"pre_test_quiz_id,omitempty"`
	PostTestQuizID *uuid.UUID `gorm:"type:uuid" json:"post_test_quiz_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// 関連 (Preload用)
	Modules []Module `gorm:"foreignKey:CourseID;references:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// Module はコース内のモジュール。Position はコース内で一意。
type Module struct {
	ModuleID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"module_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_module_position" json:"course_id"`
	Title     string    `gorm:"not null" json:"title"`
	Position  int       `gorm:"not null;uniqueIndex:uq_module_position" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lessons []Lesson `gorm:"foreignKey:ModuleID;references:ModuleID" json:"lessons,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// Lesson はモジュール内のレッスン。Content の中身はエンジンからは不透明。
type Lesson struct {
	LessonID  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"lesson_id"`
	ModuleID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_lesson_position" json:"module_id"`
	Title     string         `gorm:"not null" json:"title"`
	Position  int            `gorm:"not null;uniqueIndex:uq_lesson_position" json:"position"`
	Content   datatypes.JSON `json:"content,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// SequenceEntry はコースを平坦化した順序の1要素です
type SequenceEntry struct {
	ModuleID    uuid.UUID `json:"module_id"`
	LessonID    uuid.UUID `json:"lesson_id"`
	ModuleTitle string    `json:"module_title"`
	LessonTitle string    `json:"lesson_title"`
	Index       int       `json:"index"`
}

// LessonNeighbors は前後のレッスン。端では nil になります。
type LessonNeighbors struct {
	Current  SequenceEntry  `json:"current"`
	Previous *SequenceEntry `json:"previous"`
	Next     *SequenceEntry `json:"next"`
}

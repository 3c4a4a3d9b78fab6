// internal/model/enrollment.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment は学習者とコースの紐付け。進捗と受験の状態はすべてこれに属します。
// 作成は外部 (受講登録フロー) で行われます。
type Enrollment struct {
	EnrollmentID uuid.UUID  `gorm:"type:uuid;primaryKey" json:"enrollment_id"`
	LearnerID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_enrollment_learner_course" json:"learner_id"`
	CourseID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_enrollment_learner_course" json:"course_id"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"` // 初めて進捗100%になった時刻 (一度だけ設定)
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

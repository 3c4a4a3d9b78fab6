// internal/model/access.go
package model

import "github.com/google/uuid"

type AccessState string

const (
	AccessLocked   AccessState = "locked"
	AccessUnlocked AccessState = "unlocked"
)

// AccessStatus はコース教材へのアクセス可否 (事前テストによるゲーティング) を表します
type AccessStatus struct {
	EnrollmentID      uuid.UUID   `json:"enrollment_id"`
	CourseID          uuid.UUID   `json:"course_id"`
	State             AccessState `json:"state"`
	PreTestRequired   bool        `json:"pre_test_required"`
	PreTestID         *uuid.UUID  `json:"pre_test_id"`
	PreTestCompleted  bool        `json:"pre_test_completed"`
	PostTestAvailable bool        `json:"post_test_available"`
	PostTestID        *uuid.UUID  `json:"post_test_id"`
	PostTestCompleted bool        `json:"post_test_completed"`
	OverallProgress   int         `json:"overall_progress"`
	CanAccess         bool        `json:"can_access"`
}

type NotReadyReason string

const (
	PreTestIncomplete  NotReadyReason = "preTestIncomplete"
	PostTestIncomplete NotReadyReason = "postTestIncomplete"
)

// TestScore は比較に使った受験のスコア
type TestScore struct {
	QuizID    uuid.UUID `json:"quiz_id"`
	AttemptID uuid.UUID `json:"attempt_id"`
	Score     float64   `json:"score"`
}

// ScoreComparison は事前・事後テストの比較値。
// Improvement は符号付きの差分、ImprovementPercentage は表示用 (0-100 にクランプ)。
type ScoreComparison struct {
	Improvement           float64 `json:"improvement"`
	ImprovementPercentage float64 `json:"improvement_percentage"`
}

// TestComparison は事前・事後テストの比較結果。
// どちらかが未提出の場合は Ready=false となり、Reason で区別します (エラーではない)。
type TestComparison struct {
	EnrollmentID uuid.UUID        `json:"enrollment_id"`
	CourseID     uuid.UUID        `json:"course_id"`
	Ready        bool             `json:"ready"`
	Reason       NotReadyReason   `json:"reason,omitempty"`
	Message      string           `json:"message,omitempty"`
	PreTest      *TestScore       `json:"pre_test,omitempty"`
	PostTest     *TestScore       `json:"post_test,omitempty"`
	Comparison   *ScoreComparison `json:"comparison,omitempty"`
}

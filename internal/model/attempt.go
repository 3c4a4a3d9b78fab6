// internal/model/attempt.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// QuizAttempt は1回分の受験。開始時に設問順をスナップショットし、提出時にのみ更新されます。
// (enrollment_id, quiz_id) ごとに in_progress は1件までで、部分ユニークインデックスで保証します。
type QuizAttempt struct {
	AttemptID     uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"attempt_id"`
	EnrollmentID  uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex:uq_attempt_number;uniqueIndex:uq_attempt_in_progress,where:status = 'in_progress'" json:"enrollment_id"`
	QuizID        uuid.UUID                      `gorm:"type:uuid;not null;uniqueIndex:uq_attempt_number;uniqueIndex:uq_attempt_in_progress,where:status = 'in_progress'" json:"quiz_id"`
	AttemptNumber int                            `gorm:"not null;uniqueIndex:uq_attempt_number" json:"attempt_number"`
	Status        AttemptStatus                  `gorm:"type:varchar(16);not null;default:'in_progress';index" json:"status"`
	QuestionOrder datatypes.JSONSlice[uuid.UUID] `json:"question_order"`
	Score         *float64                       `json:"score,omitempty"`
	Passed        *bool                          `json:"passed,omitempty"`
	StartedAt     time.Time                      `gorm:"not null" json:"started_at"`
	SubmittedAt   *time.Time                     `json:"submitted_at,omitempty"`
	CreatedAt     time.Time                      `json:"created_at"`
	UpdatedAt     time.Time                      `json:"updated_at"`

	Answers []AttemptAnswer `gorm:"foreignKey:AttemptID;references:AttemptID" json:"answers,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// AttemptAnswer は設問ごとの回答と採点結果
type AttemptAnswer struct {
	AnswerID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"answer_id"`
	AttemptID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_answer_attempt_question" json:"attempt_id"`
	QuestionID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_answer_attempt_question" json:"question_id"`
	SelectedOptionID *uuid.UUID `gorm:"type:uuid" json:"selected_option_id,omitempty"`
	TextAnswer       *string    `json:"text_answer,omitempty"`
	IsCorrect        *bool      `json:"is_correct,omitempty"` // 自由記述は nil
	PointsEarned     int        `gorm:"not null;default:0" json:"points_earned"`
	PointsPossible   int        `gorm:"not null;default:0" json:"points_possible"`
	// ManualPoints は自由記述の手動採点用。設定されていれば自動採点の0点を置き換える。
	ManualPoints *int      `json:"manual_points,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}

// --- リクエスト/レスポンスDTO ---

type StartAttemptRequest struct {
	EnrollmentID uuid.UUID `json:"enrollment_id" validate:"required"`
}

type SubmittedAnswer struct {
	QuestionID       uuid.UUID  `json:"question_id" validate:"required"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id,omitempty"`
	TextAnswer       *string    `json:"text_answer,omitempty"`
}

type SubmitAttemptRequest struct {
	Answers []SubmittedAnswer `json:"answers" validate:"dive"`
}

// OptionView は受験中に返す選択肢 (正解フラグを含まない)
type OptionView struct {
	OptionID uuid.UUID `json:"option_id"`
	Text     string    `json:"text"`
}

// QuestionView は受験中に返す設問 (正解・解説を含まない)
type QuestionView struct {
	QuestionID uuid.UUID    `json:"question_id"`
	Type       QuestionType `json:"type"`
	Prompt     string       `json:"prompt"`
	Points     int          `json:"points"`
	Options    []OptionView `json:"options,omitempty"`
}

// AttemptView は開始時・再読み込み時のレスポンス
type AttemptView struct {
	AttemptID     uuid.UUID      `json:"attempt_id"`
	QuizID        uuid.UUID      `json:"quiz_id"`
	EnrollmentID  uuid.UUID      `json:"enrollment_id"`
	AttemptNumber int            `json:"attempt_number"`
	Status        AttemptStatus  `json:"status"`
	StartedAt     time.Time      `json:"started_at"`
	Questions     []QuestionView `json:"questions"`
}

// QuestionResult は提出後の設問ごとの結果
type QuestionResult struct {
	QuestionID       uuid.UUID    `json:"question_id"`
	Type             QuestionType `json:"type"`
	Prompt           string       `json:"prompt"`
	Explanation      string       `json:"explanation,omitempty"`
	SelectedOptionID *uuid.UUID   `json:"selected_option_id,omitempty"`
	CorrectOptionID  *uuid.UUID   `json:"correct_option_id,omitempty"`
	TextAnswer       *string      `json:"text_answer,omitempty"`
	IsCorrect        *bool        `json:"is_correct,omitempty"`
	PointsEarned     int          `json:"points_earned"`
	PointsPossible   int          `json:"points_possible"`
}

// AttemptResult は提出後の採点結果
type AttemptResult struct {
	AttemptID      uuid.UUID        `json:"attempt_id"`
	QuizID         uuid.UUID        `json:"quiz_id"`
	EnrollmentID   uuid.UUID        `json:"enrollment_id"`
	AttemptNumber  int              `json:"attempt_number"`
	Status         AttemptStatus    `json:"status"`
	Score          float64          `json:"score"`
	Passed         bool             `json:"passed"`
	PassingScore   float64          `json:"passing_score"`
	PointsEarned   int              `json:"points_earned"`
	PointsPossible int              `json:"points_possible"`
	SubmittedAt    time.Time        `json:"submitted_at"`
	Questions      []QuestionResult `json:"questions"`
}

// AttemptDetail は GET /attempts/{id} のレスポンス。状態によってどちらか一方のみ設定。
type AttemptDetail struct {
	Status  AttemptStatus  `json:"status"`
	Attempt *AttemptView   `json:"attempt,omitempty"`
	Result  *AttemptResult `json:"result,omitempty"`
}

// AttemptSummary は受験履歴の1行
type AttemptSummary struct {
	AttemptID     uuid.UUID     `json:"attempt_id"`
	AttemptNumber int           `json:"attempt_number"`
	Status        AttemptStatus `json:"status"`
	Score         *float64      `json:"score,omitempty"`
	Passed        *bool         `json:"passed,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	SubmittedAt   *time.Time    `json:"submitted_at,omitempty"`
}

// internal/model/quiz.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
)

// Quiz はモジュールまたはコースに属する小テスト。
// コースの事前テスト・事後テストも Quiz として表現します。
type Quiz struct {
	QuizID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"quiz_id"`
	CourseID         *uuid.UUID `gorm:"type:uuid;index" json:"course_id,omitempty"`
	ModuleID         *uuid.UUID `gorm:"type:uuid;index" json:"module_id,omitempty"`
	Title            string     `gorm:"not null" json:"title"`
	PassingScore     float64    `gorm:"not null;default:0" json:"passing_score"` // 0-100
	MaxAttempts      *int       `json:"max_attempts,omitempty"`                  // nil は無制限
	ShuffleQuestions bool       `gorm:"not null;default:false" json:"shuffle_questions"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Questions []Question `gorm:"foreignKey:QuizID;references:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Question struct {
	QuestionID  uuid.UUID    `gorm:"type:uuid;primaryKey" json:"question_id"`
	QuizID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Type        QuestionType `gorm:"type:varchar(32);not null" json:"type"`
	Prompt      string       `gorm:"not null" json:"prompt"`
	Explanation string       `json:"explanation,omitempty"`
	Points      int          `gorm:"not null;default:1" json:"points"`
	Position    int          `gorm:"not null" json:"position"`

	Options []Option `gorm:"foreignKey:QuestionID;references:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

type Option struct {
	OptionID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"option_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string    `gorm:"not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	Position   int       `gorm:"not null" json:"position"`
}

func (Option) TableName() string {
	return "options"
}

// --- 設問の種類ごとの表現 ---

// QuestionVariant は設問タイプごとに振る舞いが異なる設問の表現です。
// ChoiceQuestion (multiple_choice / true_false) と FreeTextQuestion (short_answer / essay) のどちらか。
type QuestionVariant interface {
	isQuestionVariant()
}

// ChoiceQuestion は選択肢を持つ設問
type ChoiceQuestion struct {
	Question *Question
	Options  []Option
}

// FreeTextQuestion は自由記述の設問 (自動採点しない)
type FreeTextQuestion struct {
	Question *Question
}

func (ChoiceQuestion) isQuestionVariant()   {}
func (FreeTextQuestion) isQuestionVariant() {}

// Variant は Type に応じた設問表現を返します
func (q *Question) Variant() (QuestionVariant, error) {
	switch q.Type {
	case QuestionMultipleChoice, QuestionTrueFalse:
		return ChoiceQuestion{Question: q, Options: q.Options}, nil
	case QuestionShortAnswer, QuestionEssay:
		return FreeTextQuestion{Question: q}, nil
	default:
		return nil, fmt.Errorf("question %s has unknown type %q: %w", q.QuestionID, q.Type, ErrInvalidQuestion)
	}
}

// CorrectOption は唯一の正解選択肢を返します。
// 正解が0件または複数件、true_false の選択肢数が2でない場合は ErrInvalidQuestion。
func (c ChoiceQuestion) CorrectOption() (*Option, error) {
	if c.Question.Type == QuestionTrueFalse && len(c.Options) != 2 {
		return nil, fmt.Errorf("true_false question %s has %d options: %w", c.Question.QuestionID, len(c.Options), ErrInvalidQuestion)
	}
	if c.Question.Type == QuestionMultipleChoice && len(c.Options) < 2 {
		return nil, fmt.Errorf("multiple_choice question %s has %d options: %w", c.Question.QuestionID, len(c.Options), ErrInvalidQuestion)
	}
	var correct *Option
	for i := range c.Options {
		if !c.Options[i].IsCorrect {
			continue
		}
		if correct != nil {
			return nil, fmt.Errorf("question %s has more than one correct option: %w", c.Question.QuestionID, ErrInvalidQuestion)
		}
		correct = &c.Options[i]
	}
	if correct == nil {
		return nil, fmt.Errorf("question %s has no correct option: %w", c.Question.QuestionID, ErrInvalidQuestion)
	}
	return correct, nil
}

// HasOption は選択肢IDが設問に属するか
func (c ChoiceQuestion) HasOption(optionID uuid.UUID) bool {
	for _, o := range c.Options {
		if o.OptionID == optionID {
			return true
		}
	}
	return false
}

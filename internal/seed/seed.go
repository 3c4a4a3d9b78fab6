// Package seed はYAMLで書かれたカリキュラム定義 (コース・モジュール・レッスン・小テスト・受講登録) を
// データベースへ投入します。開発環境の初期データとテストのフィクスチャに使います。
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go_4_learn_progress/internal/model"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Fixture struct {
	Courses []CourseFixture `yaml:"courses"`
}

type CourseFixture struct {
	ID             string              `yaml:"id"`
	Title          string              `yaml:"title"`
	RequirePreTest bool                `yaml:"require_pre_test"`
	PreTest        *QuizFixture        `yaml:"pre_test"`
	PostTest       *QuizFixture        `yaml:"post_test"`
	Modules        []ModuleFixture     `yaml:"modules"`
	Enrollments    []EnrollmentFixture `yaml:"enrollments"`
}

type ModuleFixture struct {
	ID       string          `yaml:"id"`
	Title    string          `yaml:"title"`
	Position int             `yaml:"position"`
	Lessons  []LessonFixture `yaml:"lessons"`
	Quizzes  []QuizFixture   `yaml:"quizzes"`
}

type LessonFixture struct {
	ID       string         `yaml:"id"`
	Title    string         `yaml:"title"`
	Position int            `yaml:"position"`
	Content  map[string]any `yaml:"content"`
}

type QuizFixture struct {
	ID           string            `yaml:"id"`
	Title        string            `yaml:"title"`
	PassingScore float64           `yaml:"passing_score"`
	MaxAttempts  *int              `yaml:"max_attempts"`
	Shuffle      bool              `yaml:"shuffle"`
	Questions    []QuestionFixture `yaml:"questions"`
}

type QuestionFixture struct {
	ID          string          `yaml:"id"`
	Type        string          `yaml:"type"`
	Prompt      string          `yaml:"prompt"`
	Explanation string          `yaml:"explanation"`
	Points      int             `yaml:"points"`
	Position    int             `yaml:"position"`
	Options     []OptionFixture `yaml:"options"`
}

type OptionFixture struct {
	ID       string `yaml:"id"`
	Text     string `yaml:"text"`
	Correct  bool   `yaml:"correct"`
	Position int    `yaml:"position"`
}

type EnrollmentFixture struct {
	ID        string `yaml:"id"`
	LearnerID string `yaml:"learner_id"`
}

// Dataset は Fixture から組み立てたモデル群です。ID は未指定なら採番されます。
type Dataset struct {
	Courses     []*model.Course
	Quizzes     []*model.Quiz
	Enrollments []*model.Enrollment
}

// Parse はYAMLを読み込みます
func Parse(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: decode yaml: %w", err)
	}
	return &f, nil
}

// ParseFile はファイルからYAMLを読み込みます
func ParseFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: open %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file)
}

// Build は Fixture をモデルに変換します
func Build(f *Fixture) (*Dataset, error) {
	ds := &Dataset{}
	for ci := range f.Courses {
		cf := &f.Courses[ci]
		courseID, err := idOrNew(cf.ID)
		if err != nil {
			return nil, fmt.Errorf("seed: course %q: %w", cf.Title, err)
		}
		course := &model.Course{
			CourseID:       courseID,
			Title:          cf.Title,
			RequirePreTest: cf.RequirePreTest,
		}

		if cf.PreTest != nil {
			quiz, err := buildQuiz(cf.PreTest)
			if err != nil {
				return nil, err
			}
			quiz.CourseID = &courseID
			course.PreTestQuizID = &quiz.QuizID
			ds.Quizzes = append(ds.Quizzes, quiz)
		}
		if cf.PostTest != nil {
			quiz, err := buildQuiz(cf.PostTest)
			if err != nil {
				return nil, err
			}
			quiz.CourseID = &courseID
			course.PostTestQuizID = &quiz.QuizID
			ds.Quizzes = append(ds.Quizzes, quiz)
		}

		for mi, mf := range cf.Modules {
			moduleID, err := idOrNew(mf.ID)
			if err != nil {
				return nil, fmt.Errorf("seed: module %q: %w", mf.Title, err)
			}
			module := model.Module{
				ModuleID: moduleID,
				CourseID: courseID,
				Title:    mf.Title,
				Position: positionOr(mf.Position, mi),
			}
			for li, lf := range mf.Lessons {
				lessonID, err := idOrNew(lf.ID)
				if err != nil {
					return nil, fmt.Errorf("seed: lesson %q: %w", lf.Title, err)
				}
				lesson := model.Lesson{
					LessonID: lessonID,
					ModuleID: moduleID,
					Title:    lf.Title,
					Position: positionOr(lf.Position, li),
				}
				if lf.Content != nil {
					raw, err := json.Marshal(lf.Content)
					if err != nil {
						return nil, fmt.Errorf("seed: lesson %q content: %w", lf.Title, err)
					}
					lesson.Content = raw
				}
				module.Lessons = append(module.Lessons, lesson)
			}
			for qi := range mf.Quizzes {
				quiz, err := buildQuiz(&mf.Quizzes[qi])
				if err != nil {
					return nil, err
				}
				quiz.ModuleID = &moduleID
				ds.Quizzes = append(ds.Quizzes, quiz)
			}
			course.Modules = append(course.Modules, module)
		}

		for _, ef := range cf.Enrollments {
			enrollmentID, err := idOrNew(ef.ID)
			if err != nil {
				return nil, fmt.Errorf("seed: enrollment: %w", err)
			}
			learnerID, err := idOrNew(ef.LearnerID)
			if err != nil {
				return nil, fmt.Errorf("seed: enrollment learner: %w", err)
			}
			ds.Enrollments = append(ds.Enrollments, &model.Enrollment{
				EnrollmentID: enrollmentID,
				LearnerID:    learnerID,
				CourseID:     courseID,
			})
		}
		ds.Courses = append(ds.Courses, course)
	}
	return ds, nil
}

func buildQuiz(qf *QuizFixture) (*model.Quiz, error) {
	quizID, err := idOrNew(qf.ID)
	if err != nil {
		return nil, fmt.Errorf("seed: quiz %q: %w", qf.Title, err)
	}
	quiz := &model.Quiz{
		QuizID:           quizID,
		Title:            qf.Title,
		PassingScore:     qf.PassingScore,
		MaxAttempts:      qf.MaxAttempts,
		ShuffleQuestions: qf.Shuffle,
	}
	for i, qq := range qf.Questions {
		questionID, err := idOrNew(qq.ID)
		if err != nil {
			return nil, fmt.Errorf("seed: question %q: %w", qq.Prompt, err)
		}
		points := qq.Points
		if points < 1 {
			points = 1
		}
		question := model.Question{
			QuestionID:  questionID,
			QuizID:      quizID,
			Type:        model.QuestionType(qq.Type),
			Prompt:      qq.Prompt,
			Explanation: qq.Explanation,
			Points:      points,
			Position:    positionOr(qq.Position, i),
		}
		for oi, of := range qq.Options {
			optionID, err := idOrNew(of.ID)
			if err != nil {
				return nil, fmt.Errorf("seed: option %q: %w", of.Text, err)
			}
			question.Options = append(question.Options, model.Option{
				OptionID:   optionID,
				QuestionID: questionID,
				Text:       of.Text,
				IsCorrect:  of.Correct,
				Position:   positionOr(of.Position, oi),
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

// Apply はデータセットを1トランザクションで投入します。既存の行は上書きします。
func Apply(ctx context.Context, db *gorm.DB, ds *Dataset) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Session で複数回の Create に使えるようにする
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true}).Session(&gorm.Session{})
		for _, c := range ds.Courses {
			if err := upsert.Create(c).Error; err != nil {
				return fmt.Errorf("seed: course %s: %w", c.CourseID, err)
			}
		}
		for _, q := range ds.Quizzes {
			if err := upsert.Create(q).Error; err != nil {
				return fmt.Errorf("seed: quiz %s: %w", q.QuizID, err)
			}
		}
		for _, e := range ds.Enrollments {
			if err := upsert.Create(e).Error; err != nil {
				return fmt.Errorf("seed: enrollment %s: %w", e.EnrollmentID, err)
			}
		}
		return nil
	})
}

// Load は Parse → Build → Apply をまとめて行います
func Load(ctx context.Context, db *gorm.DB, r io.Reader) (*Dataset, error) {
	f, err := Parse(r)
	if err != nil {
		return nil, err
	}
	ds, err := Build(f)
	if err != nil {
		return nil, err
	}
	if err := Apply(ctx, db, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func idOrNew(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(s)
}

// positionOr は未指定 (0) のとき並び順の番号 (1始まり) を使います
func positionOr(pos, index int) int {
	if pos != 0 {
		return pos
	}
	return index + 1
}

package service

import (
	"encoding/binary"
	"math"
	"math/rand"
	"sort"

	"go_4_learn_progress/internal/model"

	"github.com/google/uuid"
)

// GradeAnswer は1問を採点します。answer が nil の場合は未回答として扱います。
//   - multiple_choice / true_false: 唯一の正解選択肢と一致すれば満点、それ以外は0点
//   - short_answer / essay: 自動採点しない (0点、IsCorrect は nil)
//
// 正解が一意に決まらない設問は ErrInvalidQuestion を返します。
func GradeAnswer(q *model.Question, answer *model.SubmittedAnswer) (model.AttemptAnswer, error) {
	graded := model.AttemptAnswer{
		QuestionID:     q.QuestionID,
		PointsPossible: q.Points,
	}
	if answer != nil {
		graded.SelectedOptionID = answer.SelectedOptionID
		graded.TextAnswer = answer.TextAnswer
	}

	variant, err := q.Variant()
	if err != nil {
		return graded, err
	}

	switch v := variant.(type) {
	case model.ChoiceQuestion:
		correct, err := v.CorrectOption()
		if err != nil {
			return graded, err
		}
		isCorrect := answer != nil &&
			answer.SelectedOptionID != nil &&
			v.HasOption(*answer.SelectedOptionID) &&
			*answer.SelectedOptionID == correct.OptionID
		if isCorrect {
			graded.PointsEarned = q.Points
		}
		graded.IsCorrect = &isCorrect
		// 選択式に自由記述は保存しない
		graded.TextAnswer = nil
	case model.FreeTextQuestion:
		graded.SelectedOptionID = nil
	}
	return graded, nil
}

// EffectivePoints は手動採点を反映した獲得点です。手動採点は自由記述の設問にのみ適用し、0〜配点に丸めます。
func EffectivePoints(q *model.Question, a *model.AttemptAnswer) int {
	if a.ManualPoints == nil {
		return a.PointsEarned
	}
	if q != nil && q.Type != model.QuestionShortAnswer && q.Type != model.QuestionEssay {
		return a.PointsEarned
	}
	p := *a.ManualPoints
	if p < 0 {
		p = 0
	}
	if p > a.PointsPossible {
		p = a.PointsPossible
	}
	return p
}

// ComputeScore は 100 * 獲得点 / 配点合計 を小数2桁に丸めて返します。配点合計0のときは0。
func ComputeScore(earned, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return round2(100 * float64(earned) / float64(possible))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// snapshotQuestionOrder は受験開始時の設問順を決めます。
// position 順に並べ、shuffle の場合は受験IDから決まる乱数で並べ替えます (再読み込みで順序は変わらない)。
func snapshotQuestionOrder(questions []model.Question, shuffle bool, attemptID uuid.UUID, seed int64) []uuid.UUID {
	sorted := make([]model.Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].QuestionID.String() < sorted[j].QuestionID.String()
	})

	order := make([]uuid.UUID, len(sorted))
	for i := range sorted {
		order[i] = sorted[i].QuestionID
	}
	if shuffle && len(order) > 1 {
		src := int64(binary.BigEndian.Uint64(attemptID[:8])) ^ seed
		rnd := rand.New(rand.NewSource(src))
		rnd.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return order
}

// questionViews はスナップショット順に、正解・解説を含まない設問を返します
func questionViews(quiz *model.Quiz, order []uuid.UUID) []model.QuestionView {
	byID := questionsByID(quiz)
	views := make([]model.QuestionView, 0, len(order))
	for _, id := range order {
		q, ok := byID[id]
		if !ok {
			continue
		}
		view := model.QuestionView{
			QuestionID: q.QuestionID,
			Type:       q.Type,
			Prompt:     q.Prompt,
			Points:     q.Points,
		}
		if q.Type == model.QuestionMultipleChoice || q.Type == model.QuestionTrueFalse {
			options := sortedOptions(q.Options)
			view.Options = make([]model.OptionView, 0, len(options))
			for _, o := range options {
				view.Options = append(view.Options, model.OptionView{OptionID: o.OptionID, Text: o.Text})
			}
		}
		views = append(views, view)
	}
	return views
}

func questionsByID(quiz *model.Quiz) map[uuid.UUID]*model.Question {
	byID := make(map[uuid.UUID]*model.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		byID[quiz.Questions[i].QuestionID] = &quiz.Questions[i]
	}
	return byID
}

func sortedOptions(options []model.Option) []model.Option {
	sorted := make([]model.Option, len(options))
	copy(sorted, options)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].OptionID.String() < sorted[j].OptionID.String()
	})
	return sorted
}

//go:generate mockery --name QuizService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_4_learn_progress/internal/middleware"
	"go_4_learn_progress/internal/model"
	"go_4_learn_progress/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizService は受験の開始・提出・採点・結果参照を扱います
type QuizService interface {
	// StartAttempt は設問順をスナップショットして受験を開始します。
	// 進行中の受験があれば ErrConflict、提出済み回数が上限に達していれば ErrLimitExceeded。
	StartAttempt(ctx context.Context, quizID, enrollmentID uuid.UUID) (*model.AttemptView, error)
	// SubmitAttempt は回答を採点して受験を提出済みにします。提出済みの受験は ErrInvalidState。
	SubmitAttempt(ctx context.Context, attemptID uuid.UUID, answers []model.SubmittedAnswer) (*model.AttemptResult, error)
	// GetAttempt は進行中ならスナップショット (正解なし)、提出済みなら採点結果を返します
	GetAttempt(ctx context.Context, attemptID uuid.UUID) (*model.AttemptDetail, error)
	ListAttempts(ctx context.Context, quizID, enrollmentID uuid.UUID) ([]model.AttemptSummary, error)
}

type quizService struct {
	db          *gorm.DB
	enrollRepo  repository.EnrollmentRepository
	currRepo    repository.CurriculumRepository
	quizRepo    repository.QuizRepository
	attemptRepo repository.AttemptRepository
	shuffleSeed int64
	now         func() time.Time
}

func NewQuizService(
	db *gorm.DB,
	enrollRepo repository.EnrollmentRepository,
	currRepo repository.CurriculumRepository,
	quizRepo repository.QuizRepository,
	attemptRepo repository.AttemptRepository,
	shuffleSeed int64,
) QuizService {
	return &quizService{
		db:          db,
		enrollRepo:  enrollRepo,
		currRepo:    currRepo,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		shuffleSeed: shuffleSeed,
		now:         time.Now,
	}
}

func quizNotFound() error {
	return model.NewAppError(codeQuizNotFound, "小テストが見つかりません。", "quiz_id", model.ErrNotFound)
}

func attemptNotFound() error {
	return model.NewAppError(codeAttemptNotFound, "受験が見つかりません。", "attempt_id", model.ErrNotFound)
}

func (s *quizService) StartAttempt(ctx context.Context, quizID, enrollmentID uuid.UUID) (*model.AttemptView, error) {
	logger := middleware.GetLogger(ctx).With("quiz_id", quizID, "enrollment_id", enrollmentID)

	var (
		attempt *model.QuizAttempt
		quiz    *model.Quiz
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.enrollRepo.FindByID(ctx, tx, enrollmentID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return enrollmentNotFound()
			}
			return wrapRepoError(err, "", "", "受講登録の取得に失敗しました。")
		}
		if err := checkLearner(ctx, enrollment); err != nil {
			return err
		}

		quiz, err = s.quizRepo.FindWithQuestions(ctx, tx, quizID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return quizNotFound()
			}
			return wrapRepoError(err, "", "", "小テストの取得に失敗しました。")
		}
		if err := s.ensureQuizInCourse(ctx, tx, quiz, enrollment.CourseID); err != nil {
			return err
		}

		// 1. 進行中の受験は1件まで
		if _, err := s.attemptRepo.FindInProgress(ctx, tx, enrollmentID, quizID); err == nil {
			return model.NewAppError(codeAttemptInProgress, "進行中の受験があります。先に提出してください。", "", model.ErrConflict)
		} else if !errors.Is(err, model.ErrNotFound) {
			return model.NewAppError(codeInternal, "受験状況の確認に失敗しました。", "", err)
		}

		// 2. 受験回数の上限 (提出済みのみ数える)
		if quiz.MaxAttempts != nil {
			submitted, err := s.attemptRepo.CountSubmitted(ctx, tx, enrollmentID, quizID)
			if err != nil {
				return model.NewAppError(codeInternal, "受験回数の確認に失敗しました。", "", err)
			}
			if submitted >= int64(*quiz.MaxAttempts) {
				return model.NewAppError(codeAttemptLimit, fmt.Sprintf("受験回数の上限 (%d回) に達しています。", *quiz.MaxAttempts), "", model.ErrLimitExceeded)
			}
		}

		total, err := s.attemptRepo.CountAll(ctx, tx, enrollmentID, quizID)
		if err != nil {
			return model.NewAppError(codeInternal, "受験回数の確認に失敗しました。", "", err)
		}

		// 3. 設問順をスナップショットして作成
		now := s.now().UTC()
		attemptID := uuid.New()
		attempt = &model.QuizAttempt{
			AttemptID:     attemptID,
			EnrollmentID:  enrollmentID,
			QuizID:        quizID,
			AttemptNumber: int(total) + 1,
			Status:        model.AttemptInProgress,
			QuestionOrder: snapshotQuestionOrder(quiz.Questions, quiz.ShuffleQuestions, attemptID, s.shuffleSeed),
			StartedAt:     now,
		}
		if err := s.attemptRepo.Create(ctx, tx, attempt); err != nil {
			if errors.Is(err, model.ErrConflict) {
				// 同時に開始された受験との競合
				return model.NewAppError(codeAttemptInProgress, "進行中の受験があります。先に提出してください。", "", model.ErrConflict)
			}
			return model.NewAppError(codeInternal, "受験の開始に失敗しました。", "", err)
		}
		return nil
	})
	if err != nil {
		logger.Warn("StartAttempt failed", "error", err)
		return nil, err
	}

	logger.Info("Attempt started", "attempt_id", attempt.AttemptID, "attempt_number", attempt.AttemptNumber)
	return attemptView(attempt, quiz), nil
}

// ensureQuizInCourse は小テストが受講中のコース (直接またはモジュール経由) に属することを確認します
func (s *quizService) ensureQuizInCourse(ctx context.Context, tx *gorm.DB, quiz *model.Quiz, courseID uuid.UUID) error {
	switch {
	case quiz.CourseID != nil:
		if *quiz.CourseID == courseID {
			return nil
		}
	case quiz.ModuleID != nil:
		module, err := s.currRepo.FindModuleByID(ctx, tx, *quiz.ModuleID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return model.NewAppError(codeInternal, "モジュールの取得に失敗しました。", "", err)
		}
		if err == nil && module.CourseID == courseID {
			return nil
		}
	}
	return model.NewAppError(codeQuizNotFound, "このコースに小テストが見つかりません。", "quiz_id", model.ErrNotFound)
}

func (s *quizService) SubmitAttempt(ctx context.Context, attemptID uuid.UUID, answers []model.SubmittedAnswer) (*model.AttemptResult, error) {
	logger := middleware.GetLogger(ctx).With("attempt_id", attemptID)

	var result *model.AttemptResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.attemptRepo.FindByID(ctx, tx, attemptID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return attemptNotFound()
			}
			return wrapRepoError(err, "", "", "受験の取得に失敗しました。")
		}
		if attempt.Status != model.AttemptInProgress {
			return alreadySubmitted()
		}

		enrollment, err := s.enrollRepo.FindByID(ctx, tx, attempt.EnrollmentID)
		if err != nil {
			return wrapRepoError(err, codeEnrollmentMissing, "受講登録が見つかりません。", "受講登録の取得に失敗しました。")
		}
		if err := checkLearner(ctx, enrollment); err != nil {
			return err
		}

		quiz, err := s.quizRepo.FindWithQuestions(ctx, tx, attempt.QuizID)
		if err != nil {
			return wrapRepoError(err, codeQuizNotFound, "小テストが見つかりません。", "小テストの取得に失敗しました。")
		}

		byQuestion, err := indexAnswers(attempt, answers)
		if err != nil {
			return err
		}

		// スナップショット順に採点
		questions := questionsByID(quiz)
		graded := make([]model.AttemptAnswer, 0, len(attempt.QuestionOrder))
		earned, possible := 0, 0
		for _, qid := range attempt.QuestionOrder {
			q, ok := questions[qid]
			if !ok {
				logger.Warn("Question in snapshot no longer exists, skipping", "question_id", qid)
				continue
			}
			a, err := GradeAnswer(q, byQuestion[qid])
			if err != nil {
				logger.Error("Malformed question found while grading", "question_id", qid, "error", err)
				return model.NewAppError(codeInvalidQuestion, "採点できない設問が含まれています。", "question_id", err)
			}
			a.AnswerID = uuid.New()
			a.AttemptID = attempt.AttemptID
			graded = append(graded, a)
			earned += a.PointsEarned
			possible += a.PointsPossible
		}

		now := s.now().UTC()
		score := ComputeScore(earned, possible)
		passed := score >= quiz.PassingScore

		// in_progress の場合のみ更新 (同時提出は片方のみ成功)
		ok, err := s.attemptRepo.MarkSubmitted(ctx, tx, attempt.AttemptID, score, passed, now)
		if err != nil {
			return model.NewAppError(codeInternal, "受験の提出に失敗しました。", "", err)
		}
		if !ok {
			return alreadySubmitted()
		}
		if err := s.attemptRepo.CreateAnswers(ctx, tx, graded); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return alreadySubmitted()
			}
			return model.NewAppError(codeInternal, "回答の保存に失敗しました。", "", err)
		}

		attempt.Status = model.AttemptSubmitted
		attempt.Score = &score
		attempt.Passed = &passed
		attempt.SubmittedAt = &now
		attempt.Answers = graded
		result = attemptResult(attempt, quiz)
		return nil
	})
	if err != nil {
		logger.Warn("SubmitAttempt failed", "error", err)
		return nil, err
	}

	logger.Info("Attempt submitted", "score", result.Score, "passed", result.Passed)
	return result, nil
}

func alreadySubmitted() error {
	return model.NewAppError(codeAttemptSubmitted, "この受験は既に提出されています。", "", model.ErrInvalidState)
}

// indexAnswers は回答を設問IDで引けるようにします。受験に含まれない設問・重複回答は ErrInvalidInput。
func indexAnswers(attempt *model.QuizAttempt, answers []model.SubmittedAnswer) (map[uuid.UUID]*model.SubmittedAnswer, error) {
	inAttempt := make(map[uuid.UUID]bool, len(attempt.QuestionOrder))
	for _, id := range attempt.QuestionOrder {
		inAttempt[id] = true
	}
	byQuestion := make(map[uuid.UUID]*model.SubmittedAnswer, len(answers))
	for i := range answers {
		a := &answers[i]
		if !inAttempt[a.QuestionID] {
			return nil, model.NewAppError(codeInvalidInput, "この受験に含まれない設問への回答があります。", "answers.question_id", model.ErrInvalidInput)
		}
		if _, dup := byQuestion[a.QuestionID]; dup {
			return nil, model.NewAppError(codeInvalidInput, "同じ設問への回答が重複しています。", "answers.question_id", model.ErrInvalidInput)
		}
		byQuestion[a.QuestionID] = a
	}
	return byQuestion, nil
}

func (s *quizService) GetAttempt(ctx context.Context, attemptID uuid.UUID) (*model.AttemptDetail, error) {
	attempt, err := s.attemptRepo.FindByID(ctx, s.db, attemptID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, attemptNotFound()
		}
		return nil, wrapRepoError(err, "", "", "受験の取得に失敗しました。")
	}
	enrollment, err := s.enrollRepo.FindByID(ctx, s.db, attempt.EnrollmentID)
	if err != nil {
		return nil, wrapRepoError(err, codeEnrollmentMissing, "受講登録が見つかりません。", "受講登録の取得に失敗しました。")
	}
	if err := checkLearner(ctx, enrollment); err != nil {
		return nil, err
	}
	quiz, err := s.quizRepo.FindWithQuestions(ctx, s.db, attempt.QuizID)
	if err != nil {
		return nil, wrapRepoError(err, codeQuizNotFound, "小テストが見つかりません。", "小テストの取得に失敗しました。")
	}

	detail := &model.AttemptDetail{Status: attempt.Status}
	if attempt.Status == model.AttemptSubmitted {
		detail.Result = attemptResult(attempt, quiz)
	} else {
		detail.Attempt = attemptView(attempt, quiz)
	}
	return detail, nil
}

func (s *quizService) ListAttempts(ctx context.Context, quizID, enrollmentID uuid.UUID) ([]model.AttemptSummary, error) {
	enrollment, err := s.enrollRepo.FindByID(ctx, s.db, enrollmentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, enrollmentNotFound()
		}
		return nil, wrapRepoError(err, "", "", "受講登録の取得に失敗しました。")
	}
	if err := checkLearner(ctx, enrollment); err != nil {
		return nil, err
	}
	if _, err := s.quizRepo.FindByID(ctx, s.db, quizID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, quizNotFound()
		}
		return nil, wrapRepoError(err, "", "", "小テストの取得に失敗しました。")
	}

	attempts, err := s.attemptRepo.FindByEnrollmentAndQuiz(ctx, s.db, enrollmentID, quizID)
	if err != nil {
		return nil, model.NewAppError(codeInternal, "受験履歴の取得に失敗しました。", "", err)
	}
	summaries := make([]model.AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		summaries = append(summaries, model.AttemptSummary{
			AttemptID:     a.AttemptID,
			AttemptNumber: a.AttemptNumber,
			Status:        a.Status,
			Score:         a.Score,
			Passed:        a.Passed,
			StartedAt:     a.StartedAt,
			SubmittedAt:   a.SubmittedAt,
		})
	}
	return summaries, nil
}

func attemptView(attempt *model.QuizAttempt, quiz *model.Quiz) *model.AttemptView {
	return &model.AttemptView{
		AttemptID:     attempt.AttemptID,
		QuizID:        attempt.QuizID,
		EnrollmentID:  attempt.EnrollmentID,
		AttemptNumber: attempt.AttemptNumber,
		Status:        attempt.Status,
		StartedAt:     attempt.StartedAt,
		Questions:     questionViews(quiz, attempt.QuestionOrder),
	}
}

// attemptResult は提出済みの受験から採点結果を組み立てます。
// 自由記述に手動採点があれば獲得点とスコアに反映します。
func attemptResult(attempt *model.QuizAttempt, quiz *model.Quiz) *model.AttemptResult {
	questions := questionsByID(quiz)
	answers := make(map[uuid.UUID]*model.AttemptAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		answers[attempt.Answers[i].QuestionID] = &attempt.Answers[i]
	}

	res := &model.AttemptResult{
		AttemptID:     attempt.AttemptID,
		QuizID:        attempt.QuizID,
		EnrollmentID:  attempt.EnrollmentID,
		AttemptNumber: attempt.AttemptNumber,
		Status:        attempt.Status,
		PassingScore:  quiz.PassingScore,
		Questions:     make([]model.QuestionResult, 0, len(attempt.QuestionOrder)),
	}
	if attempt.SubmittedAt != nil {
		res.SubmittedAt = *attempt.SubmittedAt
	}

	overridden := false
	for _, qid := range attempt.QuestionOrder {
		q, ok := questions[qid]
		a, answered := answers[qid]
		if !ok || !answered {
			continue
		}
		points := EffectivePoints(q, a)
		if points != a.PointsEarned {
			overridden = true
		}
		qr := model.QuestionResult{
			QuestionID:       q.QuestionID,
			Type:             q.Type,
			Prompt:           q.Prompt,
			Explanation:      q.Explanation,
			SelectedOptionID: a.SelectedOptionID,
			TextAnswer:       a.TextAnswer,
			IsCorrect:        a.IsCorrect,
			PointsEarned:     points,
			PointsPossible:   a.PointsPossible,
		}
		if variant, err := q.Variant(); err == nil {
			if choice, ok := variant.(model.ChoiceQuestion); ok {
				if correct, err := choice.CorrectOption(); err == nil {
					id := correct.OptionID
					qr.CorrectOptionID = &id
				}
			}
		}
		res.PointsEarned += points
		res.PointsPossible += a.PointsPossible
		res.Questions = append(res.Questions, qr)
	}

	switch {
	case overridden:
		res.Score = ComputeScore(res.PointsEarned, res.PointsPossible)
		res.Passed = res.Score >= quiz.PassingScore
	case attempt.Score != nil:
		res.Score = *attempt.Score
		res.Passed = attempt.Passed != nil && *attempt.Passed
	default:
		res.Score = ComputeScore(res.PointsEarned, res.PointsPossible)
		res.Passed = res.Score >= quiz.PassingScore
	}
	return res
}

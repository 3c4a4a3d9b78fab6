package service

import (
	"errors"

	"go_4_learn_progress/internal/model"
)

// エラーコード (クライアントはこのコードで表示を切り替える)
const (
	codeInternal          = "INTERNAL_SERVER_ERROR"
	codeInvalidInput      = "INVALID_INPUT"
	codeCourseNotFound    = "COURSE_NOT_FOUND"
	codeModuleNotFound    = "MODULE_NOT_FOUND"
	codeLessonNotFound    = "LESSON_NOT_FOUND"
	codeEnrollmentMissing = "ENROLLMENT_NOT_FOUND"
	codeQuizNotFound      = "QUIZ_NOT_FOUND"
	codeAttemptNotFound   = "ATTEMPT_NOT_FOUND"
	codeAttemptInProgress = "ATTEMPT_IN_PROGRESS"
	codeAttemptLimit      = "ATTEMPT_LIMIT_EXCEEDED"
	codeAttemptSubmitted  = "ATTEMPT_ALREADY_SUBMITTED"
	codeLessonNotInCourse = "LESSON_NOT_IN_COURSE"
	codeInvalidQuestion   = "INVALID_QUESTION"
	codeTestsNotSet       = "TESTS_NOT_CONFIGURED"
	codeForbidden         = "FORBIDDEN"
)

// wrapRepoError はリポジトリのエラーを AppError に変換します。
// ErrNotFound は notFoundCode / notFoundMsg で、それ以外は内部エラーとして扱います。
func wrapRepoError(err error, notFoundCode, notFoundMsg, internalMsg string) error {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, model.ErrNotFound) {
		return model.NewAppError(notFoundCode, notFoundMsg, "", model.ErrNotFound)
	}
	return model.NewAppError(codeInternal, internalMsg, "", err)
}

func enrollmentNotFound() error {
	return model.NewAppError(codeEnrollmentMissing, "受講登録が見つかりません。", "enrollment_id", model.ErrNotFound)
}

func courseNotFound() error {
	return model.NewAppError(codeCourseNotFound, "コースが見つかりません。", "course_id", model.ErrNotFound)
}

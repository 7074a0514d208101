package util

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrModuleNotFound      = errors.New("module not found")
	ErrSectionNotFound     = errors.New("section not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrContentItemNotFound = errors.New("content item not found")
	ErrInvalidAnswerIndex  = errors.New("selected answer index out of range")
	ErrNoQuizQuestions     = errors.New("section has no quiz questions")
	ErrInvalidDraft        = errors.New("malformed quiz draft payload")
)

// IsDuplicateKeyError 判断是否为唯一索引冲突
// MySQL 报 "Duplicate entry"，SQLite 报 "UNIQUE constraint failed"
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

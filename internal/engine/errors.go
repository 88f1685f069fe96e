package engine

import (
	"errors"
	"fmt"
)

// ValidationError — нарушено предусловие операции: чужое событие,
// неподходящий статус, некорректное решение.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// NotFoundError — документ с указанным ID не существует
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

func notFoundErrorf(format string, args ...any) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// ConflictError — условное обновление не прошло: документ изменён
// конкурентной операцией между проверкой и записью
type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string { return e.msg }

func conflictErrorf(format string, args ...any) error {
	return &ConflictError{msg: fmt.Sprintf(format, args...)}
}

// ForbiddenError — операция запрошена не тем участником
type ForbiddenError struct {
	msg string
}

func (e *ForbiddenError) Error() string { return e.msg }

func forbiddenErrorf(format string, args ...any) error {
	return &ForbiddenError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation сообщает, является ли ошибка нарушением предусловия
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound сообщает, является ли ошибка отсутствием документа
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict сообщает, является ли ошибка конкурентным конфликтом
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsForbidden сообщает, является ли ошибка нарушением прав участника
func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

package apperrors

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrCategoryExists        = errors.New("category already exists")
	ErrForeignCategory       = errors.New("category does not belong to user")
	ErrCompensationCompleted = errors.New("compensation is completed")
)

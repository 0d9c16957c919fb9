package repository

import "errors"

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// clampLimit приводит лимит выборки к допустимому диапазону.
func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return defaultListLimit
	}
	return limit
}

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalid        = errors.New("invalid input")
	ErrBudgetExceeded = errors.New("budget exceeded")
)

package domain

import "errors"

var (
	ErrNotFound    = errors.New("teacher_not_found")
	ErrInvalidID   = errors.New("invalid_teacher_id")
	ErrInvalidName = errors.New("invalid_teacher_name")
)

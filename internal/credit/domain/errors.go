package domain

import "errors"

var (
	ErrInvalidSchool      = errors.New("invalid_credit_school")
	ErrInvalidTeacher     = errors.New("invalid_credit_teacher")
	ErrInvalidCount       = errors.New("invalid_credit_count")
	ErrNoCreditsAvailable = errors.New("no_credits_available")
	ErrDuplicateReference = errors.New("duplicate_transaction_reference")
)

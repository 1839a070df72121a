package domain

import "errors"

var (
	ErrNotFound    = errors.New("school_not_found")
	ErrInvalidID   = errors.New("invalid_school_id")
	ErrInvalidName = errors.New("invalid_school_name")
	ErrSlugTaken   = errors.New("school_slug_taken")
)

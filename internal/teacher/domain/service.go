package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateTeacherRequest struct {
	Name            string
	Email           string
	Phone           string
	Subjects        []string
	ExperienceYears int
	Location        string
	Source          string
}

// ImportResult summarizes one bulk import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateTeacherRequest) (*Teacher, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Teacher, error)
	List(ctx context.Context, filter ListFilter) ([]Teacher, error)
	Import(ctx context.Context, rows []map[string]any) (*ImportResult, error)
}

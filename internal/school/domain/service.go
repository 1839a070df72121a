package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateSchoolRequest struct {
	Name     string
	Email    string
	Phone    string
	Location string
	Source   string
}

type Service interface {
	Create(ctx context.Context, req CreateSchoolRequest) (*School, error)
	GetByID(ctx context.Context, id snowflake.ID) (*School, error)
	List(ctx context.Context, filter ListFilter) ([]School, error)
}

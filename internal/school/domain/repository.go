package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, school *School) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*School, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]School, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error
}

// ListFilter narrows List results; zero value lists everything.
type ListFilter struct {
	Name       string
	ActiveOnly bool
	HiddenOnly bool
	Limit      int
}

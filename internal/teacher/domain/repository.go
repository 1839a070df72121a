package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, teacher *Teacher) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Teacher, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Teacher, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Teacher, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type ListFilter struct {
	Name       string
	Location   string
	ActiveOnly bool
	Limit      int
}

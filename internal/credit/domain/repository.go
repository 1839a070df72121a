package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, batch *CreditBatch) error
	// ActiveBatchesFIFO lists batches eligible for debit: status active,
	// remaining > 0, not past expiry at the given instant, oldest first.
	ActiveBatchesFIFO(ctx context.Context, db *gorm.DB, schoolID snowflake.ID, at time.Time) ([]CreditBatch, error)
	// DebitBatch conditionally decrements one credit from the batch. It
	// reports false without error when another writer drained the batch
	// first; callers retry with the next-oldest batch.
	DebitBatch(ctx context.Context, db *gorm.DB, batchID snowflake.ID, at time.Time) (bool, error)
	SumRemaining(ctx context.Context, db *gorm.DB, schoolID snowflake.ID, at time.Time) (int64, error)
	InsertContact(ctx context.Context, db *gorm.DB, contact *ContactRecord) (bool, error)
	FindContact(ctx context.Context, db *gorm.DB, schoolID, teacherID snowflake.ID) (*ContactRecord, error)
	ListBatches(ctx context.Context, db *gorm.DB, schoolID snowflake.ID) ([]CreditBatch, error)
	ListContacts(ctx context.Context, db *gorm.DB, schoolID snowflake.ID) ([]ContactRecord, error)
	ListPackages(ctx context.Context, db *gorm.DB) ([]CreditPackage, error)
	FindPackageByCode(ctx context.Context, db *gorm.DB, code string) (*CreditPackage, error)
}

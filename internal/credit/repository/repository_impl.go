package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	creditdomain "github.com/mginvestments/marketplace/internal/credit/domain"
	"github.com/mginvestments/marketplace/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() creditdomain.Repository {
	return &repo{}
}

func (r *repo) InsertBatch(ctx context.Context, conn *gorm.DB, batch *creditdomain.CreditBatch) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO credit_batches (
			id, school_id, purchased, used, remaining, status, amount_paid, currency,
			external_transaction_id, purchased_at, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.SchoolID,
		batch.Purchased,
		batch.Used,
		batch.Remaining,
		batch.Status,
		batch.AmountPaid,
		batch.Currency,
		batch.ExternalTransactionID,
		batch.PurchasedAt,
		batch.ExpiresAt,
		batch.CreatedAt,
		batch.UpdatedAt,
	).Error
}

func (r *repo) ActiveBatchesFIFO(ctx context.Context, conn *gorm.DB, schoolID snowflake.ID, at time.Time) ([]creditdomain.CreditBatch, error) {
	var batches []creditdomain.CreditBatch
	err := conn.WithContext(ctx).
		Where("school_id = ? AND status = ? AND remaining > 0", schoolID, creditdomain.BatchStatusActive).
		Where("expires_at IS NULL OR expires_at > ?", at).
		Order("purchased_at ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// DebitBatch is the compare-and-swap at the heart of credit consumption:
// the WHERE clause re-checks remaining > 0 so two concurrent debits of the
// same batch can never push remaining negative.
func (r *repo) DebitBatch(ctx context.Context, conn *gorm.DB, batchID snowflake.ID, at time.Time) (bool, error) {
	result := conn.WithContext(ctx).Exec(
		`UPDATE credit_batches
		SET used = used + 1,
			remaining = remaining - 1,
			status = CASE WHEN remaining - 1 = 0 THEN ? ELSE status END,
			updated_at = ?
		WHERE id = ? AND status = ? AND remaining > 0`,
		creditdomain.BatchStatusUsed,
		at,
		batchID,
		creditdomain.BatchStatusActive,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) SumRemaining(ctx context.Context, conn *gorm.DB, schoolID snowflake.ID, at time.Time) (int64, error) {
	var total int64
	err := conn.WithContext(ctx).
		Model(&creditdomain.CreditBatch{}).
		Select("COALESCE(SUM(remaining), 0)").
		Where("school_id = ? AND status = ?", schoolID, creditdomain.BatchStatusActive).
		Where("expires_at IS NULL OR expires_at > ?", at).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// InsertContact reports false when the (school, teacher) pair already has a
// contact row. The unique index makes the insert race-free; duplicate-key
// errors from dialects without ON CONFLICT support are folded into the
// same "already recorded" answer.
func (r *repo) InsertContact(ctx context.Context, conn *gorm.DB, contact *creditdomain.ContactRecord) (bool, error) {
	result := conn.WithContext(ctx).Exec(
		`INSERT INTO teacher_contacts (
			id, school_id, teacher_id, access_mode, credit_consumed, batch_id, contacted_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (school_id, teacher_id) DO NOTHING`,
		contact.ID,
		contact.SchoolID,
		contact.TeacherID,
		contact.AccessMode,
		contact.CreditConsumed,
		contact.BatchID,
		contact.ContactedAt,
		contact.CreatedAt,
	)
	if result.Error != nil {
		if db.IsDuplicateKeyErr(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindContact(ctx context.Context, conn *gorm.DB, schoolID, teacherID snowflake.ID) (*creditdomain.ContactRecord, error) {
	var contact creditdomain.ContactRecord
	if err := conn.WithContext(ctx).
		Where("school_id = ? AND teacher_id = ?", schoolID, teacherID).
		First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *repo) ListBatches(ctx context.Context, conn *gorm.DB, schoolID snowflake.ID) ([]creditdomain.CreditBatch, error) {
	var batches []creditdomain.CreditBatch
	err := conn.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("purchased_at DESC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *repo) ListContacts(ctx context.Context, conn *gorm.DB, schoolID snowflake.ID) ([]creditdomain.ContactRecord, error) {
	var contacts []creditdomain.ContactRecord
	err := conn.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("contacted_at DESC").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *repo) ListPackages(ctx context.Context, conn *gorm.DB) ([]creditdomain.CreditPackage, error) {
	var packages []creditdomain.CreditPackage
	err := conn.WithContext(ctx).
		Where("active = ?", true).
		Order("credits ASC").
		Find(&packages).Error
	if err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *repo) FindPackageByCode(ctx context.Context, conn *gorm.DB, code string) (*creditdomain.CreditPackage, error) {
	var pkg creditdomain.CreditPackage
	if err := conn.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

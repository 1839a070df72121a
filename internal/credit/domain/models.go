// Package domain contains persistence models for the contact-credit ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BatchStatus represents lifecycle states for a credit batch.
type BatchStatus string

const (
	BatchStatusActive  BatchStatus = "active"
	BatchStatusUsed    BatchStatus = "used"
	BatchStatusExpired BatchStatus = "expired"
)

// AccessMode records how a school unlocked a teacher.
type AccessMode string

const (
	AccessModeCredit       AccessMode = "credit"
	AccessModeSubscription AccessMode = "subscription"
)

// CreditBatch is one purchase event. Batches are debited strictly
// oldest-first so credits with nearer expiry are spent before they
// can be forfeited.
type CreditBatch struct {
	ID                    snowflake.ID `json:"id" gorm:"primaryKey"`
	SchoolID              snowflake.ID `json:"school_id" gorm:"not null;index"`
	Purchased             int64        `json:"purchased" gorm:"not null"`
	Used                  int64        `json:"used" gorm:"not null;default:0"`
	Remaining             int64        `json:"remaining" gorm:"not null"`
	Status                BatchStatus  `json:"status" gorm:"type:text;not null;index"`
	AmountPaid            int64        `json:"amount_paid" gorm:"not null;default:0"`
	Currency              string       `json:"currency" gorm:"type:text;not null;default:'UGX'"`
	ExternalTransactionID *string      `json:"external_transaction_id" gorm:"type:text;uniqueIndex"`
	PurchasedAt           time.Time    `json:"purchased_at" gorm:"not null;index"`
	ExpiresAt             *time.Time   `json:"expires_at"`
	CreatedAt             time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CreditBatch) TableName() string { return "credit_batches" }

// ContactRecord is one (school, teacher) unlock event. The pair is unique
// at the store level; the row is immutable once written.
type ContactRecord struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	SchoolID       snowflake.ID  `json:"school_id" gorm:"not null;uniqueIndex:ux_teacher_contacts_pair,priority:1"`
	TeacherID      snowflake.ID  `json:"teacher_id" gorm:"not null;uniqueIndex:ux_teacher_contacts_pair,priority:2"`
	AccessMode     AccessMode    `json:"access_mode" gorm:"type:text;not null"`
	CreditConsumed bool          `json:"credit_consumed" gorm:"not null;default:false"`
	BatchID        *snowflake.ID `json:"batch_id" gorm:"index"`
	ContactedAt    time.Time     `json:"contacted_at" gorm:"not null;index"`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ContactRecord) TableName() string { return "teacher_contacts" }

// CreditPackage is a sellable bundle of credits.
type CreditPackage struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Code      string       `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Credits   int64        `json:"credits" gorm:"not null"`
	Price     int64        `json:"price" gorm:"not null"`
	Currency  string       `json:"currency" gorm:"type:text;not null;default:'UGX'"`
	Active    bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CreditPackage) TableName() string { return "credit_packages" }

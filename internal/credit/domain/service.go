package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Decision is the outcome of a contact eligibility check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Eligibility reasons.
const (
	ReasonAlreadyContacted = "already_contacted"
	ReasonSubscription     = "subscription"
	ReasonCredit           = "credit"
	ReasonNoAccess         = "no_credits_or_subscription"
)

type PurchaseCreditsRequest struct {
	SchoolID              snowflake.ID
	Count                 int64
	AmountPaid            int64
	Currency              string
	ExternalTransactionID *string
	ExpiresAt             *time.Time
}

// UseCreditResult reports the post-operation balance along with whether
// this call actually debited a credit (false when the pair was already
// contacted or a subscription covered the unlock).
type UseCreditResult struct {
	Remaining  int64      `json:"remaining"`
	Debited    bool       `json:"debited"`
	AccessMode AccessMode `json:"access_mode"`
}

type Service interface {
	GetBalance(ctx context.Context, schoolID snowflake.ID) (int64, error)
	PurchaseCredits(ctx context.Context, req PurchaseCreditsRequest) (*CreditBatch, error)
	// PurchaseCreditsTx inserts the batch through the caller's open
	// transaction so the grant commits or rolls back with the caller's
	// own writes.
	PurchaseCreditsTx(ctx context.Context, tx *gorm.DB, req PurchaseCreditsRequest) (*CreditBatch, error)
	CanContact(ctx context.Context, schoolID, teacherID snowflake.ID) (Decision, error)
	UseCredit(ctx context.Context, schoolID, teacherID snowflake.ID) (*UseCreditResult, error)
	GetCreditHistory(ctx context.Context, schoolID snowflake.ID) ([]CreditBatch, error)
	GetContactHistory(ctx context.Context, schoolID snowflake.ID) ([]ContactRecord, error)
	ListPackages(ctx context.Context) ([]CreditPackage, error)
	GetPackageByCode(ctx context.Context, code string) (*CreditPackage, error)
}

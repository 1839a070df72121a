// Package domain contains models and contracts for mobile-money payments.
package domain

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
)

// RequestStatus mirrors the aggregator's request-to-pay states.
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusSuccessful RequestStatus = "SUCCESSFUL"
	StatusFailed     RequestStatus = "FAILED"
)

// PaymentRequest is one request-to-pay issued against a school's mobile
// wallet. Reference is our merchant transaction id; ProviderRef is the id
// the aggregator tracks the request under.
type PaymentRequest struct {
	ID          snowflake.ID  `json:"id" gorm:"primaryKey"`
	SchoolID    snowflake.ID  `json:"school_id" gorm:"not null;index"`
	Provider    string        `json:"provider" gorm:"type:text;not null"`
	Reference   string        `json:"reference" gorm:"type:text;not null;uniqueIndex"`
	ProviderRef string        `json:"provider_ref" gorm:"type:text;not null;uniqueIndex"`
	MSISDN      string        `json:"msisdn" gorm:"type:text;not null"`
	Amount      int64         `json:"amount" gorm:"not null"`
	Currency    string        `json:"currency" gorm:"type:text;not null"`
	Credits     int64         `json:"credits" gorm:"not null"`
	PackageCode *string       `json:"package_code" gorm:"type:text"`
	Status      RequestStatus `json:"status" gorm:"type:text;not null;index"`
	CreatedAt   time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CompletedAt *time.Time    `json:"completed_at"`
}

// TableName sets the database table name.
func (PaymentRequest) TableName() string { return "payment_requests" }

// PaymentEvent is the canonical callback event parsed by adapters.
type PaymentEvent struct {
	Provider    string
	ProviderRef string
	Reference   string
	Status      RequestStatus
	Amount      int64
	Currency    string
	OccurredAt  time.Time
	RawPayload  []byte
}

// RequestToPayInput carries everything an adapter needs to debit a wallet.
type RequestToPayInput struct {
	ProviderRef string
	Reference   string
	MSISDN      string
	Amount      int64
	Currency    string
	Message     string
}

// PaymentAdapter talks to one aggregator.
type PaymentAdapter interface {
	RequestToPay(ctx context.Context, input RequestToPayInput) error
	GetStatus(ctx context.Context, providerRef string) (RequestStatus, error)
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*PaymentEvent, error)
}

// AdapterConfig is provider-specific configuration.
type AdapterConfig struct {
	Config map[string]any
}

// AdapterFactory builds a configured adapter for its provider.
type AdapterFactory interface {
	Provider() string
	NewAdapter(cfg AdapterConfig) (PaymentAdapter, error)
}

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidSchool = errors.New("invalid_subscription_school")
	ErrInvalidPlan   = errors.New("invalid_subscription_plan")
	ErrInvalidExpiry = errors.New("invalid_subscription_expiry")
)

type CreateSubscriptionRequest struct {
	SchoolID  snowflake.ID
	Plan      string
	StartAt   time.Time
	ExpiresAt time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateSubscriptionRequest) (*SchoolSubscription, error)
	// ActiveForSchool returns the school's unexpired ACTIVE subscription,
	// or nil when the school has none.
	ActiveForSchool(ctx context.Context, schoolID snowflake.ID, at time.Time) (*SchoolSubscription, error)
}

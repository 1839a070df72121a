// Package domain contains persistence models for school subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SubscriptionStatus represents lifecycle states for a school subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
	SubscriptionStatusExpired  SubscriptionStatus = "EXPIRED"
)

// SchoolSubscription grants unmetered teacher contact while active.
type SchoolSubscription struct {
	ID        snowflake.ID       `json:"id" gorm:"primaryKey"`
	SchoolID  snowflake.ID       `json:"school_id" gorm:"not null;index"`
	Plan      string             `json:"plan" gorm:"type:text;not null"`
	Status    SubscriptionStatus `json:"status" gorm:"type:text;not null;index"`
	StartAt   time.Time          `json:"start_at" gorm:"not null"`
	ExpiresAt time.Time          `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time          `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time          `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SchoolSubscription) TableName() string { return "school_subscriptions" }

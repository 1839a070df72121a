package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mginvestments/marketplace/internal/clock"
	subscriptiondomain "github.com/mginvestments/marketplace/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) subscriptiondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req subscriptiondomain.CreateSubscriptionRequest) (*subscriptiondomain.SchoolSubscription, error) {
	if req.SchoolID == 0 {
		return nil, subscriptiondomain.ErrInvalidSchool
	}
	plan := strings.TrimSpace(req.Plan)
	if plan == "" {
		return nil, subscriptiondomain.ErrInvalidPlan
	}

	now := s.clock.Now()
	startAt := req.StartAt
	if startAt.IsZero() {
		startAt = now
	}
	if !req.ExpiresAt.After(startAt) {
		return nil, subscriptiondomain.ErrInvalidExpiry
	}

	sub := &subscriptiondomain.SchoolSubscription{
		ID:        s.genID.Generate(),
		SchoolID:  req.SchoolID,
		Plan:      plan,
		Status:    subscriptiondomain.SubscriptionStatusActive,
		StartAt:   startAt,
		ExpiresAt: req.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.WithContext(ctx).Exec(
		`INSERT INTO school_subscriptions (
			id, school_id, plan, status, start_at, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.SchoolID,
		sub.Plan,
		sub.Status,
		sub.StartAt,
		sub.ExpiresAt,
		sub.CreatedAt,
		sub.UpdatedAt,
	).Error; err != nil {
		s.log.Error("failed to insert subscription", zap.Error(err))
		return nil, err
	}
	return sub, nil
}

func (s *Service) ActiveForSchool(ctx context.Context, schoolID snowflake.ID, at time.Time) (*subscriptiondomain.SchoolSubscription, error) {
	if schoolID == 0 {
		return nil, subscriptiondomain.ErrInvalidSchool
	}

	var sub subscriptiondomain.SchoolSubscription
	err := s.db.WithContext(ctx).
		Where("school_id = ? AND status = ? AND start_at <= ? AND expires_at > ?",
			schoolID, subscriptiondomain.SubscriptionStatusActive, at, at).
		Order("expires_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

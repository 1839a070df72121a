package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/mginvestments/marketplace/internal/clock"
	"github.com/mginvestments/marketplace/internal/config"
	creditdomain "github.com/mginvestments/marketplace/internal/credit/domain"
	obsmetrics "github.com/mginvestments/marketplace/internal/observability/metrics"
	"github.com/mginvestments/marketplace/internal/payment/adapters"
	"github.com/mginvestments/marketplace/internal/payment/adapters/momo"
	paymentdomain "github.com/mginvestments/marketplace/internal/payment/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Cfg        config.Config
	Adapters   *adapters.Registry
	CreditSvc  creditdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	cfg        config.Config
	adapters   *adapters.Registry
	creditSvc  creditdomain.Service
	obsMetrics *obsmetrics.Metrics
	entropy    *ulid.MonotonicEntropy
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		cfg:        p.Cfg,
		adapters:   p.Adapters,
		creditSvc:  p.CreditSvc,
		obsMetrics: p.ObsMetrics,
		entropy:    ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *Service) adapter(provider string) (paymentdomain.PaymentAdapter, error) {
	return s.adapters.NewAdapter(provider, paymentdomain.AdapterConfig{
		Config: map[string]any{
			"base_url":         s.cfg.Momo.BaseURL,
			"subscription_key": s.cfg.Momo.SubscriptionKey,
			"api_user":         s.cfg.Momo.APIUser,
			"api_key":          s.cfg.Momo.APIKey,
			"target_env":       s.cfg.Momo.TargetEnv,
			"callback_secret":  s.cfg.Momo.CallbackSecret,
		},
	})
}

func (s *Service) Initiate(ctx context.Context, req paymentdomain.InitiateRequest) (*paymentdomain.PaymentRequest, error) {
	if req.SchoolID == 0 {
		return nil, creditdomain.ErrInvalidSchool
	}
	if !momo.ValidMSISDN(req.MSISDN) {
		return nil, paymentdomain.ErrInvalidMSISDN
	}

	credits := req.Credits
	amount := req.Amount
	currency := s.cfg.Momo.Currency
	var packageCode *string

	if code := strings.TrimSpace(req.PackageCode); code != "" {
		pkg, err := s.creditSvc.GetPackageByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, paymentdomain.ErrInvalidPayload
			}
			return nil, err
		}
		credits = pkg.Credits
		amount = pkg.Price
		currency = pkg.Currency
		packageCode = &pkg.Code
	}

	if credits <= 0 {
		return nil, creditdomain.ErrInvalidCount
	}
	if amount <= 0 {
		return nil, paymentdomain.ErrInvalidAmount
	}

	adapter, err := s.adapter("momo")
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	request := &paymentdomain.PaymentRequest{
		ID:          s.genID.Generate(),
		SchoolID:    req.SchoolID,
		Provider:    "momo",
		Reference:   ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		ProviderRef: uuid.NewString(),
		MSISDN:      strings.TrimSpace(req.MSISDN),
		Amount:      amount,
		Currency:    currency,
		Credits:     credits,
		PackageCode: packageCode,
		Status:      paymentdomain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(ctx).Exec(
		`INSERT INTO payment_requests (
			id, school_id, provider, reference, provider_ref, msisdn, amount, currency,
			credits, package_code, status, created_at, updated_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.SchoolID,
		request.Provider,
		request.Reference,
		request.ProviderRef,
		request.MSISDN,
		request.Amount,
		request.Currency,
		request.Credits,
		request.PackageCode,
		request.Status,
		request.CreatedAt,
		request.UpdatedAt,
		request.CompletedAt,
	).Error; err != nil {
		return nil, fmt.Errorf("insert payment request: %w", err)
	}

	if err := adapter.RequestToPay(ctx, paymentdomain.RequestToPayInput{
		ProviderRef: request.ProviderRef,
		Reference:   request.Reference,
		MSISDN:      request.MSISDN,
		Amount:      request.Amount,
		Currency:    request.Currency,
		Message:     fmt.Sprintf("%d contact credits", request.Credits),
	}); err != nil {
		// The row stays PENDING; ConfirmPending will discover the
		// aggregator never saw it and mark it FAILED.
		s.log.Error("request to pay failed",
			zap.String("reference", request.Reference),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("payment request initiated",
		zap.String("reference", request.Reference),
		zap.String("school_id", request.SchoolID.String()),
		zap.Int64("credits", request.Credits),
	)
	return request, nil
}

func (s *Service) HandleCallback(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	if !s.adapters.ProviderExists(provider) {
		return paymentdomain.ErrProviderNotFound
	}

	adapter, err := s.adapter(provider)
	if err != nil {
		return err
	}
	if err := adapter.Verify(ctx, payload, headers); err != nil {
		return err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			return nil
		}
		return err
	}

	return s.applyTerminalStatus(ctx, event.ProviderRef, event.Status)
}

func (s *Service) ConfirmPending(ctx context.Context) (int, error) {
	var pending []paymentdomain.PaymentRequest
	if err := s.db.WithContext(ctx).
		Where("status = ?", paymentdomain.StatusPending).
		Order("created_at ASC").
		Find(&pending).Error; err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	adapter, err := s.adapter("momo")
	if err != nil {
		return 0, err
	}

	confirmed := 0
	for _, request := range pending {
		status, err := adapter.GetStatus(ctx, request.ProviderRef)
		if err != nil {
			if errors.Is(err, paymentdomain.ErrRequestNotFound) {
				status = paymentdomain.StatusFailed
			} else {
				s.log.Warn("failed to poll payment status",
					zap.String("reference", request.Reference),
					zap.Error(err),
				)
				continue
			}
		}
		if status == paymentdomain.StatusPending {
			continue
		}
		if err := s.applyTerminalStatus(ctx, request.ProviderRef, status); err != nil {
			s.log.Warn("failed to apply payment status",
				zap.String("reference", request.Reference),
				zap.Error(err),
			)
			continue
		}
		confirmed++
	}
	return confirmed, nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*paymentdomain.PaymentRequest, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, paymentdomain.ErrRequestNotFound
	}
	var request paymentdomain.PaymentRequest
	if err := s.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, paymentdomain.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

// applyTerminalStatus moves a request from PENDING to a terminal status
// exactly once. The conditional update is the idempotency barrier: a
// replayed callback or a poll racing a callback affects zero rows and
// grants no credits twice. The status flip and the credit grant share
// one transaction, so a failed grant leaves the row PENDING for
// ConfirmPending to retry. The unique external_transaction_id on the
// credit batch is the second line of defense.
func (s *Service) applyTerminalStatus(ctx context.Context, providerRef string, status paymentdomain.RequestStatus) error {
	if status != paymentdomain.StatusSuccessful && status != paymentdomain.StatusFailed {
		return paymentdomain.ErrInvalidEvent
	}

	var request paymentdomain.PaymentRequest
	if err := s.db.WithContext(ctx).
		Where("provider_ref = ?", providerRef).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return paymentdomain.ErrRequestNotFound
		}
		return err
	}

	now := s.clock.Now()
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			`UPDATE payment_requests
			SET status = ?, completed_at = ?, updated_at = ?
			WHERE provider_ref = ? AND status = ?`,
			status,
			now,
			now,
			providerRef,
			paymentdomain.StatusPending,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already in a terminal state; nothing left to do.
			return nil
		}
		applied = true

		if status != paymentdomain.StatusSuccessful {
			return nil
		}

		reference := request.Reference
		if _, err := s.creditSvc.PurchaseCreditsTx(ctx, tx, creditdomain.PurchaseCreditsRequest{
			SchoolID:              request.SchoolID,
			Count:                 request.Credits,
			AmountPaid:            request.Amount,
			Currency:              request.Currency,
			ExternalTransactionID: &reference,
		}); err != nil {
			if errors.Is(err, creditdomain.ErrDuplicateReference) {
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentEvent(request.Provider, string(status))
	}

	if status != paymentdomain.StatusSuccessful {
		s.log.Info("payment request failed",
			zap.String("reference", request.Reference),
		)
		return nil
	}

	s.log.Info("payment confirmed, credits granted",
		zap.String("reference", request.Reference),
		zap.String("school_id", request.SchoolID.String()),
		zap.Int64("credits", request.Credits),
	)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mginvestments/marketplace/internal/clock"
	creditdomain "github.com/mginvestments/marketplace/internal/credit/domain"
	obsmetrics "github.com/mginvestments/marketplace/internal/observability/metrics"
	"github.com/mginvestments/marketplace/internal/ratelimit"
	subscriptiondomain "github.com/mginvestments/marketplace/internal/subscription/domain"
	"github.com/mginvestments/marketplace/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errPairAlreadyContacted aborts the UseCredit transaction when a concurrent
// caller recorded the contact between our guard check and our insert. The
// rollback undoes the debit, so losing the race costs nothing.
var errPairAlreadyContacted = errors.New("pair already contacted")

const useCreditLockTTL = 5 * time.Second

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       creditdomain.Repository
	SubSvc     subscriptiondomain.Service
	Locker     *ratelimit.Locker   `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       creditdomain.Repository
	subSvc     subscriptiondomain.Service
	locker     *ratelimit.Locker
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) creditdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("credit.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		subSvc:     p.SubSvc,
		locker:     p.Locker,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) GetBalance(ctx context.Context, schoolID snowflake.ID) (int64, error) {
	if schoolID == 0 {
		return 0, creditdomain.ErrInvalidSchool
	}
	return s.repo.SumRemaining(ctx, s.db, schoolID, s.clock.Now())
}

func (s *Service) PurchaseCredits(ctx context.Context, req creditdomain.PurchaseCreditsRequest) (*creditdomain.CreditBatch, error) {
	return s.PurchaseCreditsTx(ctx, s.db, req)
}

func (s *Service) PurchaseCreditsTx(ctx context.Context, tx *gorm.DB, req creditdomain.PurchaseCreditsRequest) (*creditdomain.CreditBatch, error) {
	if req.SchoolID == 0 {
		return nil, creditdomain.ErrInvalidSchool
	}
	if req.Count <= 0 {
		return nil, creditdomain.ErrInvalidCount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "UGX"
	}

	now := s.clock.Now()
	batch := &creditdomain.CreditBatch{
		ID:                    s.genID.Generate(),
		SchoolID:              req.SchoolID,
		Purchased:             req.Count,
		Used:                  0,
		Remaining:             req.Count,
		Status:                creditdomain.BatchStatusActive,
		AmountPaid:            req.AmountPaid,
		Currency:              currency,
		ExternalTransactionID: req.ExternalTransactionID,
		PurchasedAt:           now,
		ExpiresAt:             req.ExpiresAt,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.repo.InsertBatch(ctx, tx, batch); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, creditdomain.ErrDuplicateReference
		}
		s.log.Error("failed to insert credit batch",
			zap.String("school_id", req.SchoolID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("insert credit batch: %w", err)
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordCreditsPurchased(req.Count)
	}
	s.log.Info("credit batch purchased",
		zap.String("school_id", req.SchoolID.String()),
		zap.String("batch_id", batch.ID.String()),
		zap.Int64("credits", req.Count),
	)
	return batch, nil
}

func (s *Service) CanContact(ctx context.Context, schoolID, teacherID snowflake.ID) (creditdomain.Decision, error) {
	if schoolID == 0 {
		return creditdomain.Decision{}, creditdomain.ErrInvalidSchool
	}
	if teacherID == 0 {
		return creditdomain.Decision{}, creditdomain.ErrInvalidTeacher
	}

	if _, err := s.repo.FindContact(ctx, s.db, schoolID, teacherID); err == nil {
		return creditdomain.Decision{Allowed: true, Reason: creditdomain.ReasonAlreadyContacted}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return creditdomain.Decision{}, err
	}

	now := s.clock.Now()
	sub, err := s.subSvc.ActiveForSchool(ctx, schoolID, now)
	if err != nil {
		return creditdomain.Decision{}, err
	}
	if sub != nil {
		return creditdomain.Decision{Allowed: true, Reason: creditdomain.ReasonSubscription}, nil
	}

	balance, err := s.repo.SumRemaining(ctx, s.db, schoolID, now)
	if err != nil {
		return creditdomain.Decision{}, err
	}
	if balance > 0 {
		return creditdomain.Decision{Allowed: true, Reason: creditdomain.ReasonCredit}, nil
	}

	return creditdomain.Decision{Allowed: false, Reason: creditdomain.ReasonNoAccess}, nil
}

// UseCredit records the contact and debits the oldest eligible batch in one
// database transaction: either both effects commit or neither does. Calling
// it again for the same pair is a no-op that returns the unchanged balance.
func (s *Service) UseCredit(ctx context.Context, schoolID, teacherID snowflake.ID) (*creditdomain.UseCreditResult, error) {
	if schoolID == 0 {
		return nil, creditdomain.ErrInvalidSchool
	}
	if teacherID == 0 {
		return nil, creditdomain.ErrInvalidTeacher
	}

	// Best-effort serialization per school. The conditional debit and the
	// unique contact index stay correct without it; the lock only shrinks
	// the window in which two callers race to the same batch.
	if s.locker != nil {
		key := "credit:use:" + schoolID.String()
		token, ok, err := s.locker.TryLock(ctx, key, useCreditLockTTL)
		if err == nil && ok {
			defer func() {
				if relErr := s.locker.Release(context.WithoutCancel(ctx), key, token); relErr != nil {
					s.log.Warn("failed to release credit lock", zap.Error(relErr))
				}
			}()
		}
	}

	now := s.clock.Now()
	result := &creditdomain.UseCreditResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if existing, err := s.repo.FindContact(ctx, tx, schoolID, teacherID); err == nil {
			result.Debited = false
			result.AccessMode = existing.AccessMode
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sub, err := s.subSvc.ActiveForSchool(ctx, schoolID, now)
		if err != nil {
			return err
		}
		if sub != nil {
			contact := &creditdomain.ContactRecord{
				ID:             s.genID.Generate(),
				SchoolID:       schoolID,
				TeacherID:      teacherID,
				AccessMode:     creditdomain.AccessModeSubscription,
				CreditConsumed: false,
				ContactedAt:    now,
				CreatedAt:      now,
			}
			inserted, err := s.repo.InsertContact(ctx, tx, contact)
			if err != nil {
				return err
			}
			if !inserted {
				return errPairAlreadyContacted
			}
			result.Debited = false
			result.AccessMode = creditdomain.AccessModeSubscription
			return nil
		}

		batches, err := s.repo.ActiveBatchesFIFO(ctx, tx, schoolID, now)
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			return creditdomain.ErrNoCreditsAvailable
		}

		var debited *creditdomain.CreditBatch
		for i := range batches {
			ok, err := s.repo.DebitBatch(ctx, tx, batches[i].ID, now)
			if err != nil {
				return err
			}
			if ok {
				debited = &batches[i]
				break
			}
			// Lost the batch to a concurrent debit; fall through to
			// the next-oldest one.
		}
		if debited == nil {
			return creditdomain.ErrNoCreditsAvailable
		}

		contact := &creditdomain.ContactRecord{
			ID:             s.genID.Generate(),
			SchoolID:       schoolID,
			TeacherID:      teacherID,
			AccessMode:     creditdomain.AccessModeCredit,
			CreditConsumed: true,
			BatchID:        &debited.ID,
			ContactedAt:    now,
			CreatedAt:      now,
		}
		inserted, err := s.repo.InsertContact(ctx, tx, contact)
		if err != nil {
			return err
		}
		if !inserted {
			return errPairAlreadyContacted
		}

		result.Debited = true
		result.AccessMode = creditdomain.AccessModeCredit
		return nil
	})
	if err != nil {
		if errors.Is(err, errPairAlreadyContacted) {
			// A concurrent caller won the pair; the debit rolled back.
			// Report the winner's record, same as the guard check would.
			existing, findErr := s.repo.FindContact(ctx, s.db, schoolID, teacherID)
			if findErr != nil {
				return nil, findErr
			}
			result.Debited = false
			result.AccessMode = existing.AccessMode
		} else {
			return nil, err
		}
	}

	remaining, err := s.repo.SumRemaining(ctx, s.db, schoolID, now)
	if err != nil {
		return nil, err
	}
	result.Remaining = remaining

	if result.Debited {
		if s.obsMetrics != nil {
			s.obsMetrics.RecordContact(string(result.AccessMode))
		}
		s.log.Info("credit consumed",
			zap.String("school_id", schoolID.String()),
			zap.String("teacher_id", teacherID.String()),
			zap.Int64("remaining", remaining),
		)
	}
	return result, nil
}

func (s *Service) GetCreditHistory(ctx context.Context, schoolID snowflake.ID) ([]creditdomain.CreditBatch, error) {
	if schoolID == 0 {
		return nil, creditdomain.ErrInvalidSchool
	}
	return s.repo.ListBatches(ctx, s.db, schoolID)
}

func (s *Service) GetContactHistory(ctx context.Context, schoolID snowflake.ID) ([]creditdomain.ContactRecord, error) {
	if schoolID == 0 {
		return nil, creditdomain.ErrInvalidSchool
	}
	return s.repo.ListContacts(ctx, s.db, schoolID)
}

func (s *Service) ListPackages(ctx context.Context) ([]creditdomain.CreditPackage, error) {
	return s.repo.ListPackages(ctx, s.db)
}

func (s *Service) GetPackageByCode(ctx context.Context, code string) (*creditdomain.CreditPackage, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return s.repo.FindPackageByCode(ctx, s.db, code)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mginvestments/marketplace/internal/clock"
	"github.com/mginvestments/marketplace/internal/reconcile"
	teacherdomain "github.com/mginvestments/marketplace/internal/teacher/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       teacherdomain.Repository
	Normalizer *reconcile.Normalizer
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       teacherdomain.Repository
	normalizer *reconcile.Normalizer
}

func NewService(p Params) teacherdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("teacher.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		normalizer: p.Normalizer,
	}
}

func (s *Service) Create(ctx context.Context, req teacherdomain.CreateTeacherRequest) (*teacherdomain.Teacher, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, teacherdomain.ErrInvalidName
	}

	source := req.Source
	if source == "" {
		source = "form"
	}

	now := s.clock.Now()
	teacher := &teacherdomain.Teacher{
		ID:              s.genID.Generate(),
		Name:            name,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		Subjects:        datatypes.NewJSONSlice(req.Subjects),
		ExperienceYears: req.ExperienceYears,
		Location:        strings.TrimSpace(req.Location),
		Active:          true,
		Source:          source,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, teacher); err != nil {
		s.log.Error("failed to insert teacher", zap.Error(err))
		return nil, err
	}
	return teacher, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*teacherdomain.Teacher, error) {
	if id == 0 {
		return nil, teacherdomain.ErrInvalidID
	}
	teacher, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teacherdomain.ErrNotFound
		}
		return nil, err
	}
	return teacher, nil
}

func (s *Service) List(ctx context.Context, filter teacherdomain.ListFilter) ([]teacherdomain.Teacher, error) {
	return s.repo.List(ctx, s.db, filter)
}

// Import normalizes heterogeneous rows from bulk uploads or legacy seeds and
// inserts the ones that survive normalization. Rows without a usable identity
// key, and rows whose email already exists, are skipped rather than failing
// the whole batch.
func (s *Service) Import(ctx context.Context, rows []map[string]any) (*teacherdomain.ImportResult, error) {
	result := &teacherdomain.ImportResult{}
	now := s.clock.Now()

	for i, row := range rows {
		canonical, err := s.normalizer.NormalizeTeacher(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i, err))
			continue
		}

		if canonical.Email != "" {
			if _, err := s.repo.FindByEmail(ctx, s.db, canonical.Email); err == nil {
				result.Skipped++
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}

		canonical.ID = s.genID.Generate()
		canonical.Source = "import"
		canonical.CreatedAt = now
		canonical.UpdatedAt = now

		if err := s.repo.Insert(ctx, s.db, canonical); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: insert failed", i))
			s.log.Warn("teacher import insert failed", zap.Int("row", i), zap.Error(err))
			continue
		}
		result.Imported++
	}

	return result, nil
}

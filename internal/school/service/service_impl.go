package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/mginvestments/marketplace/internal/clock"
	schooldomain "github.com/mginvestments/marketplace/internal/school/domain"
	"github.com/mginvestments/marketplace/pkg/db"
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
	Repo  schooldomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  schooldomain.Repository
}

func NewService(p Params) schooldomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("school.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req schooldomain.CreateSchoolRequest) (*schooldomain.School, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, schooldomain.ErrInvalidName
	}

	source := req.Source
	if source == "" {
		source = schooldomain.SourceForm
	}

	now := s.clock.Now()
	school := &schooldomain.School{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Location:  strings.TrimSpace(req.Location),
		Active:    true,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, school); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, schooldomain.ErrSlugTaken
		}
		s.log.Error("failed to insert school", zap.Error(err))
		return nil, err
	}
	return school, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*schooldomain.School, error) {
	if id == 0 {
		return nil, schooldomain.ErrInvalidID
	}
	school, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schooldomain.ErrNotFound
		}
		return nil, err
	}
	return school, nil
}

func (s *Service) List(ctx context.Context, filter schooldomain.ListFilter) ([]schooldomain.School, error) {
	return s.repo.List(ctx, s.db, filter)
}

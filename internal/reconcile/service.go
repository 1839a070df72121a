package reconcile

import (
	"context"

	"github.com/mginvestments/marketplace/internal/config"
	obsmetrics "github.com/mginvestments/marketplace/internal/observability/metrics"
	schooldomain "github.com/mginvestments/marketplace/internal/school/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Cfg        *config.ReconcileConfigHolder
	SchoolRepo schooldomain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

// Service runs duplicate detection and resolution over the school
// registry.
type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        *config.ReconcileConfigHolder
	schoolRepo schooldomain.Repository
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("reconcile.service"),
		cfg:        p.Cfg,
		schoolRepo: p.SchoolRepo,
		obsMetrics: p.ObsMetrics,
	}
}

// DuplicateReport is the outcome of one reconciliation run.
type DuplicateReport struct {
	Groups  []Group `json:"groups"`
	Removed int     `json:"removed"`
}

// FindDuplicateSchools loads the registry and runs the grouping heuristic
// without mutating anything.
func (s *Service) FindDuplicateSchools(ctx context.Context) ([]Group, error) {
	schools, err := s.schoolRepo.List(ctx, s.db, schooldomain.ListFilter{})
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(schools))
	for _, school := range schools {
		candidates = append(candidates, Candidate{
			ID:        school.ID,
			Name:      school.Name,
			Active:    school.Active,
			CreatedAt: school.CreatedAt,
		})
	}

	cfg := s.cfg.Get()
	return FindDuplicateGroups(candidates, cfg.DuplicateThreshold, cfg.ContainmentScore, cfg.MaxGroupSize), nil
}

// ResolveDuplicateSchools detects duplicate groups and deletes every
// record but the top-ranked one in each. Deletions are independent and
// best-effort: one failed delete does not block the others, and the
// reported count reflects successes only.
func (s *Service) ResolveDuplicateSchools(ctx context.Context) (*DuplicateReport, error) {
	groups, err := s.FindDuplicateSchools(ctx)
	if err != nil {
		return nil, err
	}

	removed := 0
	for _, group := range groups {
		for _, dup := range group.Duplicates {
			if err := s.schoolRepo.Delete(ctx, s.db, dup.ID); err != nil {
				s.log.Warn("failed to delete duplicate school",
					zap.String("school_id", dup.ID.String()),
					zap.Error(err),
				)
				continue
			}
			removed++
		}
	}

	if removed > 0 && s.obsMetrics != nil {
		s.obsMetrics.RecordDuplicatesResolved(removed)
	}
	s.log.Info("duplicate resolution finished",
		zap.Int("groups", len(groups)),
		zap.Int("removed", removed),
	)
	return &DuplicateReport{Groups: groups, Removed: removed}, nil
}

// FindHiddenSchools surfaces inactive but well-formed records as
// verification candidates: they have a name and at least one reachable
// contact field.
func (s *Service) FindHiddenSchools(ctx context.Context) ([]schooldomain.School, error) {
	hidden, err := s.schoolRepo.List(ctx, s.db, schooldomain.ListFilter{HiddenOnly: true})
	if err != nil {
		return nil, err
	}

	candidates := make([]schooldomain.School, 0, len(hidden))
	for _, school := range hidden {
		if school.Name == "" {
			continue
		}
		if school.Email == "" && school.Phone == "" {
			continue
		}
		candidates = append(candidates, school)
	}
	return candidates, nil
}

var Module = fx.Module("reconcile.service",
	fx.Provide(NewNormalizer),
	fx.Provide(NewService),
)

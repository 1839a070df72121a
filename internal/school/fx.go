package school

import (
	"github.com/mginvestments/marketplace/internal/school/repository"
	"github.com/mginvestments/marketplace/internal/school/service"
	"go.uber.org/fx"
)

var Module = fx.Module("school.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

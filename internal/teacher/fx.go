package teacher

import (
	"github.com/mginvestments/marketplace/internal/teacher/repository"
	"github.com/mginvestments/marketplace/internal/teacher/service"
	"go.uber.org/fx"
)

var Module = fx.Module("teacher.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

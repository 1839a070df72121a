package credit

import (
	"github.com/mginvestments/marketplace/internal/credit/repository"
	"github.com/mginvestments/marketplace/internal/credit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("credit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

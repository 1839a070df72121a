package payment

import (
	"github.com/mginvestments/marketplace/internal/payment/adapters"
	"github.com/mginvestments/marketplace/internal/payment/adapters/momo"
	"github.com/mginvestments/marketplace/internal/payment/service"
	"go.uber.org/fx"
)

func newRegistry() *adapters.Registry {
	return adapters.NewRegistry(momo.NewFactory())
}

var Module = fx.Module("payment.service",
	fx.Provide(newRegistry),
	fx.Provide(service.NewService),
)

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mginvestments/marketplace/internal/clock"
	"github.com/mginvestments/marketplace/internal/config"
	"github.com/mginvestments/marketplace/internal/credit"
	"github.com/mginvestments/marketplace/internal/logger"
	"github.com/mginvestments/marketplace/internal/migration"
	obsmetrics "github.com/mginvestments/marketplace/internal/observability/metrics"
	"github.com/mginvestments/marketplace/internal/payment"
	"github.com/mginvestments/marketplace/internal/ratelimit"
	"github.com/mginvestments/marketplace/internal/reconcile"
	"github.com/mginvestments/marketplace/internal/school"
	"github.com/mginvestments/marketplace/internal/server"
	"github.com/mginvestments/marketplace/internal/subscription"
	"github.com/mginvestments/marketplace/internal/teacher"
	"github.com/mginvestments/marketplace/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		obsmetrics.Module,
		ratelimit.Module,

		// Functional domains
		school.Module,
		teacher.Module,
		subscription.Module,
		credit.Module,
		reconcile.Module,
		payment.Module,

		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

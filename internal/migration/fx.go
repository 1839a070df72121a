package migration

import (
	"github.com/mginvestments/marketplace/internal/config"
	creditdomain "github.com/mginvestments/marketplace/internal/credit/domain"
	paymentdomain "github.com/mginvestments/marketplace/internal/payment/domain"
	schooldomain "github.com/mginvestments/marketplace/internal/school/domain"
	"github.com/mginvestments/marketplace/internal/seed"
	subscriptiondomain "github.com/mginvestments/marketplace/internal/subscription/domain"
	teacherdomain "github.com/mginvestments/marketplace/internal/teacher/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Dev dialects (sqlite, mysql) get the schema from gorm
			// directly; the SQL migrations are postgres-flavored.
			if err := conn.AutoMigrate(
				&schooldomain.School{},
				&teacherdomain.Teacher{},
				&subscriptiondomain.SchoolSubscription{},
				&creditdomain.CreditBatch{},
				&creditdomain.ContactRecord{},
				&creditdomain.CreditPackage{},
				&paymentdomain.PaymentRequest{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsureCreditPackages(conn); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)

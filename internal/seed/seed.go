// Package seed bootstraps reference data for local and self-hosted
// deployments.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	creditdomain "github.com/mginvestments/marketplace/internal/credit/domain"
	schooldomain "github.com/mginvestments/marketplace/internal/school/domain"
	"gorm.io/gorm"
)

var defaultPackages = []struct {
	Code    string
	Name    string
	Credits int64
	Price   int64
}{
	{Code: "starter", Name: "Starter", Credits: 5, Price: 25_000},
	{Code: "standard", Name: "Standard", Credits: 20, Price: 90_000},
	{Code: "bulk", Name: "Bulk", Credits: 50, Price: 200_000},
}

// EnsureCreditPackages seeds the sellable credit bundles once.
func EnsureCreditPackages(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range defaultPackages {
			var existing creditdomain.CreditPackage
			err := tx.WithContext(ctx).Where("code = ?", p.Code).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			pkg := creditdomain.CreditPackage{
				ID:        node.Generate(),
				Code:      p.Code,
				Name:      p.Name,
				Credits:   p.Credits,
				Price:     p.Price,
				Currency:  "UGX",
				Active:    true,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.WithContext(ctx).Create(&pkg).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureDemoData seeds one demo school so the API is explorable without
// an import. Gated behind SEED_DEMO_DATA.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	name := "Demo Academy"
	demoSlug := slug.Make(name)

	var existing schooldomain.School
	err = db.WithContext(ctx).Where("slug = ?", demoSlug).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	school := schooldomain.School{
		ID:        node.Generate(),
		Name:      name,
		Slug:      demoSlug,
		Email:     "demo@example.com",
		Phone:     "+256700000000",
		Location:  "Kampala",
		Active:    true,
		Source:    schooldomain.SourceForm,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).Create(&school).Error
}

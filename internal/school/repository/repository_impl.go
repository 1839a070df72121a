package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	schooldomain "github.com/mginvestments/marketplace/internal/school/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() schooldomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, school *schooldomain.School) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO schools (
			id, name, slug, email, phone, location, active, source, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		school.ID,
		school.Name,
		school.Slug,
		school.Email,
		school.Phone,
		school.Location,
		school.Active,
		school.Source,
		school.CreatedAt,
		school.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*schooldomain.School, error) {
	var school schooldomain.School
	if err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&school).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter schooldomain.ListFilter) ([]schooldomain.School, error) {
	query := db.WithContext(ctx).Model(&schooldomain.School{})
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.HiddenOnly {
		query = query.Where("active = ?", false)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var schools []schooldomain.School
	if err := query.Order("created_at DESC").Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM schools WHERE id = ?`, id).Error
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE schools SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active,
		id,
	).Error
}

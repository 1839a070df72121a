package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	teacherdomain "github.com/mginvestments/marketplace/internal/teacher/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() teacherdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, teacher *teacherdomain.Teacher) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO teachers (
			id, name, email, phone, subjects, experience_years, location, active, source, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		teacher.ID,
		teacher.Name,
		teacher.Email,
		teacher.Phone,
		teacher.Subjects,
		teacher.ExperienceYears,
		teacher.Location,
		teacher.Active,
		teacher.Source,
		teacher.CreatedAt,
		teacher.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*teacherdomain.Teacher, error) {
	var teacher teacherdomain.Teacher
	if err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&teacher).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*teacherdomain.Teacher, error) {
	var teacher teacherdomain.Teacher
	if err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&teacher).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter teacherdomain.ListFilter) ([]teacherdomain.Teacher, error) {
	query := db.WithContext(ctx).Model(&teacherdomain.Teacher{})
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var teachers []teacherdomain.Teacher
	if err := query.Order("created_at DESC").Find(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM teachers WHERE id = ?`, id).Error
}

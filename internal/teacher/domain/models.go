// Package domain contains persistence models for teacher profiles.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Teacher is one candidate profile schools can unlock.
type Teacher struct {
	ID              snowflake.ID                `json:"id" gorm:"primaryKey"`
	Name            string                      `json:"name" gorm:"type:text;not null;index"`
	Email           string                      `json:"email" gorm:"type:text;index"`
	Phone           string                      `json:"phone" gorm:"type:text"`
	Subjects        datatypes.JSONSlice[string] `json:"subjects" gorm:"type:jsonb"`
	ExperienceYears int                         `json:"experience_years" gorm:"not null;default:0"`
	Location        string                      `json:"location" gorm:"type:text"`
	Active          bool                        `json:"active" gorm:"not null;default:true;index"`
	Source          string                      `json:"source" gorm:"type:text;not null;default:'form'"`
	CreatedAt       time.Time                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time                   `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Teacher) TableName() string { return "teachers" }

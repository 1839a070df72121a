// Package domain contains persistence models for school registries.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// School is one hiring institution on the marketplace.
type School struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null;index"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Email     string       `json:"email" gorm:"type:text;index"`
	Phone     string       `json:"phone" gorm:"type:text"`
	Location  string       `json:"location" gorm:"type:text"`
	Active    bool         `json:"active" gorm:"not null;default:true;index"`
	Source    string       `json:"source" gorm:"type:text;not null;default:'form'"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (School) TableName() string { return "schools" }

// RecordSource values distinguish the data-entry path a record arrived through.
const (
	SourceForm   = "form"
	SourceImport = "import"
	SourceLegacy = "legacy"
)

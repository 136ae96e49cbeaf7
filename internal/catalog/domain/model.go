package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Service is a billable catalog entry. UnitPrice is in rupees and
// GSTRate is a percentage (18 means 18%).
type Service struct {
	ID snowflake.ID `gorm:"primaryKey"`

	Name        string  `gorm:"type:text;not null"`
	Description *string `gorm:"type:text"`
	HSNCode     string  `gorm:"column:hsn_code;type:text;not null"`
	UnitPrice   float64 `gorm:"column:unit_price;type:numeric(12,2);not null"`
	GSTRate     float64 `gorm:"column:gst_rate;type:numeric(5,2);not null"`

	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Service) TableName() string { return "services" }

func (s *Service) Validate() error {
	if s.Name == "" {
		return ErrInvalidName
	}
	if s.UnitPrice <= 0 {
		return ErrInvalidUnitPrice
	}
	if s.GSTRate < 0 || s.GSTRate > 100 {
		return ErrInvalidGSTRate
	}
	return nil
}

package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Testimonial is a client review shown on the public site once approved
type Testimonial struct {
	ID          uint                        `gorm:"primaryKey"`
	Name        string                      `gorm:"type:varchar(255);not null"`
	Testimonial string                      `gorm:"type:text;not null"`
	URLs        datatypes.JSONSlice[string] `gorm:"column:urls"`
	IsApproved  bool                        `gorm:"not null;default:false;column:is_approved;index"`
	ApprovedAt  *time.Time                  `gorm:"column:approved_at"`
	CreatedAt   time.Time                   `gorm:"not null"`
	UpdatedAt   time.Time                   `gorm:"not null"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}

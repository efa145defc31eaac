package models

import (
	"time"

	"gorm.io/gorm"
)

type Event struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Description string
	StartsAt    time.Time `gorm:"not null;index"`
	Category    string
}

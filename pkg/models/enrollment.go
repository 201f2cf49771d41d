package models

import (
	"time"

	"github.com/studiodanca/pagamentos/pkg/database"
)

type Student struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"size:255"`
	Email string `gorm:"size:255"`
	TaxID string `gorm:"size:20"` // CPF

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Student) TableName() string {
	return "ds_students"
}

// Enrollment links a student to a class plan. Checkouts reference it by its
// public id; the admin dashboard owns everything else about it.
type Enrollment struct {
	ID             uint   `gorm:"primaryKey"`
	StudentID      uint   `gorm:"index"`
	PlanName       string `gorm:"size:100"`
	MonthlyFee     int64  // cents
	Active         bool   `gorm:"default:true"`
	SubscriptionID string `gorm:"size:100"` // vendor subscription, when recurring

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Enrollment) TableName() string {
	return "ds_enrollments"
}

func init() {
	database.RegisterAutoMigrate(&Student{}, &Enrollment{})
}

package models

import (
	"time"

	"github.com/studiodanca/pagamentos/pkg/database"
)

type EventLog struct {
	ID        uint   `gorm:"primaryKey"`
	Kind      string `gorm:"size:30;index"` // payment_event, error, redirect, webhook
	Payload   string `gorm:"type:text"`     // JSON
	CreatedAt time.Time
}

func (e *EventLog) TableName() string {
	return "ds_event_logs"
}

func init() {
	database.RegisterAutoMigrate(&EventLog{})
}

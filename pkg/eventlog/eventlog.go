// Package eventlog keeps a small, capped operational log in the database:
// webhook deliveries, payment events, redirects and errors. It exists for
// diagnosis of the always-200 webhook path, where errors are swallowed at
// the HTTP boundary and the log is the only trace left.
package eventlog

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/studiodanca/pagamentos/pkg/models"
	"gorm.io/gorm"
)

type Kind string

const (
	KindPaymentEvent Kind = "payment_event"
	KindError        Kind = "error"
	KindRedirect     Kind = "redirect"
	KindWebhook      Kind = "webhook"
)

const defaultCap = 100

type Logger struct {
	db  *gorm.DB
	log *slog.Logger
	cap int
}

func New(db *gorm.DB, log *slog.Logger) *Logger {
	return &Logger{db: db, log: log, cap: defaultCap}
}

// Log appends one entry and trims the log to its cap in the same
// transaction. It never returns an error: callers use it inside already
// failing paths, so failures here go to the process logger instead.
func (l *Logger) Log(ctx context.Context, kind Kind, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		l.log.Error("eventlog: marshal failed", "kind", string(kind), "error", err)
		return
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := &models.EventLog{Kind: string(kind), Payload: string(data)}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		// Entries beyond the cap are dropped oldest-first. The id is the
		// insertion order, which matches time order for appends.
		var threshold []uint
		err := tx.Model(&models.EventLog{}).
			Order("id DESC").
			Offset(l.cap).
			Limit(1).
			Pluck("id", &threshold).Error
		if err != nil {
			return err
		}
		if len(threshold) == 0 {
			return nil
		}
		return tx.Where("id <= ?", threshold[0]).Delete(&models.EventLog{}).Error
	})
	if err != nil {
		l.log.Error("eventlog: write failed", "kind", string(kind), "error", err)
	}
}

// List returns entries in storage order (oldest first) when asc is true,
// newest first otherwise. Storage order is canonical.
func (l *Logger) List(ctx context.Context, asc bool) ([]models.EventLog, error) {
	order := "id DESC"
	if asc {
		order = "id ASC"
	}
	var entries []models.EventLog
	err := l.db.WithContext(ctx).Order(order).Find(&entries).Error
	return entries, err
}

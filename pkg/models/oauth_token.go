package models

import (
	"time"

	"github.com/studiodanca/pagamentos/pkg/database"
)

// OAuthToken holds the single access/refresh pair for one vendor. There is
// at most one row per provider; refreshes overwrite it in place.
type OAuthToken struct {
	ID           uint   `gorm:"primaryKey"`
	Provider     string `gorm:"size:50;uniqueIndex"`
	AccessToken  string `gorm:"size:500"`
	RefreshToken string `gorm:"size:500"`
	VendorUserID string `gorm:"size:100"`
	IssuedAt     time.Time
	ExpiresIn    int64 // seconds

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *OAuthToken) TableName() string {
	return "ds_oauth_tokens"
}

// ExpiresAt must be recomputed from the stored fields after every refresh.
func (t *OAuthToken) ExpiresAt() time.Time {
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

func init() {
	database.RegisterAutoMigrate(&OAuthToken{})
}

// Package tokenstore owns the OAuth access/refresh pair for a vendor
// integration: one row per provider, refreshed ahead of expiry so request
// paths almost never see an expired token.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studiodanca/pagamentos/pkg/models"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrNoToken means there is no usable token and the OAuth authorization
// flow must be re-run out-of-band. Callers treat it as fatal for the
// current request only.
var ErrNoToken = errors.New("tokenstore: no usable token on record")

// Token is the vendor-issued pair as returned by an authorization or
// refresh call.
type Token struct {
	AccessToken  string
	RefreshToken string
	VendorUserID string
	ExpiresIn    int64 // seconds
}

// Refresher exchanges a refresh token for a new pair. Each provider client
// that supports OAuth implements it.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*Token, error)
}

type Store struct {
	db    *gorm.DB
	log   *slog.Logger
	ahead time.Duration // refresh this long before expiry
	sf    singleflight.Group
	now   func() time.Time
}

func New(db *gorm.DB, log *slog.Logger) *Store {
	return &Store{
		db:    db,
		log:   log,
		ahead: time.Hour,
		now:   time.Now,
	}
}

// AccessToken returns a valid access token for the provider, refreshing it
// through r when the stored one is inside the refresh-ahead window.
// Concurrent near-expiry callers share a single refresh call.
func (s *Store) AccessToken(ctx context.Context, provider string, r Refresher) (string, error) {
	stored, err := s.load(ctx, provider)
	if err != nil {
		// unreadable or absent row: the authorization flow must run again
		return "", ErrNoToken
	}

	now := s.now()
	expiry := stored.ExpiresAt()
	if now.Before(expiry.Add(-s.ahead)) {
		return stored.AccessToken, nil
	}

	v, err, _ := s.sf.Do(provider, func() (interface{}, error) {
		fresh, err := r.RefreshToken(ctx, stored.RefreshToken)
		if err != nil {
			return nil, err
		}
		if err := s.Save(ctx, provider, fresh); err != nil {
			return nil, err
		}
		return fresh.AccessToken, nil
	})
	if err == nil {
		return v.(string), nil
	}

	// Refresh failed. The current token is still good until expiry, so fall
	// back to it rather than failing the request.
	if now.Before(expiry) {
		s.log.Warn("tokenstore: refresh failed, using current token until expiry",
			"provider", provider, "error", err)
		return stored.AccessToken, nil
	}

	s.log.Error("tokenstore: refresh failed and token expired", "provider", provider, "error", err)
	return "", ErrNoToken
}

// Save overwrites the provider's row and reads it back to verify the write
// actually landed before reporting success.
func (s *Store) Save(ctx context.Context, provider string, tok *Token) error {
	record := &models.OAuthToken{
		Provider:     provider,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		VendorUserID: tok.VendorUserID,
		IssuedAt:     s.now(),
		ExpiresIn:    tok.ExpiresIn,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider = ?", provider).Delete(&models.OAuthToken{}).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return fmt.Errorf("tokenstore: save failed: %w", err)
	}

	verify, err := s.load(ctx, provider)
	if err != nil || verify.AccessToken != tok.AccessToken {
		return fmt.Errorf("tokenstore: read-after-write verification failed for %s", provider)
	}
	return nil
}

func (s *Store) load(ctx context.Context, provider string) (*models.OAuthToken, error) {
	var record models.OAuthToken
	err := s.db.WithContext(ctx).Where("provider = ?", provider).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

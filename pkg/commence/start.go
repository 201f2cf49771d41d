// Package commence wires the application together: configuration, database,
// shared stores, payment channels and the HTTP router. Everything is built
// once here and passed down explicitly.
package commence

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/studiodanca/pagamentos/pkg/config"
	"github.com/studiodanca/pagamentos/pkg/database"
	"github.com/studiodanca/pagamentos/pkg/eventlog"
	"github.com/studiodanca/pagamentos/pkg/events"
	"github.com/studiodanca/pagamentos/pkg/idempotency"
	"github.com/studiodanca/pagamentos/pkg/logging"
	"github.com/studiodanca/pagamentos/pkg/payments"
	"github.com/studiodanca/pagamentos/pkg/payments/reconcile"
	"github.com/studiodanca/pagamentos/pkg/payments/types"
	"github.com/studiodanca/pagamentos/pkg/tokenstore"
	"github.com/studiodanca/pagamentos/pkg/web"
)

// Start builds the fully wired router. The caller owns serving it.
func Start(ctx context.Context, cfg *config.AppConfig) (*gin.Engine, error) {
	log := logging.New()

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	emitter := events.NewEmitter()
	if cfg.AWS.SQSQueueURL != "" {
		publisher, err := events.NewSQSPublisher(ctx,
			cfg.AWS.Region, cfg.AWS.AccessKey, cfg.AWS.Secret, cfg.AWS.SQSQueueURL)
		if err != nil {
			return nil, err
		}
		emitter.SetHandler(publisher)
		log.Info("SQS event publisher enabled", "queue", cfg.AWS.SQSQueueURL)
	}

	var dedup idempotency.Store
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		dedup = idempotency.NewRedisStore(rdb, 24*time.Hour)
	} else {
		dedup = idempotency.NewMemoryStore(24 * time.Hour)
	}

	deps := &types.Deps{
		DB:         db,
		Log:        log,
		Cfg:        cfg,
		EventLog:   eventlog.New(db, log),
		Tokens:     tokenstore.New(db, log),
		Events:     emitter,
		Reconciler: reconcile.New(db, log, emitter),
		HTTP:       &http.Client{Timeout: 10 * time.Second},
	}

	registry, err := payments.NewRegistry(deps)
	if err != nil {
		return nil, err
	}
	manager := payments.NewManager(deps, registry, dedup)

	log.Info("payment channels initialized", "channels", registry.AvailableChannels())

	return web.NewRouter(web.NewHandlers(deps, manager, registry)), nil
}

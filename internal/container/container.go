package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mksolution/account-service/config"
	"github.com/mksolution/account-service/internal/infrastructure/postgres"
	"github.com/mksolution/account-service/internal/ratelimit"
	"github.com/mksolution/account-service/pkg/helpers"
)

// Container holds every shared dependency, built once at startup and
// passed down explicitly. Optional infrastructure (Redis, GCS,
// Elasticsearch, RabbitMQ) is nil when not configured; consumers treat
// a nil client as the feature being off.
type Container struct {
	Cfg    *config.Config
	Logger *logrus.Logger

	PGPool   *pgxpool.Pool
	Redis    *redis.Client
	GCS      *storage.Client
	ES       *elasticsearch.Client
	Rabbit   *helpers.RabbitPublisher
	JWT      *helpers.JWTManager
	Sessions *helpers.SessionStore
	Limiter  *ratelimit.Limiter
}

// Build constructs the container from configuration. Postgres and the
// token manager are mandatory; everything else degrades to nil with a
// warning so the service can come up with partial infrastructure.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Cfg: cfg, Logger: logger}

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.PGPool = pool

	jwt, err := helpers.NewJWTManager(cfg.TokenSecret, cfg.TokenAlgorithm, cfg.AccessTokenTTL)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("token manager: %w", err)
	}
	c.JWT = jwt

	if cfg.RedisAddr != "" {
		c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, session revocation disabled")
			_ = c.Redis.Close()
			c.Redis = nil
		}
	}
	c.Sessions = helpers.NewSessionStore(c.Redis)

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs unavailable, certificate uploads disabled")
		} else {
			c.GCS = gcs
		}
	}

	if len(cfg.ESAddrs()) > 0 {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, client search disabled")
		} else {
			c.ES = es
		}
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, email delivery degraded")
		} else {
			c.Rabbit = pub
		}
	}

	c.Limiter = ratelimit.NewLimiter(
		cfg.RateLimitCapacity,
		cfg.RateLimitRefillRate,
		limiterScope(cfg.RateLimitScope),
		cfg.RateLimitIdleTTL,
	)

	return c, nil
}

func limiterScope(s string) ratelimit.Scope {
	if s == string(ratelimit.ScopeGlobal) {
		return ratelimit.ScopeGlobal
	}
	return ratelimit.ScopePerClient
}

// Close releases every held resource; safe on a partially built
// container.
func (c *Container) Close() {
	if c.Limiter != nil {
		c.Limiter.Stop()
	}
	if c.Rabbit != nil {
		c.Rabbit.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}

package repositories

import (
	"context"

	"chatwire/internal/core/ports"
	"chatwire/internal/infrastructure/repositories/memory"
	"chatwire/internal/infrastructure/repositories/postgres"
	redisrepo "chatwire/internal/infrastructure/repositories/redis"
	"chatwire/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories backed by Postgres when a database
// is configured and by the in-memory store otherwise. Redis, when enabled,
// is handed to the rate limiter.
type RepositoryFactory struct {
	usePostgres bool
	pgClient    *postgres.Client
	memStore    *memory.Store
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		usePostgres: cfg.Database.Enabled,
		logger:      logger,
	}

	if cfg.Database.Enabled {
		client, err := postgres.NewClient(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureSchema(ctx); err != nil {
			client.Close()
			return nil, err
		}
		factory.pgClient = client
		logger.Info("using Postgres repositories")
	} else {
		factory.memStore = memory.NewStore()
		logger.Info("using memory repositories")
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, continuing without it",
				"error", err,
			)
		} else {
			factory.redisClient = client
		}
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	if f.usePostgres {
		return postgres.NewUserRepository(f.pgClient)
	}
	return f.memStore.Users()
}

func (f *RepositoryFactory) CreateConversationRepository() ports.ConversationRepository {
	if f.usePostgres {
		return postgres.NewConversationRepository(f.pgClient)
	}
	return f.memStore.Conversations()
}

func (f *RepositoryFactory) CreateMessageRepository() ports.MessageRepository {
	if f.usePostgres {
		return postgres.NewMessageRepository(f.pgClient)
	}
	return f.memStore.Messages()
}

func (f *RepositoryFactory) CreateCallRepository() ports.CallRepository {
	if f.usePostgres {
		return postgres.NewCallRepository(f.pgClient)
	}
	return f.memStore.Calls()
}

// RedisClient returns the shared Redis client, nil when Redis is disabled
// or unreachable.
func (f *RepositoryFactory) RedisClient() *redis.Client {
	return f.redisClient
}

// Close closes the backing connections.
func (f *RepositoryFactory) Close() error {
	if f.pgClient != nil {
		f.pgClient.Close()
	}
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck verifies the backing stores are reachable.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.pgClient != nil {
		if err := f.pgClient.Ping(ctx); err != nil {
			return err
		}
	}
	if f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}

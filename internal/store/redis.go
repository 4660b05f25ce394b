package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/config"
	"github.com/ticketops/helpdesk-service/internal/domain"
)

const (
	redisTicketsKey = "helpdesk:tickets"
	redisUsersKey   = "helpdesk:users"
)

// RedisStore keeps each collection as one JSON blob under a fixed key, so
// Save is a single atomic SET.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects to Redis using the provided configuration.
func NewRedisStore(cfg config.StoreConfig, logger *zap.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis store")
	}

	return &RedisStore{client: client, logger: logger}
}

// LoadTickets reads the ticket blob, degrading to empty on absence or corruption.
func (s *RedisStore) LoadTickets(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := s.loadBlob(ctx, redisTicketsKey, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// SaveTickets replaces the ticket blob.
func (s *RedisStore) SaveTickets(ctx context.Context, tickets []domain.Ticket) error {
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return s.saveBlob(ctx, redisTicketsKey, tickets)
}

// LoadUsers reads the user blob, degrading to empty on absence or corruption.
func (s *RedisStore) LoadUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.loadBlob(ctx, redisUsersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers replaces the user blob.
func (s *RedisStore) SaveUsers(ctx context.Context, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	return s.saveBlob(ctx, redisUsersKey, users)
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() {
	if s != nil && s.client != nil {
		_ = s.client.Close()
	}
}

func (s *RedisStore) loadBlob(ctx context.Context, key string, out any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("corrupt store blob, treating as empty", zap.String("key", key), zap.Error(err))
		_ = json.Unmarshal([]byte("[]"), out)
	}
	return nil
}

func (s *RedisStore) saveBlob(ctx context.Context, key string, collection any) error {
	data, err := json.Marshal(collection)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}

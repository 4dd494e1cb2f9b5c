package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mesagoo-console/internal/common/config"
	"mesagoo-console/internal/common/errors"
	"mesagoo-console/internal/models"
)

// RedisStore persists the session in Redis so it survives console
// restarts. Keys are plain strings with no TTL; expiry is discovered
// reactively through a 401, never tracked client-side.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &RedisStore{client: rdb}
}

// NewRedisStoreWithClient wraps an existing client (tests use miniredis).
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *RedisStore) Settings(ctx context.Context) (Settings, error) {
	baseURL, err := s.get(ctx, keyBaseURL)
	if err != nil {
		return Settings{}, errors.NewSessionStoreError("read base url", err)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	token, err := s.get(ctx, keyBearerToken)
	if err != nil {
		return Settings{}, errors.NewSessionStoreError("read bearer token", err)
	}

	return Settings{BaseURL: baseURL, BearerToken: token}, nil
}

func (s *RedisStore) SetBaseURL(ctx context.Context, baseURL string) error {
	if err := s.client.Set(ctx, keyBaseURL, baseURL, 0).Err(); err != nil {
		return errors.NewSessionStoreError("write base url", err)
	}
	return nil
}

func (s *RedisStore) SetCredentials(ctx context.Context, token string, user *models.User) error {
	if err := s.client.Set(ctx, keyBearerToken, token, 0).Err(); err != nil {
		return errors.NewSessionStoreError("write bearer token", err)
	}

	if user == nil {
		// No profile in the login response; make sure a stale one is gone.
		if err := s.client.Del(ctx, keyUser).Err(); err != nil {
			return errors.NewSessionStoreError("clear user profile", err)
		}
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return errors.NewSessionStoreError("encode user profile", err)
	}
	if err := s.client.Set(ctx, keyUser, string(data), 0).Err(); err != nil {
		return errors.NewSessionStoreError("write user profile", err)
	}
	return nil
}

func (s *RedisStore) CurrentUser(ctx context.Context) *models.User {
	raw, err := s.get(ctx, keyUser)
	if err != nil || raw == "" {
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// Malformed cached profile is treated as "no user cached".
		return nil
	}
	return &user
}

func (s *RedisStore) Logout(ctx context.Context) error {
	if err := s.client.Del(ctx, keyBearerToken, keyUser).Err(); err != nil {
		return errors.NewSessionStoreError("clear session", err)
	}
	return nil
}

func (s *RedisStore) IsAuthenticated(ctx context.Context) bool {
	token, err := s.get(ctx, keyBearerToken)
	return err == nil && token != ""
}

// get reads a key, mapping redis.Nil to an empty string.
func (s *RedisStore) get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

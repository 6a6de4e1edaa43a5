package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// tokenKey mirrors the storage key the browser client used for the session token.
const tokenKey = "token"

type Client struct {
	rdb       *redis.Client
	namespace string
}

// NewClient connects to Redis and verifies the connection. namespace prefixes
// every key so several terminals can share one instance.
func NewClient(addr, password string, db int, namespace string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewClientFromRedis(rdb, namespace), nil
}

// NewClientFromRedis wraps an existing connection.
func NewClientFromRedis(rdb *redis.Client, namespace string) *Client {
	return &Client{rdb: rdb, namespace: namespace}
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) key(name string) string {
	if c.namespace == "" {
		return name
	}
	return c.namespace + ":" + name
}

// LoadToken returns the stored session token, or "" when none is stored.
func (c *Client) LoadToken(ctx context.Context) (string, error) {
	token, err := c.rdb.Get(ctx, c.key(tokenKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// SaveToken stores the session token without expiry; the backend decides validity.
func (c *Client) SaveToken(ctx context.Context, token string) error {
	if err := c.rdb.Set(ctx, c.key(tokenKey), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (c *Client) DeleteToken(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.key(tokenKey)).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

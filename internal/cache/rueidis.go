// Package cache keeps rendered catalog lists in Valkey/Redis.
// A nil or disabled *Cache is a valid no-op cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/rueidis"
)

type Config struct {
	Enabled  bool
	Addr     string
	Password string
	Prefix   string
	TTL      time.Duration
}

type Cache struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

// New connects to Valkey when enabled. Disabled config yields a no-op cache.
func New(cfg Config) (*Cache, error) {
	if !cfg.Enabled {
		return &Cache{prefix: cfg.Prefix, ttl: cfg.TTL}, nil
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      []string{cfg.Addr},
		Password:         cfg.Password,
		DisableCache:     true,
		ConnWriteTimeout: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	slog.Info("Connected to Valkey", "addr", cfg.Addr, "prefix", cfg.Prefix)
	return &Cache{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// GetJSON decodes the cached value into dest. It reports false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	seconds := int64(c.ttl / time.Second)
	if seconds < 1 {
		seconds = 60
	}
	cmd := c.client.B().Set().Key(c.key(key)).Value(rueidis.BinaryString(raw)).ExSeconds(seconds).Build()
	return c.client.Do(ctx, cmd).Error()
}

// DeletePrefix removes every key starting with prefix.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	if !c.enabled() {
		return nil
	}

	var cursor uint64
	for {
		entry, err := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(c.key(prefix)+"*").Count(200).Build()).AsScanEntry()
		if err != nil {
			return err
		}
		if len(entry.Elements) > 0 {
			if err := c.client.Do(ctx, c.client.B().Del().Key(entry.Elements...).Build()).Error(); err != nil {
				return err
			}
		}
		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

func (c *Cache) Close() {
	if c.enabled() {
		c.client.Close()
	}
}

package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shuttlecourt/internal/pkg/config"
	"shuttlecourt/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const courtKeyPrefix = "court:"

func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// CourtCache is a read-through cache over the court repository. Booking
// creation reads courts far more often than admins change them; checkout
// bypasses this cache on purpose so settlements always price fresh.
type CourtCache struct {
	client *redis.Client
	source commands.CourtRepository
	ttl    time.Duration
}

func NewCourtCache(client *redis.Client, source commands.CourtRepository, cfg config.RedisConfig) *CourtCache {
	return &CourtCache{client: client, source: source, ttl: cfg.CourtTTL}
}

func (c *CourtCache) FindByID(ctx context.Context, id uuid.UUID) (*commands.CourtSnapshot, error) {
	key := courtKeyPrefix + id.String()

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var snapshot commands.CourtSnapshot
		if err := json.Unmarshal(payload, &snapshot); err == nil {
			return &snapshot, nil
		}
		// Corrupt entries fall through to the source and get rewritten.
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down degrades to direct reads, never to errors.
		return c.source.FindByID(ctx, id)
	}

	snapshot, err := c.source.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(snapshot); err == nil {
		c.client.Set(ctx, key, payload, c.ttl)
	}
	return snapshot, nil
}

func (c *CourtCache) Invalidate(ctx context.Context, courtID uuid.UUID) error {
	return c.client.Del(ctx, courtKeyPrefix+courtID.String()).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sammiykay/community-alert/internal/domain"
)

type CommunityCacheService interface {
	GetActive(ctx context.Context) ([]domain.Community, error)
	SetActive(ctx context.Context, communities []domain.Community, ttl time.Duration) error
}

type CommunityCache struct {
	client *goredis.Client
	key    string
}

func NewCommunityCache(r *Redis) *CommunityCache {
	return &CommunityCache{
		client: r.Client,
		key:    "communities:active",
	}
}

func (c *CommunityCache) GetActive(ctx context.Context) ([]domain.Community, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var communities []domain.Community
	if err := json.Unmarshal(data, &communities); err != nil {
		return nil, err
	}

	return communities, nil
}

func (c *CommunityCache) SetActive(ctx context.Context, communities []domain.Community, ttl time.Duration) error {
	b, err := json.Marshal(communities)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, ttl).Err()
}

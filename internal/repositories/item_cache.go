package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rentalBack/internal/models"
)

const itemCacheTTL = 5 * time.Minute

// ItemCache keeps item detail responses in Redis. A miss or any Redis
// failure falls through to the database; entries are invalidated
// whenever the rental lifecycle touches the item status.
type ItemCache struct {
	RDB *redis.Client
}

func itemCacheKey(itemID int) string {
	return fmt.Sprintf("item:%d", itemID)
}

func (c *ItemCache) Get(ctx context.Context, itemID int) (models.Item, bool) {
	if c == nil || c.RDB == nil {
		return models.Item{}, false
	}
	data, err := c.RDB.Get(ctx, itemCacheKey(itemID)).Bytes()
	if err != nil {
		return models.Item{}, false
	}
	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return models.Item{}, false
	}
	return item, true
}

func (c *ItemCache) Set(ctx context.Context, item models.Item) {
	if c == nil || c.RDB == nil {
		return
	}
	data, err := json.Marshal(item)
	if err != nil {
		return
	}
	c.RDB.Set(ctx, itemCacheKey(item.ID), data, itemCacheTTL)
}

func (c *ItemCache) Invalidate(ctx context.Context, itemID int) {
	if c == nil || c.RDB == nil {
		return
	}
	// eviction is best effort; the TTL bounds staleness
	c.RDB.Del(ctx, itemCacheKey(itemID))
}

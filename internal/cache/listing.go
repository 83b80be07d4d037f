package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/types"
	"github.com/lamyda/lamyda-backend/internal/utils"
)

// ProcessListingCache holds the most recent fetched snapshot of a company's
// process listing. Sequential ids are still derived on every read of the
// snapshot; only the fetched rows are cached, never the numbering.
type ProcessListingCache struct {
	log *logger.Logger
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisClient(log *logger.Logger) *redis.Client {
	addr := utils.GetEnv("REDIS_ADDR", "localhost:6379", log)
	password := utils.GetEnv("REDIS_PASSWORD", "", log)
	db := utils.GetEnvAsInt("REDIS_DB", 0, log)
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewProcessListingCache(log *logger.Logger, rdb *redis.Client) *ProcessListingCache {
	ttlSeconds := utils.GetEnvAsInt("PROCESS_LISTING_CACHE_TTL", 60, log)
	return &ProcessListingCache{
		log: log.With("service", "ProcessListingCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}
}

func listingKey(companyID uuid.UUID) string {
	return fmt.Sprintf("processes:company:%s", companyID.String())
}

func (c *ProcessListingCache) Get(ctx context.Context, companyID uuid.UUID) ([]*types.Process, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, listingKey(companyID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("listing cache read failed", "company_id", companyID, "error", err)
		return nil, false
	}
	var snapshot []*types.Process
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.log.Warn("listing cache snapshot corrupt, ignoring", "company_id", companyID, "error", err)
		return nil, false
	}
	return snapshot, true
}

func (c *ProcessListingCache) Set(ctx context.Context, companyID uuid.UUID, snapshot []*types.Process) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.log.Warn("listing cache marshal failed", "company_id", companyID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, listingKey(companyID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("listing cache write failed", "company_id", companyID, "error", err)
	}
}

func (c *ProcessListingCache) Invalidate(ctx context.Context, companyID uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, listingKey(companyID)).Err(); err != nil {
		c.log.Warn("listing cache invalidate failed", "company_id", companyID, "error", err)
	}
}

package leaderboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// cacheKey is the sorted set holding all-time XP scores, member = user id.
const cacheKey = "leaderboard:alltime"

// Cache is a Redis sorted-set mirror of the all-time leaderboard. It is a
// read accelerator, not the source of truth: entries are refreshed on every
// XP award and reads fall back to SQL when the set is cold. Ties in the ZSET
// order by member id rather than earliest achievement, which is acceptable
// staleness for the display path.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// RecordScore upserts a user's all-time XP score.
func (c *Cache) RecordScore(ctx context.Context, userID, totalXP int64) error {
	err := c.rdb.ZAdd(ctx, cacheKey, redis.Z{
		Score:  float64(totalXP),
		Member: strconv.FormatInt(userID, 10),
	}).Err()
	if err != nil {
		return fmt.Errorf("leaderboard cache zadd: %w", err)
	}
	return nil
}

// TopScores returns the highest-scored user ids with their XP, best first.
func (c *Cache) TopScores(ctx context.Context, limit int) ([]ScoredUser, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, cacheKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard cache range: %w", err)
	}
	users := make([]ScoredUser, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		users = append(users, ScoredUser{UserID: id, TotalXP: int64(z.Score)})
	}
	return users, nil
}

// Rank returns a user's 1-based position, or 0 if not in the set.
func (c *Cache) Rank(ctx context.Context, userID int64) (int, error) {
	rank, err := c.rdb.ZRevRank(ctx, cacheKey, strconv.FormatInt(userID, 10)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("leaderboard cache rank: %w", err)
	}
	return int(rank) + 1, nil
}

// ScoredUser is a cache entry: a user id and its all-time XP.
type ScoredUser struct {
	UserID  int64
	TotalXP int64
}

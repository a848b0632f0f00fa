package leaderboard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCache(rdb)
}

func TestCacheRecordAndRank(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	scores := map[int64]int64{1: 300, 2: 150, 3: 500}
	for id, xp := range scores {
		if err := cache.RecordScore(ctx, id, xp); err != nil {
			t.Fatalf("RecordScore(%d): %v", id, err)
		}
	}

	rank, err := cache.Rank(ctx, 3)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if rank != 1 {
		t.Errorf("rank of top scorer = %d, want 1", rank)
	}

	rank, err = cache.Rank(ctx, 2)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if rank != 3 {
		t.Errorf("rank of lowest scorer = %d, want 3", rank)
	}
}

func TestCacheRankUnknownUser(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	rank, err := cache.Rank(ctx, 42)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if rank != 0 {
		t.Errorf("rank of unknown user = %d, want 0", rank)
	}
}

func TestCacheRecordScoreUpsert(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	if err := cache.RecordScore(ctx, 1, 100); err != nil {
		t.Fatalf("RecordScore: %v", err)
	}
	if err := cache.RecordScore(ctx, 2, 200); err != nil {
		t.Fatalf("RecordScore: %v", err)
	}
	// Re-recording replaces the score rather than accumulating.
	if err := cache.RecordScore(ctx, 1, 400); err != nil {
		t.Fatalf("RecordScore: %v", err)
	}

	top, err := cache.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d entries, want 2", len(top))
	}
	if top[0].UserID != 1 || top[0].TotalXP != 400 {
		t.Errorf("top entry = %+v, want user 1 with 400 XP", top[0])
	}
	if top[1].UserID != 2 || top[1].TotalXP != 200 {
		t.Errorf("second entry = %+v, want user 2 with 200 XP", top[1])
	}
}

func TestCacheTopScoresLimit(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	for i := int64(1); i <= 5; i++ {
		if err := cache.RecordScore(ctx, i, i*100); err != nil {
			t.Fatalf("RecordScore(%d): %v", i, err)
		}
	}

	top, err := cache.TopScores(ctx, 3)
	if err != nil {
		t.Fatalf("TopScores: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("got %d entries, want 3", len(top))
	}
	want := []int64{5, 4, 3}
	for i, w := range want {
		if top[i].UserID != w {
			t.Errorf("entry %d user = %d, want %d", i, top[i].UserID, w)
		}
	}
}

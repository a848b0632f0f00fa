package leaderboard

import (
	"context"
	"log"

	"github.com/constitution-quest/backend/internal/models"
	"github.com/constitution-quest/backend/internal/progress"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Source reads ranked entries. *Store is the SQL implementation.
type Source interface {
	TopN(ctx context.Context, scope string, limit int) ([]models.LeaderboardEntry, error)
	UserEntry(ctx context.Context, scope string, userID int64) (*models.LeaderboardEntry, error)
	AllTimeRank(ctx context.Context, userID int64) (int, error)
	WeeklyRank(ctx context.Context, userID int64) (int, error)
}

// Service serves ranked leaderboard views. The SQL store is authoritative;
// when a Redis cache is attached, all-time rank lookups hit the cache first
// and fall through to SQL on a miss or error.
type Service struct {
	store  Source
	cache  *Cache
	stepXP int64
}

func NewService(store Source) *Service {
	return &Service{store: store, stepXP: progress.LevelStepFromEnv()}
}

// WithCache attaches a Redis sorted-set cache for all-time rank reads.
func (s *Service) WithCache(c *Cache) *Service {
	s.cache = c
	return s
}

// Leaderboard returns the top entries for the scope plus the requesting
// user's own entry when they fall outside the listed range. currentUserID
// of 0 means anonymous.
func (s *Service) Leaderboard(ctx context.Context, scope string, limit int, currentUserID int64) (*models.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	entries, err := s.store.TopN(ctx, scope, limit)
	if err != nil {
		return nil, err
	}

	resp := &models.LeaderboardResponse{Scope: scope, Entries: entries}
	inTop := false
	for i := range resp.Entries {
		resp.Entries[i].Level = progress.Level(resp.Entries[i].TotalXP, s.stepXP)
		if currentUserID != 0 && resp.Entries[i].UserID == currentUserID {
			resp.Entries[i].IsCurrentUser = true
			inTop = true
		}
	}

	if currentUserID != 0 && !inTop {
		entry, err := s.userEntry(ctx, scope, currentUserID)
		if err != nil {
			log.Printf("[leaderboard] current user entry for %d: %v", currentUserID, err)
		} else if entry != nil {
			entry.Level = progress.Level(entry.TotalXP, s.stepXP)
			entry.IsCurrentUser = true
			resp.CurrentUser = entry
		}
	}
	return resp, nil
}

func (s *Service) userEntry(ctx context.Context, scope string, userID int64) (*models.LeaderboardEntry, error) {
	if scope == ScopeAllTime && s.cache != nil {
		if rank, err := s.cache.Rank(ctx, userID); err == nil && rank > 0 {
			entry, err := s.store.UserEntry(ctx, scope, userID)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				entry.Rank = rank
			}
			return entry, nil
		} else if err != nil {
			log.Printf("[leaderboard] cache rank miss for %d: %v", userID, err)
		}
	}
	return s.store.UserEntry(ctx, scope, userID)
}

// AllTimeRank satisfies the rank lookup used by profile projection,
// preferring the cache when one is attached.
func (s *Service) AllTimeRank(ctx context.Context, userID int64) (int, error) {
	if s.cache != nil {
		if rank, err := s.cache.Rank(ctx, userID); err == nil && rank > 0 {
			return rank, nil
		}
	}
	return s.store.AllTimeRank(ctx, userID)
}

// WeeklyRank reports the user's rank by XP earned this week.
func (s *Service) WeeklyRank(ctx context.Context, userID int64) (int, error) {
	return s.store.WeeklyRank(ctx, userID)
}

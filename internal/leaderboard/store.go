package leaderboard

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/constitution-quest/backend/internal/models"
)

// Scopes a leaderboard can be ranked over.
const (
	ScopeAllTime = "alltime"
	ScopeWeekly  = "weekly"
)

// Store computes leaderboard positions from the progress tables. Ties on XP
// break by earliest achievement of that total (xp_updated_at ascending) —
// whoever got there first ranks higher.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func scopeColumn(scope string) (string, error) {
	switch scope {
	case ScopeAllTime:
		return "total_xp", nil
	case ScopeWeekly:
		return "weekly_xp", nil
	default:
		return "", fmt.Errorf("invalid leaderboard scope %q", scope)
	}
}

// TopN returns the highest-ranked users for a scope, with display names.
func (s *Store) TopN(ctx context.Context, scope string, limit int) ([]models.LeaderboardEntry, error) {
	col, err := scopeColumn(scope)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.name, COALESCE(u.username, ''), p.total_xp, p.weekly_xp,
		        ROW_NUMBER() OVER (ORDER BY p.`+col+` DESC, p.xp_updated_at ASC) AS rank
		 FROM user_progress p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.`+col+` > 0
		 ORDER BY p.`+col+` DESC, p.xp_updated_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top %s leaderboard: %w", scope, err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		var fullName string
		if err := rows.Scan(&e.UserID, &fullName, &e.Username, &e.TotalXP, &e.WeeklyXP, &e.Rank); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		e.DisplayName = models.User{Name: fullName}.DisplayName()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) rank(ctx context.Context, col string, userID int64) (int, error) {
	var rank int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(
		    (SELECT rank FROM (
		        SELECT user_id, ROW_NUMBER() OVER (ORDER BY `+col+` DESC, xp_updated_at ASC) AS rank
		        FROM user_progress WHERE `+col+` > 0
		    ) r WHERE r.user_id = $1),
		    0
		)`,
		userID,
	).Scan(&rank)
	return rank, err
}

// AllTimeRank returns the user's 1-based rank by total XP, 0 if unranked.
func (s *Store) AllTimeRank(ctx context.Context, userID int64) (int, error) {
	return s.rank(ctx, "total_xp", userID)
}

// WeeklyRank returns the user's 1-based rank by weekly XP, 0 if unranked.
func (s *Store) WeeklyRank(ctx context.Context, userID int64) (int, error) {
	return s.rank(ctx, "weekly_xp", userID)
}

// UserEntry returns a single user's leaderboard entry for a scope.
func (s *Store) UserEntry(ctx context.Context, scope string, userID int64) (*models.LeaderboardEntry, error) {
	col, err := scopeColumn(scope)
	if err != nil {
		return nil, err
	}
	rank, err := s.rank(ctx, col, userID)
	if err != nil {
		return nil, fmt.Errorf("user rank: %w", err)
	}
	if rank == 0 {
		return nil, nil
	}

	var e models.LeaderboardEntry
	var fullName string
	err = s.db.QueryRowContext(ctx,
		`SELECT u.id, u.name, COALESCE(u.username, ''), p.total_xp, p.weekly_xp
		 FROM user_progress p JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = $1`,
		userID,
	).Scan(&e.UserID, &fullName, &e.Username, &e.TotalXP, &e.WeeklyXP)
	if err != nil {
		return nil, fmt.Errorf("user entry: %w", err)
	}
	e.Rank = rank
	e.DisplayName = models.User{Name: fullName}.DisplayName()
	return &e, nil
}

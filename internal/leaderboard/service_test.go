package leaderboard

import (
	"context"
	"testing"

	"github.com/constitution-quest/backend/internal/models"
)

// stubSource serves canned entries per scope, standing in for the SQL store.
type stubSource struct {
	entries map[string][]models.LeaderboardEntry
	extra   map[int64]models.LeaderboardEntry
}

func (s *stubSource) TopN(ctx context.Context, scope string, limit int) ([]models.LeaderboardEntry, error) {
	if _, err := scopeColumn(scope); err != nil {
		return nil, err
	}
	entries := s.entries[scope]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]models.LeaderboardEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *stubSource) UserEntry(ctx context.Context, scope string, userID int64) (*models.LeaderboardEntry, error) {
	if e, ok := s.extra[userID]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *stubSource) AllTimeRank(ctx context.Context, userID int64) (int, error) { return 0, nil }
func (s *stubSource) WeeklyRank(ctx context.Context, userID int64) (int, error)  { return 0, nil }

func TestWeeklyLeaderboardReportsWeeklyXP(t *testing.T) {
	// A user with a modest all-time total but a strong week outranks a
	// veteran who was mostly idle this week. The entries must carry the
	// weekly figure that produced that order.
	src := &stubSource{entries: map[string][]models.LeaderboardEntry{
		ScopeWeekly: {
			{Rank: 1, UserID: 1, DisplayName: "Asha", TotalXP: 100, WeeklyXP: 90},
			{Rank: 2, UserID: 2, DisplayName: "Vikram", TotalXP: 500, WeeklyXP: 40},
		},
	}}
	svc := NewService(src)

	resp, err := svc.Leaderboard(context.Background(), ScopeWeekly, 10, 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(resp.Entries))
	}

	first, second := resp.Entries[0], resp.Entries[1]
	if first.UserID != 1 || first.WeeklyXP != 90 {
		t.Errorf("first = user %d weekly %d, want user 1 weekly 90", first.UserID, first.WeeklyXP)
	}
	if second.UserID != 2 || second.WeeklyXP != 40 {
		t.Errorf("second = user %d weekly %d, want user 2 weekly 40", second.UserID, second.WeeklyXP)
	}
	if first.WeeklyXP < second.WeeklyXP {
		t.Error("weekly entries not ordered by weekly xp")
	}

	// Level still derives from all-time XP regardless of scope.
	if second.Level != 2 {
		t.Errorf("level = %d, want 2 for 500 total XP", second.Level)
	}
}

func TestLeaderboardMarksCurrentUserInTop(t *testing.T) {
	src := &stubSource{entries: map[string][]models.LeaderboardEntry{
		ScopeAllTime: {
			{Rank: 1, UserID: 1, TotalXP: 300},
			{Rank: 2, UserID: 2, TotalXP: 200},
		},
	}}
	svc := NewService(src)

	resp, err := svc.Leaderboard(context.Background(), ScopeAllTime, 10, 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if !resp.Entries[1].IsCurrentUser {
		t.Error("current user in top not marked")
	}
	if resp.CurrentUser != nil {
		t.Error("current user appended despite being in the top entries")
	}
}

func TestLeaderboardAppendsCurrentUserOutsideTop(t *testing.T) {
	src := &stubSource{
		entries: map[string][]models.LeaderboardEntry{
			ScopeAllTime: {
				{Rank: 1, UserID: 1, TotalXP: 300},
				{Rank: 2, UserID: 2, TotalXP: 200},
			},
		},
		extra: map[int64]models.LeaderboardEntry{
			7: {Rank: 42, UserID: 7, TotalXP: 30},
		},
	}
	svc := NewService(src)

	resp, err := svc.Leaderboard(context.Background(), ScopeAllTime, 2, 7)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if resp.CurrentUser == nil {
		t.Fatal("current user entry missing")
	}
	if resp.CurrentUser.Rank != 42 || !resp.CurrentUser.IsCurrentUser {
		t.Errorf("current user = %+v, want rank 42 marked as current", resp.CurrentUser)
	}
}

func TestLeaderboardRejectsUnknownScope(t *testing.T) {
	svc := NewService(&stubSource{})
	if _, err := svc.Leaderboard(context.Background(), "monthly", 10, 0); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

package models

import "time"

// ── Ledger Types ─────────────────────────────────────────

// ProgressRecord is a user's full progress ledger: cumulative XP,
// completion sets, and earned badges. Every user implicitly has one
// from their first interaction; a missing row reads as the zero record.
type ProgressRecord struct {
	UserID            int64             `json:"user_id"`
	TotalXP           int64             `json:"total_xp"`
	WeeklyXP          int64             `json:"weekly_xp"`
	CompletedChapters map[int64][]int64 `json:"completed_chapters"`
	CompletedQuizzes  map[int64][]int64 `json:"completed_quizzes"`
	Badges            []string          `json:"badges"`
}

// ChapterDone reports whether chapterID is in the completed-chapters set for moduleID.
func (p *ProgressRecord) ChapterDone(moduleID, chapterID int64) bool {
	return containsID(p.CompletedChapters[moduleID], chapterID)
}

// QuizDone reports whether the quiz for chapterID has been completed in moduleID.
func (p *ProgressRecord) QuizDone(moduleID, chapterID int64) bool {
	return containsID(p.CompletedQuizzes[moduleID], chapterID)
}

// HasBadge reports whether the badge is already held.
func (p *ProgressRecord) HasBadge(badge string) bool {
	for _, b := range p.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ChapterRef identifies a chapter within a module.
type ChapterRef struct {
	ModuleID  int64
	ChapterID int64
}

// BadgeGrant is a badge award candidate. XPBonus is applied only when the
// badge is newly inserted, so a bonus can never be paid twice.
type BadgeGrant struct {
	Badge   string
	XPBonus int64
}

// ProgressDelta is a single atomic mutation of a user's ledger.
//
// Set fields use insert-if-absent semantics: re-adding a present id is a
// no-op, not an error. ChapterXP is awarded only if NewChapter was actually
// inserted; XPDelta is awarded unconditionally.
type ProgressDelta struct {
	XPDelta        int64
	NewChapter     *ChapterRef
	ChapterXP      int64
	NewQuizChapter *ChapterRef
	NewBadges      []BadgeGrant
}

// AppliedDelta describes what a ProgressDelta actually changed.
// NewTotalXP is the post-delta cumulative XP, valid when XPAwarded > 0.
type AppliedDelta struct {
	XPAwarded        int64
	ChapterAdded     bool
	QuizChapterAdded bool
	BadgesAwarded    []string
	NewTotalXP       int64
}

// QuizAttempt is one append-only audit row per quiz submission.
// Attempts are never mutated, deleted, or read back by the reward rules.
type QuizAttempt struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ModuleID  int64     `json:"module_id"`
	ChapterID int64     `json:"chapter_id"`
	Score     int       `json:"score"`
	EarnedXP  int64     `json:"earned_xp"`
	CreatedAt time.Time `json:"created_at"`
}

// ── Request Types ────────────────────────────────────────

type ChapterCompleteRequest struct {
	ModuleID  int64 `json:"module_id"`
	ChapterID int64 `json:"chapter_id"`
}

type QuizSubmitRequest struct {
	ModuleID  int64 `json:"module_id"`
	ChapterID int64 `json:"chapter_id"`
	Score     int   `json:"score"`
	EarnedXP  int64 `json:"earned_xp"`
}

// ── Response Types ────────────────────────────────────────

// RewardResult is what every reward event returns: the XP granted by this
// call and any badges newly unlocked by it.
type RewardResult struct {
	XPAwarded     int64    `json:"xp_awarded"`
	BadgesAwarded []string `json:"badges_awarded"`
}

type ProfileResponse struct {
	UserID            int64            `json:"user_id"`
	TotalXP           int64            `json:"total_xp"`
	WeeklyXP          int64            `json:"weekly_xp"`
	Level             int              `json:"level"`
	LevelProgress     int              `json:"level_progress"`
	NextLevelXP       int64            `json:"next_level_xp"`
	AllTimeRank       int              `json:"all_time_rank"`
	WeeklyRank        int              `json:"weekly_rank"`
	Badges            []EarnedBadge    `json:"badges"`
	CompletedModules  int              `json:"completed_modules"`
	CompletedChapters int              `json:"completed_chapters"`
	TotalChapters     int              `json:"total_chapters"`
	PassedQuizzes     int              `json:"passed_quizzes"`
	TotalQuizzes      int              `json:"total_quizzes"`
	AverageScore      int              `json:"average_score"`
	PerfectScores     int              `json:"perfect_scores"`
	TotalQuizAttempts int              `json:"total_quiz_attempts"`
	ModuleProgress    []ModuleProgress `json:"module_progress"`
	RecentAttempts    []QuizAttempt    `json:"recent_attempts"`
}

type EarnedBadge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

type ModuleProgress struct {
	ModuleID          int64  `json:"module_id"`
	Title             string `json:"title"`
	CompletedChapters int    `json:"completed_chapters"`
	TotalChapters     int    `json:"total_chapters"`
	Progress          int    `json:"progress"`
	Completed         bool   `json:"completed"`
}

type LeaderboardResponse struct {
	Scope       string             `json:"scope"`
	Entries     []LeaderboardEntry `json:"entries"`
	CurrentUser *LeaderboardEntry  `json:"current_user,omitempty"`
}

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        int64  `json:"user_id"`
	DisplayName   string `json:"display_name"`
	Username      string `json:"username"`
	TotalXP       int64  `json:"total_xp"`
	WeeklyXP      int64  `json:"weekly_xp"`
	Level         int    `json:"level"`
	IsCurrentUser bool   `json:"is_current_user"`
}

type BadgeCatalogResponse struct {
	Badges []BadgeStatus `json:"badges"`
}

type BadgeStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	XPReward    int64  `json:"xp_reward"`
	Earned      bool   `json:"earned"`
}

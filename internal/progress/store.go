package progress

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/constitution-quest/backend/internal/models"
)

// Store is the Postgres-backed Progress Ledger. It exclusively owns
// mutation of user progress rows; every other component reads projections.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetProgress assembles the full ledger for a user. A user with no rows yet
// reads as the implicit empty record — zero XP, empty sets — never an error.
func (s *Store) GetProgress(ctx context.Context, userID int64) (*models.ProgressRecord, error) {
	rec := &models.ProgressRecord{
		UserID:            userID,
		CompletedChapters: map[int64][]int64{},
		CompletedQuizzes:  map[int64][]int64{},
		Badges:            []string{},
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT total_xp, weekly_xp FROM user_progress WHERE user_id = $1`,
		userID,
	).Scan(&rec.TotalXP, &rec.WeeklyXP)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get progress row: %w", err)
	}

	if err := s.loadCompletionSet(ctx, "chapter_completions", userID, rec.CompletedChapters); err != nil {
		return nil, err
	}
	if err := s.loadCompletionSet(ctx, "quiz_completions", userID, rec.CompletedQuizzes); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT badge FROM user_badges WHERE user_id = $1 ORDER BY earned_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get badges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		rec.Badges = append(rec.Badges, b)
	}
	return rec, rows.Err()
}

func (s *Store) loadCompletionSet(ctx context.Context, table string, userID int64, out map[int64][]int64) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT module_id, chapter_id FROM `+table+` WHERE user_id = $1 ORDER BY module_id, chapter_id`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("get %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var moduleID, chapterID int64
		if err := rows.Scan(&moduleID, &chapterID); err != nil {
			return err
		}
		out[moduleID] = append(out[moduleID], chapterID)
	}
	return rows.Err()
}

// ApplyDelta merges a delta into the stored ledger in one transaction.
//
// XP is applied as a relative UPDATE, never read-then-write-whole-record, so
// concurrent deltas for the same user cannot lose updates. Set inserts use
// ON CONFLICT DO NOTHING; conditional XP (ChapterXP, badge bonuses) is only
// added when the corresponding insert actually landed, which is what makes
// re-delivered events award zero. The whole delta commits or rolls back as a
// unit — no badge-without-XP partial states.
func (s *Store) ApplyDelta(ctx context.Context, userID int64, delta models.ProgressDelta) (*models.AppliedDelta, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delta: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_progress (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	); err != nil {
		return nil, fmt.Errorf("upsert progress row: %w", err)
	}

	applied := &models.AppliedDelta{BadgesAwarded: []string{}}
	xp := delta.XPDelta

	if delta.NewChapter != nil {
		inserted, err := s.insertCompletion(ctx, tx, "chapter_completions", userID, *delta.NewChapter)
		if err != nil {
			return nil, err
		}
		applied.ChapterAdded = inserted
		if inserted {
			xp += delta.ChapterXP
		}
	}

	if delta.NewQuizChapter != nil {
		inserted, err := s.insertCompletion(ctx, tx, "quiz_completions", userID, *delta.NewQuizChapter)
		if err != nil {
			return nil, err
		}
		applied.QuizChapterAdded = inserted
	}

	for _, grant := range delta.NewBadges {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO user_badges (user_id, badge) VALUES ($1, $2)
			 ON CONFLICT (user_id, badge) DO NOTHING`,
			userID, grant.Badge,
		)
		if err != nil {
			return nil, fmt.Errorf("award badge %s: %w", grant.Badge, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			applied.BadgesAwarded = append(applied.BadgesAwarded, grant.Badge)
			xp += grant.XPBonus
		}
	}

	if xp > 0 {
		err = tx.QueryRowContext(ctx,
			`UPDATE user_progress SET
			    total_xp = total_xp + $2,
			    weekly_xp = weekly_xp + $2,
			    xp_updated_at = NOW(),
			    updated_at = NOW()
			 WHERE user_id = $1
			 RETURNING total_xp`,
			userID, xp,
		).Scan(&applied.NewTotalXP)
		if err != nil {
			return nil, fmt.Errorf("add xp: %w", err)
		}
		applied.XPAwarded = xp
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delta: %w", err)
	}
	return applied, nil
}

func (s *Store) insertCompletion(ctx context.Context, tx *sql.Tx, table string, userID int64, ref models.ChapterRef) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, module_id, chapter_id) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, module_id, chapter_id) DO NOTHING`,
		userID, ref.ModuleID, ref.ChapterID,
	)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendQuizAttempt records one audit row per submission. Attempts are
// append-only and never deduplicated.
func (s *Store) AppendQuizAttempt(ctx context.Context, a models.QuizAttempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (user_id, module_id, chapter_id, score, earned_xp)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.UserID, a.ModuleID, a.ChapterID, a.Score, a.EarnedXP,
	)
	if err != nil {
		return fmt.Errorf("append quiz attempt: %w", err)
	}
	return nil
}

// GetBadges returns the user's earned badges with award timestamps.
func (s *Store) GetBadges(ctx context.Context, userID int64) ([]models.EarnedBadge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT badge, earned_at FROM user_badges WHERE user_id = $1 ORDER BY earned_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get earned badges: %w", err)
	}
	defer rows.Close()

	badges := []models.EarnedBadge{}
	for rows.Next() {
		var b models.EarnedBadge
		if err := rows.Scan(&b.ID, &b.EarnedAt); err != nil {
			return nil, err
		}
		def := DescribeBadge(b.ID)
		b.Name = def.Name
		b.Description = def.Description
		b.Icon = string(def.Icon)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// QuizStats summarizes a user's quiz attempt history for the profile view.
type QuizStats struct {
	TotalAttempts int
	AverageScore  int
	PerfectScores int
}

func (s *Store) QuizStats(ctx context.Context, userID int64) (*QuizStats, error) {
	var stats QuizStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(ROUND(AVG(score)), 0),
		        COUNT(*) FILTER (WHERE score = 100)
		 FROM quiz_attempts WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalAttempts, &stats.AverageScore, &stats.PerfectScores)
	if err != nil {
		return nil, fmt.Errorf("quiz stats: %w", err)
	}
	return &stats, nil
}

func (s *Store) RecentAttempts(ctx context.Context, userID int64, limit int) ([]models.QuizAttempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, module_id, chapter_id, score, earned_xp, created_at
		 FROM quiz_attempts WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.QuizAttempt{}
	for rows.Next() {
		var a models.QuizAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.ModuleID, &a.ChapterID, &a.Score, &a.EarnedXP, &a.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ResetWeeklyXP zeroes every user's weekly XP counter.
func (s *Store) ResetWeeklyXP(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_progress SET weekly_xp = 0, weekly_xp_reset_at = NOW()`,
	)
	return err
}

package progress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/constitution-quest/backend/internal/content"
	"github.com/constitution-quest/backend/internal/models"
)

// Ledger is the read/write contract the evaluator needs from the Progress
// Ledger. *Store implements it against Postgres; tests use an in-memory double.
type Ledger interface {
	GetProgress(ctx context.Context, userID int64) (*models.ProgressRecord, error)
	ApplyDelta(ctx context.Context, userID int64, delta models.ProgressDelta) (*models.AppliedDelta, error)
	AppendQuizAttempt(ctx context.Context, attempt models.QuizAttempt) error
	GetBadges(ctx context.Context, userID int64) ([]models.EarnedBadge, error)
	QuizStats(ctx context.Context, userID int64) (*QuizStats, error)
	RecentAttempts(ctx context.Context, userID int64, limit int) ([]models.QuizAttempt, error)
	ResetWeeklyXP(ctx context.Context) error
}

// ModuleSource supplies static content metadata. Module and quiz structure is
// externally authored; the evaluator never embeds content.
type ModuleSource interface {
	GetModule(ctx context.Context, id int64) (*models.Module, error)
	ListModules(ctx context.Context) ([]models.Module, error)
}

// Ranker derives leaderboard positions from the ledger. Optional — a nil
// Ranker leaves ranks at zero in profile responses.
type Ranker interface {
	AllTimeRank(ctx context.Context, userID int64) (int, error)
	WeeklyRank(ctx context.Context, userID int64) (int, error)
}

// ScoreSink receives XP updates for leaderboard caching. Failures are logged
// and swallowed: the cache is eventually consistent by design and a reward
// event must never fail because of it.
type ScoreSink interface {
	RecordScore(ctx context.Context, userID, totalXP int64) error
}

// Service is the Reward Rule Evaluator: it consumes completion events,
// applies the reward rules against the current ledger, and reports the XP
// and badges each event produced.
type Service struct {
	ledger  Ledger
	modules ModuleSource
	ranks   Ranker
	scores  ScoreSink
	stepXP  int64
}

func NewService(ledger Ledger, modules ModuleSource) *Service {
	return &Service{
		ledger:  ledger,
		modules: modules,
		stepXP:  LevelStepFromEnv(),
	}
}

// WithRanker attaches a leaderboard rank source for profile responses.
func (s *Service) WithRanker(r Ranker) *Service {
	s.ranks = r
	return s
}

// WithScoreSink attaches a leaderboard cache refresh hook.
func (s *Service) WithScoreSink(sink ScoreSink) *Service {
	s.scores = sink
	return s
}

// ── Reward Events ───────────────────────────────────────

// OnChapterCompleted awards chapter XP and, when the module's chapter set is
// now fully covered, the module-completion badge plus its bonus.
//
// The award is idempotent: the completion-set insert decides it, so replaying
// the same chapter-complete event yields zero XP and no badge churn.
func (s *Service) OnChapterCompleted(ctx context.Context, userID, moduleID, chapterID int64) (*models.RewardResult, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	if moduleID <= 0 || chapterID <= 0 {
		return nil, fmt.Errorf("%w: module and chapter ids must be positive", ErrInvalidPayload)
	}

	applied, err := s.ledger.ApplyDelta(ctx, userID, models.ProgressDelta{
		NewChapter: &models.ChapterRef{ModuleID: moduleID, ChapterID: chapterID},
		ChapterXP:  ChapterCompletionXP,
	})
	if err != nil {
		return nil, storageErr("apply chapter completion", err)
	}
	result := resultOf(applied)
	s.refreshScore(ctx, userID, applied)

	mod, err := s.modules.GetModule(ctx, moduleID)
	if err != nil {
		if errors.Is(err, content.ErrModuleNotFound) {
			// Chapter XP already applied; only the badge check is impossible.
			return result, ErrUnknownModule
		}
		// The delta is already committed, so this call did not fail.
		// The badge self-heals on the next completion in this module.
		log.Printf("[progress] module badge check skipped for user %d: %v", userID, err)
		return result, nil
	}

	rec, err := s.ledger.GetProgress(ctx, userID)
	if err != nil {
		// The badge self-heals on the next completion in this module.
		log.Printf("[progress] module badge check skipped for user %d: %v", userID, err)
		return result, nil
	}

	badge := ModuleCompletedBadge(moduleID)
	if moduleComplete(rec, mod) && !rec.HasBadge(badge) {
		bonus, err := s.ledger.ApplyDelta(ctx, userID, models.ProgressDelta{
			NewBadges: []models.BadgeGrant{{Badge: badge, XPBonus: ModuleCompletionXP}},
		})
		if err != nil {
			log.Printf("[progress] module badge award failed for user %d: %v", userID, err)
			return result, nil
		}
		result.XPAwarded += bonus.XPAwarded
		result.BadgesAwarded = append(result.BadgesAwarded, bonus.BadgesAwarded...)
		s.refreshScore(ctx, userID, bonus)
	}

	return result, nil
}

// moduleComplete reports whether every chapter in the module definition is
// present in the user's completed set.
func moduleComplete(rec *models.ProgressRecord, mod *models.Module) bool {
	if len(mod.Chapters) == 0 {
		return false
	}
	for _, c := range mod.Chapters {
		if !rec.ChapterDone(mod.ID, c.ID) {
			return false
		}
	}
	return true
}

// OnQuizSubmitted records a quiz submission: marks the quiz chapter complete,
// applies the caller-computed earned XP, appends the audit attempt, and awards
// the perfect-score badge on a 100.
//
// Score and XP are computed by the quiz view (50 base + 10 per correct
// answer); the evaluator validates and records them, it does not rescore.
func (s *Service) OnQuizSubmitted(ctx context.Context, userID, moduleID, chapterID int64, score int, earnedXP int64) (*models.RewardResult, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	if moduleID <= 0 || chapterID <= 0 {
		return nil, fmt.Errorf("%w: module and chapter ids must be positive", ErrInvalidPayload)
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: score must be within [0,100]", ErrInvalidPayload)
	}
	if earnedXP < 0 {
		return nil, fmt.Errorf("%w: earned_xp must not be negative", ErrInvalidPayload)
	}

	delta := models.ProgressDelta{
		XPDelta:        earnedXP,
		NewQuizChapter: &models.ChapterRef{ModuleID: moduleID, ChapterID: chapterID},
	}
	if score == 100 {
		// The perfect-score badge carries no bonus XP — the quiz's own
		// earned XP is the whole award on this path.
		delta.NewBadges = []models.BadgeGrant{{Badge: PerfectScoreBadge(moduleID, chapterID)}}
	}

	applied, err := s.ledger.ApplyDelta(ctx, userID, delta)
	if err != nil {
		return nil, storageErr("apply quiz submission", err)
	}
	s.refreshScore(ctx, userID, applied)

	// Audit trail, every submission. Not part of the reward transaction:
	// a lost audit row is logged, never surfaced.
	attempt := models.QuizAttempt{
		UserID:    userID,
		ModuleID:  moduleID,
		ChapterID: chapterID,
		Score:     score,
		EarnedXP:  earnedXP,
	}
	if err := s.ledger.AppendQuizAttempt(ctx, attempt); err != nil {
		log.Printf("[progress] quiz attempt audit failed for user %d: %v", userID, err)
	}

	return resultOf(applied), nil
}

// OnDiscussionCreated awards the discussion-starter badge and its bonus on a
// user's first discussion; later calls are strict no-ops.
func (s *Service) OnDiscussionCreated(ctx context.Context, userID int64) (*models.RewardResult, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	applied, err := s.ledger.ApplyDelta(ctx, userID, models.ProgressDelta{
		NewBadges: []models.BadgeGrant{{Badge: BadgeDiscussionStarter, XPBonus: DiscussionStarterXP}},
	})
	if err != nil {
		return nil, storageErr("apply discussion reward", err)
	}
	s.refreshScore(ctx, userID, applied)

	return resultOf(applied), nil
}

func resultOf(applied *models.AppliedDelta) *models.RewardResult {
	badges := applied.BadgesAwarded
	if badges == nil {
		badges = []string{}
	}
	return &models.RewardResult{XPAwarded: applied.XPAwarded, BadgesAwarded: badges}
}

func (s *Service) refreshScore(ctx context.Context, userID int64, applied *models.AppliedDelta) {
	if s.scores == nil || applied.XPAwarded <= 0 {
		return
	}
	if err := s.scores.RecordScore(ctx, userID, applied.NewTotalXP); err != nil {
		log.Printf("[progress] leaderboard cache refresh failed for user %d: %v", userID, err)
	}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}

// ── Profile Projection ──────────────────────────────────

// GetProfile derives the dashboard/profile view from the ledger: level,
// level progress, ranks, per-module completion, and quiz statistics.
// Pure read — no side effects.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*models.ProfileResponse, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	rec, err := s.ledger.GetProgress(ctx, userID)
	if err != nil {
		return nil, storageErr("get progress", err)
	}

	resp := &models.ProfileResponse{
		UserID:        userID,
		TotalXP:       rec.TotalXP,
		WeeklyXP:      rec.WeeklyXP,
		Level:         Level(rec.TotalXP, s.stepXP),
		LevelProgress: LevelProgress(rec.TotalXP, s.stepXP),
		NextLevelXP:   NextLevelXP(rec.TotalXP, s.stepXP),
	}

	if s.ranks != nil {
		if rank, err := s.ranks.AllTimeRank(ctx, userID); err == nil {
			resp.AllTimeRank = rank
		}
		if rank, err := s.ranks.WeeklyRank(ctx, userID); err == nil {
			resp.WeeklyRank = rank
		}
	}

	badges, err := s.ledger.GetBadges(ctx, userID)
	if err != nil {
		return nil, storageErr("get badges", err)
	}
	resp.Badges = badges

	stats, err := s.ledger.QuizStats(ctx, userID)
	if err != nil {
		return nil, storageErr("quiz stats", err)
	}
	resp.AverageScore = stats.AverageScore
	resp.PerfectScores = stats.PerfectScores
	resp.TotalQuizAttempts = stats.TotalAttempts

	attempts, err := s.ledger.RecentAttempts(ctx, userID, 10)
	if err != nil {
		return nil, storageErr("recent attempts", err)
	}
	resp.RecentAttempts = attempts

	mods, err := s.modules.ListModules(ctx)
	if err != nil {
		return nil, storageErr("list modules", err)
	}
	resp.ModuleProgress = []models.ModuleProgress{}
	for _, mod := range mods {
		mp := models.ModuleProgress{
			ModuleID:      mod.ID,
			Title:         mod.Title,
			TotalChapters: len(mod.Chapters),
		}
		for _, c := range mod.Chapters {
			if rec.ChapterDone(mod.ID, c.ID) {
				mp.CompletedChapters++
			}
			if c.HasQuiz {
				resp.TotalQuizzes++
				if rec.QuizDone(mod.ID, c.ID) {
					resp.PassedQuizzes++
				}
			}
		}
		if mp.TotalChapters > 0 {
			mp.Progress = 100 * mp.CompletedChapters / mp.TotalChapters
		}
		mp.Completed = mp.TotalChapters > 0 && mp.CompletedChapters == mp.TotalChapters
		if mp.Completed {
			resp.CompletedModules++
		}
		resp.CompletedChapters += mp.CompletedChapters
		resp.TotalChapters += mp.TotalChapters
		resp.ModuleProgress = append(resp.ModuleProgress, mp)
	}

	return resp, nil
}

// GetBadgeCatalog lists every badge the platform can award — static badges,
// one module-completion badge per module, and one perfect-score badge per
// quiz — with the user's earned state.
func (s *Service) GetBadgeCatalog(ctx context.Context, userID int64) (*models.BadgeCatalogResponse, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	rec, err := s.ledger.GetProgress(ctx, userID)
	if err != nil {
		return nil, storageErr("get progress", err)
	}
	mods, err := s.modules.ListModules(ctx)
	if err != nil {
		return nil, storageErr("list modules", err)
	}

	var ids []string
	for id := range StaticBadges {
		ids = append(ids, id)
	}
	for _, mod := range mods {
		ids = append(ids, ModuleCompletedBadge(mod.ID))
		for _, c := range mod.Chapters {
			if c.HasQuiz {
				ids = append(ids, PerfectScoreBadge(mod.ID, c.ID))
			}
		}
	}

	resp := &models.BadgeCatalogResponse{Badges: []models.BadgeStatus{}}
	for _, id := range ids {
		def := DescribeBadge(id)
		resp.Badges = append(resp.Badges, models.BadgeStatus{
			ID:          id,
			Name:        def.Name,
			Description: def.Description,
			Icon:        string(def.Icon),
			XPReward:    def.XPReward,
			Earned:      rec.HasBadge(id),
		})
	}
	return resp, nil
}

// ── Background Workers ──────────────────────────────────

// StartWeeklyResetWorker zeroes weekly XP every Monday at 00 UTC.
func (s *Service) StartWeeklyResetWorker(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	log.Println("[progress] weekly reset worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("[progress] weekly reset worker shutting down")
			return
		case t := <-ticker.C:
			utc := t.UTC()
			if utc.Weekday() == time.Monday && utc.Hour() == 0 {
				log.Println("[progress] resetting weekly XP")
				if err := s.ledger.ResetWeeklyXP(ctx); err != nil {
					log.Printf("[progress] weekly reset failed: %v", err)
				}
			}
		}
	}
}

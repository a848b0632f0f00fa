package progress

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/constitution-quest/backend/internal/content"
	"github.com/constitution-quest/backend/internal/models"
)

// memLedger is an in-memory Ledger with the same delta semantics as the
// Postgres store: insert-if-absent sets, conditional chapter XP, badge
// bonuses paid only on new badges.
type memLedger struct {
	mu       sync.Mutex
	records  map[int64]*models.ProgressRecord
	attempts []models.QuizAttempt
	failNext error
}

func newMemLedger() *memLedger {
	return &memLedger{records: map[int64]*models.ProgressRecord{}}
}

func (m *memLedger) record(userID int64) *models.ProgressRecord {
	rec, ok := m.records[userID]
	if !ok {
		rec = &models.ProgressRecord{
			UserID:            userID,
			CompletedChapters: map[int64][]int64{},
			CompletedQuizzes:  map[int64][]int64{},
		}
		m.records[userID] = rec
	}
	return rec
}

func (m *memLedger) GetProgress(ctx context.Context, userID int64) (*models.ProgressRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return nil, err
	}
	rec := m.record(userID)
	cp := *rec
	return &cp, nil
}

func (m *memLedger) ApplyDelta(ctx context.Context, userID int64, delta models.ProgressDelta) (*models.AppliedDelta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return nil, err
	}

	rec := m.record(userID)
	applied := &models.AppliedDelta{XPAwarded: delta.XPDelta}

	if delta.NewChapter != nil && !rec.ChapterDone(delta.NewChapter.ModuleID, delta.NewChapter.ChapterID) {
		rec.CompletedChapters[delta.NewChapter.ModuleID] = append(rec.CompletedChapters[delta.NewChapter.ModuleID], delta.NewChapter.ChapterID)
		applied.ChapterAdded = true
		applied.XPAwarded += delta.ChapterXP
	}
	if delta.NewQuizChapter != nil && !rec.QuizDone(delta.NewQuizChapter.ModuleID, delta.NewQuizChapter.ChapterID) {
		rec.CompletedQuizzes[delta.NewQuizChapter.ModuleID] = append(rec.CompletedQuizzes[delta.NewQuizChapter.ModuleID], delta.NewQuizChapter.ChapterID)
		applied.QuizChapterAdded = true
	}
	for _, grant := range delta.NewBadges {
		if rec.HasBadge(grant.Badge) {
			continue
		}
		rec.Badges = append(rec.Badges, grant.Badge)
		applied.BadgesAwarded = append(applied.BadgesAwarded, grant.Badge)
		applied.XPAwarded += grant.XPBonus
	}

	rec.TotalXP += applied.XPAwarded
	rec.WeeklyXP += applied.XPAwarded
	applied.NewTotalXP = rec.TotalXP
	return applied, nil
}

func (m *memLedger) AppendQuizAttempt(ctx context.Context, attempt models.QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *memLedger) GetBadges(ctx context.Context, userID int64) ([]models.EarnedBadge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.record(userID)
	badges := []models.EarnedBadge{}
	for _, id := range rec.Badges {
		def := DescribeBadge(id)
		badges = append(badges, models.EarnedBadge{ID: id, Name: def.Name, Description: def.Description, Icon: string(def.Icon)})
	}
	return badges, nil
}

func (m *memLedger) QuizStats(ctx context.Context, userID int64) (*QuizStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &QuizStats{}
	sum := 0
	for _, a := range m.attempts {
		if a.UserID != userID {
			continue
		}
		stats.TotalAttempts++
		sum += a.Score
		if a.Score == 100 {
			stats.PerfectScores++
		}
	}
	if stats.TotalAttempts > 0 {
		stats.AverageScore = sum / stats.TotalAttempts
	}
	return stats, nil
}

func (m *memLedger) RecentAttempts(ctx context.Context, userID int64, limit int) ([]models.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.QuizAttempt{}
	for i := len(m.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.attempts[i].UserID == userID {
			out = append(out, m.attempts[i])
		}
	}
	return out, nil
}

func (m *memLedger) ResetWeeklyXP(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		rec.WeeklyXP = 0
	}
	return nil
}

// memModules is a fixed ModuleSource. A non-nil failErr makes every read
// fail, simulating a content store outage.
type memModules struct {
	modules map[int64]*models.Module
	failErr error
}

func newMemModules(mods ...*models.Module) *memModules {
	m := &memModules{modules: map[int64]*models.Module{}}
	for _, mod := range mods {
		m.modules[mod.ID] = mod
	}
	return m
}

func (m *memModules) GetModule(ctx context.Context, id int64) (*models.Module, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	mod, ok := m.modules[id]
	if !ok {
		return nil, content.ErrModuleNotFound
	}
	return mod, nil
}

func (m *memModules) ListModules(ctx context.Context) ([]models.Module, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	out := []models.Module{}
	for _, mod := range m.modules {
		out = append(out, *mod)
	}
	return out, nil
}

func fiveChapterModule(id int64) *models.Module {
	mod := &models.Module{ID: id, Title: "Test Module", Status: models.ModuleStatusPublished}
	for c := int64(1); c <= 5; c++ {
		mod.Chapters = append(mod.Chapters, models.Chapter{ID: c, ModuleID: id, Title: "Chapter", HasQuiz: c == 5})
	}
	return mod
}

func newTestService(mods ...*models.Module) (*Service, *memLedger) {
	ledger := newMemLedger()
	return NewService(ledger, newMemModules(mods...)), ledger
}

func TestChapterCompletionAwardsXP(t *testing.T) {
	svc, _ := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	result, err := svc.OnChapterCompleted(ctx, 1, 1, 1)
	if err != nil {
		t.Fatalf("OnChapterCompleted: %v", err)
	}
	if result.XPAwarded != ChapterCompletionXP {
		t.Errorf("xp = %d, want %d", result.XPAwarded, ChapterCompletionXP)
	}
	if len(result.BadgesAwarded) != 0 {
		t.Errorf("badges = %v, want none", result.BadgesAwarded)
	}
}

func TestChapterCompletionIsIdempotent(t *testing.T) {
	svc, ledger := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	if _, err := svc.OnChapterCompleted(ctx, 1, 1, 1); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	result, err := svc.OnChapterCompleted(ctx, 1, 1, 1)
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if result.XPAwarded != 0 {
		t.Errorf("replayed completion awarded %d XP, want 0", result.XPAwarded)
	}

	rec, _ := ledger.GetProgress(ctx, 1)
	if rec.TotalXP != ChapterCompletionXP {
		t.Errorf("total xp = %d, want %d", rec.TotalXP, ChapterCompletionXP)
	}
}

func TestModuleCompletionAwardsBadgeAndBonus(t *testing.T) {
	svc, ledger := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	var last *models.RewardResult
	for c := int64(1); c <= 5; c++ {
		var err error
		last, err = svc.OnChapterCompleted(ctx, 1, 1, c)
		if err != nil {
			t.Fatalf("chapter %d: %v", c, err)
		}
	}

	wantXP := int64(ChapterCompletionXP + ModuleCompletionXP)
	if last.XPAwarded != wantXP {
		t.Errorf("final chapter xp = %d, want %d", last.XPAwarded, wantXP)
	}
	badge := ModuleCompletedBadge(1)
	if len(last.BadgesAwarded) != 1 || last.BadgesAwarded[0] != badge {
		t.Errorf("badges = %v, want [%s]", last.BadgesAwarded, badge)
	}

	// 5 chapters at 10 XP plus the 50 XP module bonus.
	rec, _ := ledger.GetProgress(ctx, 1)
	if rec.TotalXP != 100 {
		t.Errorf("total xp = %d, want 100", rec.TotalXP)
	}

	// Replaying the last chapter must not re-award anything.
	again, err := svc.OnChapterCompleted(ctx, 1, 1, 5)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if again.XPAwarded != 0 || len(again.BadgesAwarded) != 0 {
		t.Errorf("replay awarded %d XP and %v", again.XPAwarded, again.BadgesAwarded)
	}
}

func TestChapterCompletionUnknownModuleKeepsXP(t *testing.T) {
	svc, ledger := newTestService()
	ctx := context.Background()

	result, err := svc.OnChapterCompleted(ctx, 1, 99, 1)
	if !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("err = %v, want ErrUnknownModule", err)
	}
	if result == nil || result.XPAwarded != ChapterCompletionXP {
		t.Fatalf("result = %+v, want chapter XP kept", result)
	}

	rec, _ := ledger.GetProgress(ctx, 1)
	if rec.TotalXP != ChapterCompletionXP {
		t.Errorf("total xp = %d, want %d", rec.TotalXP, ChapterCompletionXP)
	}
}

func TestChapterCompletionSurvivesModuleReadFailure(t *testing.T) {
	ledger := newMemLedger()
	mods := newMemModules(fiveChapterModule(1))
	mods.failErr = errors.New("read tcp 10.0.0.5:5432: connection reset by peer")
	svc := NewService(ledger, mods)
	ctx := context.Background()

	// The chapter XP is committed before the badge check, so a content
	// store outage must not surface as a failed call.
	result, err := svc.OnChapterCompleted(ctx, 1, 1, 1)
	if err != nil {
		t.Fatalf("OnChapterCompleted: %v", err)
	}
	if result.XPAwarded != ChapterCompletionXP {
		t.Errorf("xp awarded = %d, want %d", result.XPAwarded, ChapterCompletionXP)
	}

	rec, _ := ledger.GetProgress(ctx, 1)
	if rec.TotalXP != ChapterCompletionXP {
		t.Errorf("total xp = %d, want %d", rec.TotalXP, ChapterCompletionXP)
	}
	if len(rec.Badges) != 0 {
		t.Errorf("badges = %v, want none while the module read fails", rec.Badges)
	}

	// Once the content store recovers, finishing the module awards the
	// badge that the earlier completion could not check for.
	mods.failErr = nil
	for c := int64(2); c <= 5; c++ {
		if _, err := svc.OnChapterCompleted(ctx, 1, 1, c); err != nil {
			t.Fatalf("chapter %d: %v", c, err)
		}
	}

	rec, _ = ledger.GetProgress(ctx, 1)
	if !rec.HasBadge(ModuleCompletedBadge(1)) {
		t.Error("module badge not awarded after the store recovered")
	}
	want := int64(5*ChapterCompletionXP + ModuleCompletionXP)
	if rec.TotalXP != want {
		t.Errorf("total xp = %d, want %d", rec.TotalXP, want)
	}
}

func TestChapterCompletionRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	if _, err := svc.OnChapterCompleted(ctx, 0, 1, 1); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("zero user err = %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.OnChapterCompleted(ctx, 1, 0, 1); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("zero module err = %v, want ErrInvalidPayload", err)
	}
	if _, err := svc.OnChapterCompleted(ctx, 1, 1, -3); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("negative chapter err = %v, want ErrInvalidPayload", err)
	}
}

func TestQuizSubmissionAwardsXPAndRecordsAttempt(t *testing.T) {
	svc, ledger := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	result, err := svc.OnQuizSubmitted(ctx, 1, 1, 5, 80, 90)
	if err != nil {
		t.Fatalf("OnQuizSubmitted: %v", err)
	}
	if result.XPAwarded != 90 {
		t.Errorf("xp = %d, want 90", result.XPAwarded)
	}
	if len(result.BadgesAwarded) != 0 {
		t.Errorf("badges = %v, want none below 100", result.BadgesAwarded)
	}
	if len(ledger.attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(ledger.attempts))
	}
	if a := ledger.attempts[0]; a.Score != 80 || a.EarnedXP != 90 {
		t.Errorf("attempt = %+v", a)
	}
}

func TestPerfectQuizAwardsBadgeWithoutBonusXP(t *testing.T) {
	svc, ledger := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	result, err := svc.OnQuizSubmitted(ctx, 1, 1, 5, 100, 100)
	if err != nil {
		t.Fatalf("OnQuizSubmitted: %v", err)
	}
	badge := PerfectScoreBadge(1, 5)
	if len(result.BadgesAwarded) != 1 || result.BadgesAwarded[0] != badge {
		t.Errorf("badges = %v, want [%s]", result.BadgesAwarded, badge)
	}
	// The badge adds no XP on top of the quiz's earned XP.
	if result.XPAwarded != 100 {
		t.Errorf("xp = %d, want 100", result.XPAwarded)
	}

	rec, _ := ledger.GetProgress(ctx, 1)
	if !rec.HasBadge(badge) {
		t.Error("badge not in ledger")
	}
}

func TestQuizRetakesAccumulateXPButNotBadges(t *testing.T) {
	svc, ledger := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	if _, err := svc.OnQuizSubmitted(ctx, 1, 1, 5, 100, 100); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	result, err := svc.OnQuizSubmitted(ctx, 1, 1, 5, 100, 100)
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if result.XPAwarded != 100 {
		t.Errorf("retake xp = %d, want 100", result.XPAwarded)
	}
	if len(result.BadgesAwarded) != 0 {
		t.Errorf("retake badges = %v, want none", result.BadgesAwarded)
	}
	// Every submission leaves an audit row.
	if len(ledger.attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(ledger.attempts))
	}
}

func TestQuizSubmissionValidation(t *testing.T) {
	svc, _ := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	if _, err := svc.OnQuizSubmitted(ctx, 1, 1, 5, 101, 10); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("score 101 err = %v, want ErrInvalidPayload", err)
	}
	if _, err := svc.OnQuizSubmitted(ctx, 1, 1, 5, -1, 10); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("score -1 err = %v, want ErrInvalidPayload", err)
	}
	if _, err := svc.OnQuizSubmitted(ctx, 1, 1, 5, 50, -10); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("negative xp err = %v, want ErrInvalidPayload", err)
	}
}

func TestFirstDiscussionAwardsBadgeOnce(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.OnDiscussionCreated(ctx, 1)
	if err != nil {
		t.Fatalf("first discussion: %v", err)
	}
	if first.XPAwarded != DiscussionStarterXP {
		t.Errorf("first xp = %d, want %d", first.XPAwarded, DiscussionStarterXP)
	}
	if len(first.BadgesAwarded) != 1 || first.BadgesAwarded[0] != BadgeDiscussionStarter {
		t.Errorf("first badges = %v", first.BadgesAwarded)
	}

	second, err := svc.OnDiscussionCreated(ctx, 1)
	if err != nil {
		t.Fatalf("second discussion: %v", err)
	}
	if second.XPAwarded != 0 || len(second.BadgesAwarded) != 0 {
		t.Errorf("second discussion awarded %d XP and %v", second.XPAwarded, second.BadgesAwarded)
	}
}

func TestStorageFailureWrapsSentinel(t *testing.T) {
	svc, ledger := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	ledger.failNext = errors.New("connection refused")
	if _, err := svc.OnChapterCompleted(ctx, 1, 1, 1); !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("err = %v, want ErrStorageUnavailable", err)
	}
}

func TestConcurrentChapterCompletions(t *testing.T) {
	svc, ledger := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	var wg sync.WaitGroup
	for c := int64(1); c <= 5; c++ {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(chapter int64) {
				defer wg.Done()
				svc.OnChapterCompleted(ctx, 1, 1, chapter)
			}(c)
		}
	}
	wg.Wait()

	// Each chapter pays once and the module bonus pays once, regardless
	// of how the replays interleave.
	rec, _ := ledger.GetProgress(ctx, 1)
	if rec.TotalXP != 100 {
		t.Errorf("total xp = %d, want 100", rec.TotalXP)
	}
	badges := 0
	for _, b := range rec.Badges {
		if b == ModuleCompletedBadge(1) {
			badges++
		}
	}
	if badges != 1 {
		t.Errorf("module badge count = %d, want 1", badges)
	}
}

func TestGetProfileProjection(t *testing.T) {
	svc, _ := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	for c := int64(1); c <= 3; c++ {
		if _, err := svc.OnChapterCompleted(ctx, 1, 1, c); err != nil {
			t.Fatalf("chapter %d: %v", c, err)
		}
	}
	if _, err := svc.OnQuizSubmitted(ctx, 1, 1, 5, 100, 100); err != nil {
		t.Fatalf("quiz: %v", err)
	}

	profile, err := svc.GetProfile(ctx, 1)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}

	if profile.TotalXP != 130 {
		t.Errorf("total xp = %d, want 130", profile.TotalXP)
	}
	if profile.Level != 0 {
		t.Errorf("level = %d, want 0", profile.Level)
	}
	if profile.NextLevelXP != DefaultLevelStepXP {
		t.Errorf("next level xp = %d, want %d", profile.NextLevelXP, DefaultLevelStepXP)
	}
	if profile.CompletedChapters != 3 || profile.TotalChapters != 5 {
		t.Errorf("chapters = %d/%d, want 3/5", profile.CompletedChapters, profile.TotalChapters)
	}
	if profile.PassedQuizzes != 1 || profile.TotalQuizzes != 1 {
		t.Errorf("quizzes = %d/%d, want 1/1", profile.PassedQuizzes, profile.TotalQuizzes)
	}
	if profile.PerfectScores != 1 || profile.AverageScore != 100 {
		t.Errorf("stats = %d perfect, %d avg", profile.PerfectScores, profile.AverageScore)
	}
	if profile.CompletedModules != 0 {
		t.Errorf("completed modules = %d, want 0", profile.CompletedModules)
	}
	if len(profile.ModuleProgress) != 1 {
		t.Fatalf("module progress entries = %d, want 1", len(profile.ModuleProgress))
	}
	if mp := profile.ModuleProgress[0]; mp.Progress != 60 || mp.Completed {
		t.Errorf("module progress = %+v", mp)
	}
}

func TestGetBadgeCatalog(t *testing.T) {
	svc, _ := newTestService(fiveChapterModule(1))
	ctx := context.Background()

	if _, err := svc.OnDiscussionCreated(ctx, 1); err != nil {
		t.Fatalf("discussion: %v", err)
	}

	catalog, err := svc.GetBadgeCatalog(ctx, 1)
	if err != nil {
		t.Fatalf("GetBadgeCatalog: %v", err)
	}

	// discussion_starter + module_1_completed + perfect_score_quiz_1_5.
	if len(catalog.Badges) != 3 {
		t.Fatalf("catalog size = %d, want 3", len(catalog.Badges))
	}
	earned := map[string]bool{}
	for _, b := range catalog.Badges {
		earned[b.ID] = b.Earned
	}
	if !earned[BadgeDiscussionStarter] {
		t.Error("discussion_starter should be earned")
	}
	if earned[ModuleCompletedBadge(1)] {
		t.Error("module badge should not be earned")
	}
}

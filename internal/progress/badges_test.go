package progress

import "testing"

func TestBadgeIDFormats(t *testing.T) {
	if got := ModuleCompletedBadge(3); got != "module_3_completed" {
		t.Errorf("ModuleCompletedBadge(3) = %q", got)
	}
	if got := PerfectScoreBadge(2, 5); got != "perfect_score_quiz_2_5" {
		t.Errorf("PerfectScoreBadge(2, 5) = %q", got)
	}
}

func TestDescribeBadge(t *testing.T) {
	tests := []struct {
		id       string
		wantName string
		wantIcon BadgeIcon
		wantXP   int64
	}{
		{BadgeDiscussionStarter, "Discussion Starter", IconMessage, DiscussionStarterXP},
		{"module_4_completed", "Module 4 Complete", IconCheckCircle, ModuleCompletionXP},
		{"perfect_score_quiz_1_2", "Perfect Score", IconTrophy, 0},
		{"some_future_badge", "some_future_badge", IconAward, 0},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			def := DescribeBadge(tt.id)
			if def.Name != tt.wantName {
				t.Errorf("name = %q, want %q", def.Name, tt.wantName)
			}
			if def.Icon != tt.wantIcon {
				t.Errorf("icon = %q, want %q", def.Icon, tt.wantIcon)
			}
			if def.XPReward != tt.wantXP {
				t.Errorf("xp = %d, want %d", def.XPReward, tt.wantXP)
			}
		})
	}
}

// Perfect-score badges carry no XP of their own; the quiz's earned XP is
// the whole reward.
func TestPerfectScoreBadgeHasNoXP(t *testing.T) {
	def := DescribeBadge(PerfectScoreBadge(1, 1))
	if def.XPReward != 0 {
		t.Errorf("perfect score badge xp = %d, want 0", def.XPReward)
	}
}

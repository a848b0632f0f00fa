package progress

import (
	"fmt"
	"strings"
)

// XP amounts granted by the reward rules.
const (
	ChapterCompletionXP = 10
	ModuleCompletionXP  = 50
	DiscussionStarterXP = 50
)

// BadgeIcon selects the icon the client renders for a badge.
type BadgeIcon string

const (
	IconAward       BadgeIcon = "award"
	IconBookOpen    BadgeIcon = "book_open"
	IconTrophy      BadgeIcon = "trophy"
	IconCheckCircle BadgeIcon = "check_circle"
	IconMessage     BadgeIcon = "message"
)

// BadgeDef defines a single badge.
type BadgeDef struct {
	Name        string
	Description string
	Icon        BadgeIcon
	XPReward    int64
}

// BadgeDiscussionStarter is awarded once, on a user's first discussion.
const BadgeDiscussionStarter = "discussion_starter"

// StaticBadges maps fixed badge ids to their definitions. Module-completion
// and perfect-score badges are minted per content item; see ModuleCompletedBadge
// and PerfectScoreBadge.
var StaticBadges = map[string]BadgeDef{
	BadgeDiscussionStarter: {
		Name:        "Discussion Starter",
		Description: "Started your first community discussion",
		Icon:        IconMessage,
		XPReward:    DiscussionStarterXP,
	},
}

// ModuleCompletedBadge returns the badge id awarded when every chapter of a
// module has been completed.
func ModuleCompletedBadge(moduleID int64) string {
	return fmt.Sprintf("module_%d_completed", moduleID)
}

// PerfectScoreBadge returns the badge id awarded for a 100% quiz score.
// The badge carries no XP of its own — the quiz's earned XP already covers it.
func PerfectScoreBadge(moduleID, chapterID int64) string {
	return fmt.Sprintf("perfect_score_quiz_%d_%d", moduleID, chapterID)
}

// DescribeBadge resolves any badge id, static or minted, to a definition
// for display. Unknown ids get a generic entry rather than an error.
func DescribeBadge(id string) BadgeDef {
	if def, ok := StaticBadges[id]; ok {
		return def
	}
	if strings.HasPrefix(id, "module_") && strings.HasSuffix(id, "_completed") {
		mid := strings.TrimSuffix(strings.TrimPrefix(id, "module_"), "_completed")
		return BadgeDef{
			Name:        fmt.Sprintf("Module %s Complete", mid),
			Description: fmt.Sprintf("Completed every chapter of module %s", mid),
			Icon:        IconCheckCircle,
			XPReward:    ModuleCompletionXP,
		}
	}
	if strings.HasPrefix(id, "perfect_score_quiz_") {
		return BadgeDef{
			Name:        "Perfect Score",
			Description: "Scored 100% on a chapter quiz",
			Icon:        IconTrophy,
		}
	}
	return BadgeDef{Name: id, Description: "", Icon: IconAward}
}

package models

// ── Content Types ────────────────────────────────────────
// Modules, chapters, and quizzes are externally authored curriculum
// content. The reward engine treats them as read-only definitions.

type Module struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Chapters    []Chapter `json:"chapters,omitempty"`
}

type Chapter struct {
	ID          int64  `json:"id"`
	ModuleID    int64  `json:"module_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content,omitempty"`
	HasQuiz     bool   `json:"has_quiz"`
}

type Quiz struct {
	ModuleID  int64          `json:"module_id"`
	ChapterID int64          `json:"chapter_id"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	Position      int          `json:"position"`
	Question      string       `json:"question"`
	Options       []QuizOption `json:"options"`
	CorrectOption string       `json:"correct_option,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
}

type QuizOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Module status values.
const (
	ModuleStatusPublished = "published"
	ModuleStatusDraft     = "draft"
)

package generator

import (
	"fmt"
	"strings"

	"github.com/constitution-quest/backend/internal/models"
)

// QuizSystemPrompt frames the model as a civics quiz author and pins the
// output contract so ParseResponse can stay strict.
func QuizSystemPrompt() string {
	return `You are an expert civics educator writing quiz questions for a learning platform about the Indian Constitution and Indian government.

CONTENT RULES:
- Questions must be factually accurate and non-partisan
- Test understanding of the chapter material, not trivia or memorized dates
- Each question has exactly 4 answer options labeled a, b, c, d
- Exactly one option is correct; wrong options must be plausible misconceptions, not obvious throwaways
- Keep question text under 200 characters and option text under 150 characters
- Write a one- or two-sentence explanation of why the correct option is right

OUTPUT FORMAT:
Respond with ONLY a JSON object, no prose before or after:
{
  "questions": [
    {
      "question": "...",
      "options": [
        {"id": "a", "text": "..."},
        {"id": "b", "text": "..."},
        {"id": "c", "text": "..."},
        {"id": "d", "text": "..."}
      ],
      "correct_option": "a",
      "explanation": "..."
    }
  ]
}

Distribute correct options across a, b, c, and d rather than clustering on one letter.`
}

// BuildQuizUserPrompt describes the chapter the quiz should cover.
func BuildQuizUserPrompt(mod *models.Module, chapter *models.Chapter, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write %d multiple-choice quiz questions for the following chapter.\n\n", count)
	fmt.Fprintf(&b, "Module: %s\n", mod.Title)
	if mod.Description != "" {
		fmt.Fprintf(&b, "Module description: %s\n", mod.Description)
	}
	fmt.Fprintf(&b, "Chapter: %s\n", chapter.Title)
	if chapter.Description != "" {
		fmt.Fprintf(&b, "Chapter description: %s\n", chapter.Description)
	}

	if chapter.Content != "" {
		content := chapter.Content
		// Cap pasted chapter text so the prompt stays within budget.
		if len(content) > 6000 {
			content = content[:6000]
		}
		fmt.Fprintf(&b, "\nChapter text:\n%s\n", content)
	}

	b.WriteString("\nEvery question must be answerable from the chapter material above.")
	return b.String()
}

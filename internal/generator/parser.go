package generator

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/constitution-quest/backend/internal/models"
)

type GeneratedQuiz struct {
	Questions []GeneratedQuestion `json:"questions"`
}

type GeneratedQuestion struct {
	Question      string            `json:"question"`
	Options       []GeneratedOption `json:"options"`
	CorrectOption string            `json:"correct_option"`
	Explanation   string            `json:"explanation"`
}

type GeneratedOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func ParseResponse(responseBody string) (*GeneratedQuiz, error) {
	cleaned := stripCodeFences(responseBody)

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(cleaned), &quiz); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateQuiz(&quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

var expectedOptionIDs = []string{"a", "b", "c", "d"}

func validateQuiz(quiz *GeneratedQuiz) error {
	var errs []string

	if len(quiz.Questions) == 0 {
		return &ValidationError{Errors: []string{"no questions in response"}}
	}

	correctCounts := make(map[string]int)

	for i, q := range quiz.Questions {
		qNum := i + 1

		if q.Question == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty question text", qNum))
		}
		if q.Explanation == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty explanation", qNum))
		}

		if len(q.Options) != len(expectedOptionIDs) {
			errs = append(errs, fmt.Sprintf("question %d: expected %d options, got %d", qNum, len(expectedOptionIDs), len(q.Options)))
			continue
		}

		correctFound := false
		for j, o := range q.Options {
			if o.ID != expectedOptionIDs[j] {
				errs = append(errs, fmt.Sprintf("question %d: option %d has id %q, expected %q", qNum, j+1, o.ID, expectedOptionIDs[j]))
			}
			if o.Text == "" {
				errs = append(errs, fmt.Sprintf("question %d: option %s has empty text", qNum, o.ID))
			}
			if o.ID == q.CorrectOption {
				correctFound = true
			}
		}
		if !correctFound {
			errs = append(errs, fmt.Sprintf("question %d: correct_option %q is not an option id", qNum, q.CorrectOption))
		}

		correctCounts[q.CorrectOption]++
	}

	// Clustered correct answers are a quality smell, not a rejection.
	for letter, count := range correctCounts {
		if count > 2 && len(quiz.Questions) >= 5 {
			log.Printf("[generator] correct option %q appears %d times in %d questions", letter, count, len(quiz.Questions))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ToQuizQuestions converts a validated response into storable questions.
func (g *GeneratedQuiz) ToQuizQuestions() []models.QuizQuestion {
	questions := make([]models.QuizQuestion, 0, len(g.Questions))
	for i, q := range g.Questions {
		options := make([]models.QuizOption, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, models.QuizOption{ID: o.ID, Text: o.Text})
		}
		questions = append(questions, models.QuizQuestion{
			Position:      i + 1,
			Question:      q.Question,
			Options:       options,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
		})
	}
	return questions
}

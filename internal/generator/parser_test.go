package generator

import (
	"strings"
	"testing"
)

func validQuestionJSON(correct string) string {
	return `{
		"question": "Which branch of government interprets the laws?",
		"options": [
			{"id": "a", "text": "The legislative branch"},
			{"id": "b", "text": "The executive branch"},
			{"id": "c", "text": "The judicial branch"},
			{"id": "d", "text": "The state governors"}
		],
		"correct_option": "` + correct + `",
		"explanation": "The judicial branch interprets the laws through the courts."
	}`
}

func TestParseResponseValid(t *testing.T) {
	body := `{"questions": [` + validQuestionJSON("c") + `]}`

	quiz, err := ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(quiz.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(quiz.Questions))
	}
	q := quiz.Questions[0]
	if q.CorrectOption != "c" {
		t.Errorf("correct option = %q, want %q", q.CorrectOption, "c")
	}
	if len(q.Options) != 4 {
		t.Errorf("got %d options, want 4", len(q.Options))
	}
}

func TestParseResponseStripsCodeFences(t *testing.T) {
	bodies := []string{
		"```json\n{\"questions\": [" + validQuestionJSON("a") + "]}\n```",
		"```\n{\"questions\": [" + validQuestionJSON("a") + "]}\n```",
	}
	for _, body := range bodies {
		if _, err := ParseResponse(body); err != nil {
			t.Errorf("ParseResponse with fences: %v", err)
		}
	}
}

func TestParseResponseRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "not json",
			body:    "here are your questions!",
			wantErr: "failed to parse JSON",
		},
		{
			name:    "empty batch",
			body:    `{"questions": []}`,
			wantErr: "no questions",
		},
		{
			name: "wrong option count",
			body: `{"questions": [{
				"question": "Q?",
				"options": [{"id": "a", "text": "one"}, {"id": "b", "text": "two"}],
				"correct_option": "a",
				"explanation": "because"
			}]}`,
			wantErr: "expected 4 options",
		},
		{
			name:    "correct option not present",
			body:    `{"questions": [` + validQuestionJSON("e") + `]}`,
			wantErr: `correct_option "e"`,
		},
		{
			name: "out of order option ids",
			body: `{"questions": [{
				"question": "Q?",
				"options": [
					{"id": "b", "text": "one"},
					{"id": "a", "text": "two"},
					{"id": "c", "text": "three"},
					{"id": "d", "text": "four"}
				],
				"correct_option": "a",
				"explanation": "because"
			}]}`,
			wantErr: "expected \"a\"",
		},
		{
			name: "empty explanation",
			body: `{"questions": [{
				"question": "Q?",
				"options": [
					{"id": "a", "text": "one"},
					{"id": "b", "text": "two"},
					{"id": "c", "text": "three"},
					{"id": "d", "text": "four"}
				],
				"correct_option": "a",
				"explanation": ""
			}]}`,
			wantErr: "empty explanation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.body)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMockClientOutputParses(t *testing.T) {
	quiz, err := ParseResponse(buildMockJSON())
	if err != nil {
		t.Fatalf("mock output failed validation: %v", err)
	}
	if len(quiz.Questions) != 5 {
		t.Errorf("mock produced %d questions, want 5", len(quiz.Questions))
	}
}

func TestToQuizQuestionsAssignsPositions(t *testing.T) {
	quiz, err := ParseResponse(buildMockJSON())
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}

	questions := quiz.ToQuizQuestions()
	if len(questions) != len(quiz.Questions) {
		t.Fatalf("got %d questions, want %d", len(questions), len(quiz.Questions))
	}
	for i, q := range questions {
		if q.Position != i+1 {
			t.Errorf("question %d position = %d, want %d", i, q.Position, i+1)
		}
		if len(q.Options) != 4 {
			t.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
	}
}

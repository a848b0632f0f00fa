package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/constitution-quest/backend/internal/models"
)

var (
	// ErrModuleNotFound indicates the referenced module has no definition.
	ErrModuleNotFound = errors.New("module not found")
	// ErrChapterNotFound indicates the chapter does not exist in the module.
	ErrChapterNotFound = errors.New("chapter not found")
	// ErrQuizNotFound indicates the chapter has no quiz.
	ErrQuizNotFound = errors.New("quiz not found")
)

// Store reads and writes curriculum content. The reward engine only ever
// reads module definitions through it; writes come from seeding and the
// admin generation endpoint.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListModules returns all modules with chapter summaries (no chapter body).
func (s *Store) ListModules(ctx context.Context) ([]models.Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status FROM modules ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	bySlot := map[int64]int{}
	modules := []models.Module{}
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Status); err != nil {
			return nil, err
		}
		bySlot[m.ID] = len(modules)
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chRows, err := s.db.QueryContext(ctx,
		`SELECT module_id, id, title, description, has_quiz
		 FROM chapters ORDER BY module_id, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer chRows.Close()
	for chRows.Next() {
		var c models.Chapter
		if err := chRows.Scan(&c.ModuleID, &c.ID, &c.Title, &c.Description, &c.HasQuiz); err != nil {
			return nil, err
		}
		if i, ok := bySlot[c.ModuleID]; ok {
			modules[i].Chapters = append(modules[i].Chapters, c)
		}
	}
	return modules, chRows.Err()
}

// GetModule returns one module with its ordered chapter summaries.
func (s *Store) GetModule(ctx context.Context, id int64) (*models.Module, error) {
	var m models.Module
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, status FROM modules WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Title, &m.Description, &m.Status)
	if err == sql.ErrNoRows {
		return nil, ErrModuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get module: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT module_id, id, title, description, has_quiz
		 FROM chapters WHERE module_id = $1 ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get module chapters: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Chapter
		if err := rows.Scan(&c.ModuleID, &c.ID, &c.Title, &c.Description, &c.HasQuiz); err != nil {
			return nil, err
		}
		m.Chapters = append(m.Chapters, c)
	}
	return &m, rows.Err()
}

// GetChapter returns a chapter including its body content.
func (s *Store) GetChapter(ctx context.Context, moduleID, chapterID int64) (*models.Chapter, error) {
	var c models.Chapter
	err := s.db.QueryRowContext(ctx,
		`SELECT module_id, id, title, description, content, has_quiz
		 FROM chapters WHERE module_id = $1 AND id = $2`,
		moduleID, chapterID,
	).Scan(&c.ModuleID, &c.ID, &c.Title, &c.Description, &c.Content, &c.HasQuiz)
	if err == sql.ErrNoRows {
		return nil, ErrChapterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return &c, nil
}

// GetQuiz returns the quiz for a chapter. When reveal is false the correct
// option and per-question explanation are stripped — the taking view must
// not leak answers.
func (s *Store) GetQuiz(ctx context.Context, moduleID, chapterID int64, reveal bool) (*models.Quiz, error) {
	chapter, err := s.GetChapter(ctx, moduleID, chapterID)
	if err != nil {
		return nil, err
	}
	if !chapter.HasQuiz {
		return nil, ErrQuizNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, question, options, correct_option, explanation
		 FROM quiz_questions WHERE module_id = $1 AND chapter_id = $2
		 ORDER BY position`,
		moduleID, chapterID,
	)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	defer rows.Close()

	quiz := &models.Quiz{
		ModuleID:  moduleID,
		ChapterID: chapterID,
		Title:     chapter.Title + " Quiz",
	}
	for rows.Next() {
		var q models.QuizQuestion
		var optionsJSON []byte
		if err := rows.Scan(&q.Position, &q.Question, &optionsJSON, &q.CorrectOption, &q.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
			return nil, fmt.Errorf("decode quiz options: %w", err)
		}
		if !reveal {
			q.CorrectOption = ""
			q.Explanation = ""
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

// SaveModule upserts a module definition with its chapters.
func (s *Store) SaveModule(ctx context.Context, m models.Module) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save module: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO modules (id, title, description, status) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET title = $2, description = $3, status = $4`,
		m.ID, m.Title, m.Description, m.Status,
	); err != nil {
		return fmt.Errorf("save module: %w", err)
	}

	for _, c := range m.Chapters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chapters (module_id, id, title, description, content, has_quiz)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (module_id, id) DO UPDATE SET
			    title = $3, description = $4, content = $5, has_quiz = $6`,
			m.ID, c.ID, c.Title, c.Description, c.Content, c.HasQuiz,
		); err != nil {
			return fmt.Errorf("save chapter %d/%d: %w", m.ID, c.ID, err)
		}
	}

	return tx.Commit()
}

// ReplaceQuiz swaps out the full question set for a chapter's quiz.
func (s *Store) ReplaceQuiz(ctx context.Context, moduleID, chapterID int64, questions []models.QuizQuestion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace quiz: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM quiz_questions WHERE module_id = $1 AND chapter_id = $2`,
		moduleID, chapterID,
	); err != nil {
		return fmt.Errorf("clear quiz: %w", err)
	}

	for i, q := range questions {
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encode quiz options: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_questions (module_id, chapter_id, position, question, options, correct_option, explanation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			moduleID, chapterID, i+1, q.Question, optionsJSON, q.CorrectOption, q.Explanation,
		); err != nil {
			return fmt.Errorf("insert quiz question %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE chapters SET has_quiz = TRUE WHERE module_id = $1 AND id = $2`,
		moduleID, chapterID,
	); err != nil {
		return fmt.Errorf("mark chapter quiz: %w", err)
	}

	return tx.Commit()
}

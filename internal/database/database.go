package database

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "quest_user")
	password := getEnv("DB_PASSWORD", "quest_password")
	dbname := getEnv("DB_NAME", "constitution_quest")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		username VARCHAR(50) UNIQUE,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

	CREATE TABLE IF NOT EXISTS modules (
		id          BIGINT PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      VARCHAR(20) NOT NULL DEFAULT 'published',
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS chapters (
		module_id   BIGINT NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
		id          BIGINT NOT NULL,
		title       VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		content     TEXT NOT NULL DEFAULT '',
		has_quiz    BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (module_id, id)
	);

	CREATE TABLE IF NOT EXISTS quiz_questions (
		id             BIGSERIAL PRIMARY KEY,
		module_id      BIGINT NOT NULL,
		chapter_id     BIGINT NOT NULL,
		position       INT NOT NULL,
		question       TEXT NOT NULL,
		options        JSONB NOT NULL,
		correct_option VARCHAR(5) NOT NULL,
		explanation    TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (module_id, chapter_id) REFERENCES chapters(module_id, id) ON DELETE CASCADE,
		UNIQUE(module_id, chapter_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_quiz_questions_chapter ON quiz_questions(module_id, chapter_id, position);

	CREATE TABLE IF NOT EXISTS user_progress (
		user_id            BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		total_xp           BIGINT NOT NULL DEFAULT 0 CHECK (total_xp >= 0),
		weekly_xp          BIGINT NOT NULL DEFAULT 0,
		weekly_xp_reset_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		xp_updated_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		created_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS chapter_completions (
		user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		module_id    BIGINT NOT NULL,
		chapter_id   BIGINT NOT NULL,
		completed_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (user_id, module_id, chapter_id)
	);

	CREATE TABLE IF NOT EXISTS quiz_completions (
		user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		module_id    BIGINT NOT NULL,
		chapter_id   BIGINT NOT NULL,
		completed_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (user_id, module_id, chapter_id)
	);

	CREATE TABLE IF NOT EXISTS user_badges (
		id        BIGSERIAL PRIMARY KEY,
		user_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		badge     VARCHAR(100) NOT NULL,
		earned_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, badge)
	);

	CREATE INDEX IF NOT EXISTS idx_user_badges_user ON user_badges(user_id);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		module_id  BIGINT NOT NULL,
		chapter_id BIGINT NOT NULL,
		score      INT NOT NULL CHECK (score >= 0 AND score <= 100),
		earned_xp  BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_quiz_attempts_user ON quiz_attempts(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS discussions (
		id            BIGSERIAL PRIMARY KEY,
		title         VARCHAR(255) NOT NULL,
		content       TEXT NOT NULL,
		author_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		tags          TEXT[] NOT NULL DEFAULT '{}',
		likes         INT NOT NULL DEFAULT 0,
		comment_count INT NOT NULL DEFAULT 0,
		created_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_discussions_created ON discussions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_discussions_tags ON discussions USING GIN(tags);

	CREATE TABLE IF NOT EXISTS discussion_comments (
		id            BIGSERIAL PRIMARY KEY,
		discussion_id BIGINT NOT NULL REFERENCES discussions(id) ON DELETE CASCADE,
		parent_id     BIGINT REFERENCES discussion_comments(id) ON DELETE CASCADE,
		author_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content       TEXT NOT NULL,
		created_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_comments_discussion ON discussion_comments(discussion_id, created_at);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Idempotent column additions for databases created before these fields
	alterStatements := []string{
		`ALTER TABLE user_progress ADD COLUMN IF NOT EXISTS weekly_xp BIGINT NOT NULL DEFAULT 0`,
		`ALTER TABLE user_progress ADD COLUMN IF NOT EXISTS weekly_xp_reset_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()`,
		`ALTER TABLE user_progress ADD COLUMN IF NOT EXISTS xp_updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()`,
		`ALTER TABLE modules ADD COLUMN IF NOT EXISTS status VARCHAR(20) NOT NULL DEFAULT 'published'`,
	}

	for _, stmt := range alterStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("alter table failed: %w", err)
		}
	}

	// Rank queries order by XP with xp_updated_at as the tie-break
	rankIndexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_progress_alltime ON user_progress(total_xp DESC, xp_updated_at ASC)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_weekly ON user_progress(weekly_xp DESC, xp_updated_at ASC)`,
	}
	for _, stmt := range rankIndexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index failed: %w", err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// generateUsernameBase creates a lowercase alphanumeric base from a user's name.
func generateUsernameBase(name string) string {
	var result []byte
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			result = append(result, byte(c))
		}
	}
	if len(result) == 0 {
		return "user"
	}
	if len(result) > 12 {
		result = result[:12]
	}
	return string(result)
}

// rng is a seeded random source for username generation.
var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// GenerateUsername creates a username candidate from a name by appending
// random digits. Caller handles the unique constraint and retries.
func GenerateUsername(name string) string {
	return fmt.Sprintf("%s%04d", generateUsernameBase(name), rng.Intn(10000))
}

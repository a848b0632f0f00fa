package discussions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/constitution-quest/backend/internal/models"
	"github.com/lib/pq"
)

var ErrDiscussionNotFound = errors.New("discussion not found")

const (
	SortRecent     = "recent"
	SortPopular    = "popular"
	SortUnanswered = "unanswered"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListFilter narrows and orders the discussion list.
type ListFilter struct {
	Sort  string
	Tag   string
	Page  int
	Limit int
}

func orderClause(sort string) (string, error) {
	switch sort {
	case SortRecent, "":
		return "d.created_at DESC", nil
	case SortPopular:
		return "d.likes DESC, d.comment_count DESC, d.created_at DESC", nil
	case SortUnanswered:
		return "d.comment_count ASC, d.created_at DESC", nil
	default:
		return "", fmt.Errorf("unknown sort %q", sort)
	}
}

// List returns a page of discussions with pagination metadata and the
// most used tags across all discussions.
func (s *Store) List(ctx context.Context, f ListFilter) (*models.DiscussionListResponse, error) {
	order, err := orderClause(f.Sort)
	if err != nil {
		return nil, err
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 50 {
		f.Limit = 20
	}

	where := ""
	args := []interface{}{}
	if f.Tag != "" {
		where = "WHERE $1 = ANY(d.tags)"
		args = append(args, f.Tag)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM discussions d " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count discussions: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	limitPos := len(args) + 1
	query := fmt.Sprintf(
		`SELECT d.id, d.title, d.content, d.author_id, u.name, d.tags,
		        d.likes, d.comment_count, d.created_at, d.updated_at
		 FROM discussions d
		 JOIN users u ON u.id = d.author_id
		 %s
		 ORDER BY %s
		 LIMIT $%d OFFSET $%d`,
		where, order, limitPos, limitPos+1,
	)
	args = append(args, f.Limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	defer rows.Close()

	discussions := []models.Discussion{}
	for rows.Next() {
		d, err := scanDiscussion(rows)
		if err != nil {
			return nil, err
		}
		discussions = append(discussions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := s.popularTags(ctx, 10)
	if err != nil {
		return nil, err
	}

	pages := (total + f.Limit - 1) / f.Limit
	return &models.DiscussionListResponse{
		Discussions: discussions,
		Pagination:  models.Pagination{Total: total, Page: f.Page, Limit: f.Limit, Pages: pages},
		PopularTags: tags,
	}, nil
}

func (s *Store) popularTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag, COUNT(*) AS uses
		 FROM discussions, unnest(tags) AS tag
		 GROUP BY tag
		 ORDER BY uses DESC, tag ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("popular tags: %w", err)
	}
	defer rows.Close()

	tags := []models.TagCount{}
	for rows.Next() {
		var t models.TagCount
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.Slug = slugify(t.Name)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Get loads one discussion with its comment thread. Replies nest one
// level deep under their parent comment.
func (s *Store) Get(ctx context.Context, id int64) (*models.DiscussionDetailResponse, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT d.id, d.title, d.content, d.author_id, u.name, d.tags,
		        d.likes, d.comment_count, d.created_at, d.updated_at
		 FROM discussions d
		 JOIN users u ON u.id = d.author_id
		 WHERE d.id = $1`,
		id,
	)
	d, err := scanDiscussion(row)
	if err == sql.ErrNoRows {
		return nil, ErrDiscussionNotFound
	}
	if err != nil {
		return nil, err
	}

	comments, err := s.comments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.DiscussionDetailResponse{Discussion: d, Comments: comments}, nil
}

func (s *Store) comments(ctx context.Context, discussionID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.discussion_id, c.parent_id, c.author_id, u.name, c.content, c.created_at
		 FROM discussion_comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.discussion_id = $1
		 ORDER BY c.created_at ASC`,
		discussionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	defer rows.Close()

	var all []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.DiscussionID, &c.ParentID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		all = append(all, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return threadComments(all), nil
}

// threadComments attaches replies to their parent; replies to replies
// flatten under the top-level ancestor's thread.
func threadComments(all []models.Comment) []models.Comment {
	top := []models.Comment{}
	index := map[int64]int{}
	for _, c := range all {
		if c.ParentID == nil {
			top = append(top, c)
			index[c.ID] = len(top) - 1
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			top[i].Replies = append(top[i].Replies, c)
			index[c.ID] = i
		}
	}
	return top
}

// Create inserts a discussion and returns it with the author name filled.
func (s *Store) Create(ctx context.Context, authorID int64, req models.CreateDiscussionRequest) (*models.Discussion, error) {
	var d models.Discussion
	var tags pq.StringArray
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO discussions (title, content, author_id, tags)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, title, content, author_id, tags, likes, comment_count, created_at, updated_at`,
		req.Title, req.Content, authorID, pq.Array(normalizeTags(req.Tags)),
	).Scan(&d.ID, &d.Title, &d.Content, &d.AuthorID, &tags, &d.Likes, &d.CommentCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create discussion: %w", err)
	}
	d.Tags = tags

	if err := s.db.QueryRowContext(ctx,
		`SELECT name FROM users WHERE id = $1`, authorID,
	).Scan(&d.AuthorName); err != nil {
		return nil, fmt.Errorf("load author: %w", err)
	}
	return &d, nil
}

// AddComment inserts a comment and bumps the discussion's comment count
// in one transaction.
func (s *Store) AddComment(ctx context.Context, discussionID, authorID int64, req models.CreateCommentRequest) (*models.Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin comment tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM discussions WHERE id = $1)`, discussionID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check discussion: %w", err)
	}
	if !exists {
		return nil, ErrDiscussionNotFound
	}

	var c models.Comment
	err = tx.QueryRowContext(ctx,
		`INSERT INTO discussion_comments (discussion_id, parent_id, author_id, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, discussion_id, parent_id, author_id, content, created_at`,
		discussionID, req.ParentID, authorID, req.Content,
	).Scan(&c.ID, &c.DiscussionID, &c.ParentID, &c.AuthorID, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE discussions SET comment_count = comment_count + 1, updated_at = NOW() WHERE id = $1`,
		discussionID,
	); err != nil {
		return nil, fmt.Errorf("bump comment count: %w", err)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT name FROM users WHERE id = $1`, authorID,
	).Scan(&c.AuthorName); err != nil {
		return nil, fmt.Errorf("load author: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit comment tx: %w", err)
	}
	return &c, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDiscussion(row rowScanner) (models.Discussion, error) {
	var d models.Discussion
	var tags pq.StringArray
	err := row.Scan(&d.ID, &d.Title, &d.Content, &d.AuthorID, &d.AuthorName, &tags,
		&d.Likes, &d.CommentCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return d, err
	}
	d.Tags = tags
	return d, nil
}

func normalizeTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}

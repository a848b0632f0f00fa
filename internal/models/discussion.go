package models

import "time"

// ── Discussion Types ─────────────────────────────────────

type Discussion struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	AuthorID     int64     `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	Tags         []string  `json:"tags"`
	Likes        int       `json:"likes"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Comment struct {
	ID           int64     `json:"id"`
	DiscussionID int64     `json:"discussion_id"`
	ParentID     *int64    `json:"parent_id,omitempty"`
	AuthorID     int64     `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	Replies      []Comment `json:"replies,omitempty"`
}

// ── Request Types ────────────────────────────────────────

type CreateDiscussionRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// ── Response Types ────────────────────────────────────────

type DiscussionListResponse struct {
	Discussions []Discussion `json:"discussions"`
	Pagination  Pagination   `json:"pagination"`
	PopularTags []TagCount   `json:"popular_tags"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type TagCount struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type DiscussionDetailResponse struct {
	Discussion
	Comments []Comment `json:"comments"`
}

// CreateDiscussionResponse carries the new discussion plus the reward
// outcome of the creation event. Reward is nil when the reward engine
// was unavailable — the discussion is still created.
type CreateDiscussionResponse struct {
	Discussion Discussion    `json:"discussion"`
	Reward     *RewardResult `json:"reward,omitempty"`
}

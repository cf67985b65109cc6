// Package commentfeed is the client side of the realtime comment system: a
// REST-seeded, event-synchronized local view of one anime's comment section.
// The server's comment store stays the source of truth; this cache is a
// disposable projection that can always be rebuilt from a fresh page fetch.
package commentfeed

import "time"

// Comment mirrors the server's comment response shape. It has no identity of
// its own; any update event matching its ID overwrites it wholesale.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	AnimeID   int64     `json:"anime_id"`
	Content   string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LikeCount int       `json:"like_count"`
	LikedBy   []string  `json:"liked_by"`
}

// Pagination mirrors the server's page window
type Pagination struct {
	Current    int   `json:"current"`
	Total      int   `json:"total"`
	TotalItems int64 `json:"totalItems"`
}

// Page is one fetched page of comments
type Page struct {
	Comments   []Comment  `json:"comments"`
	Pagination Pagination `json:"pagination"`
}

// EventKind tags a comment mutation event
type EventKind string

const (
	EventCreated EventKind = "comment-created"
	EventUpdated EventKind = "comment-updated"
	EventDeleted EventKind = "comment-deleted"
)

// Event is the tagged variant carried on the realtime channel: created and
// updated hold the full comment, deleted holds only the comment id.
type Event struct {
	Kind      EventKind
	Comment   *Comment
	CommentID string
}

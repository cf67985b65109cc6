package websocket

import (
	"encoding/json"
	"log/slog"
	"time"

	"animehub/internal/http-api/dto"
)

// Message protocol definitions

// Message types and structures
type MessageType string

const (
	TypeJoin   MessageType = "join"   // client asks to join an anime room
	TypeLeave  MessageType = "leave"  // client asks to leave its current room
	TypeSystem MessageType = "system" // system message

	// comment mutation events fanned out to a room; created/updated carry the
	// full comment, deleted carries only the comment id
	TypeCommentCreated MessageType = "comment-created"
	TypeCommentUpdated MessageType = "comment-updated"
	TypeCommentDeleted MessageType = "comment-deleted"
)

// Message structure for WebSocket communication. One struct covers the
// client->server control plane (join/leave) and the server->room event plane.
type Message struct {
	Type      MessageType          `json:"type"`
	AnimeID   int64                `json:"anime_id,omitempty"`   // room key
	Comment   *dto.CommentResponse `json:"comment,omitempty"`    // set for comment-created / comment-updated
	CommentID string               `json:"comment_id,omitempty"` // set for comment-deleted
	Content   string               `json:"content,omitempty"`    // system notices
	Timestamp time.Time            `json:"timestamp"`            // time in UTC format
}

// NewCommentCreatedMessage wraps a freshly persisted comment
func NewCommentCreatedMessage(comment *dto.CommentResponse) *Message {
	return &Message{
		Type:      TypeCommentCreated,
		AnimeID:   comment.AnimeID,
		Comment:   comment,
		Timestamp: time.Now().UTC(),
	}
}

// NewCommentUpdatedMessage wraps an edited or like-toggled comment
func NewCommentUpdatedMessage(comment *dto.CommentResponse) *Message {
	return &Message{
		Type:      TypeCommentUpdated,
		AnimeID:   comment.AnimeID,
		Comment:   comment,
		Timestamp: time.Now().UTC(),
	}
}

// NewCommentDeletedMessage carries only the removed comment id
func NewCommentDeletedMessage(animeID int64, commentID string) *Message {
	return &Message{
		Type:      TypeCommentDeleted,
		AnimeID:   animeID,
		CommentID: commentID,
		Timestamp: time.Now().UTC(),
	}
}

// NewSystemMessage builds a system notice for a room
func NewSystemMessage(animeID int64, content string) *Message {
	return &Message{
		Type:      TypeSystem,
		AnimeID:   animeID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON: marshal Message struct to JSON
func (m *Message) ToJSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("Failed to marshal message to JSON", "error", err)
		return nil, err
	}
	return data, nil
}

// MessageFromJSON: unmarshal JSON data to Message struct
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	if err != nil {
		slog.Error("Failed to unmarshal message from JSON", "error", err)
		return nil, err
	}
	return &msg, nil
}

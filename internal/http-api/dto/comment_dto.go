package dto

import (
	"time"

	"animehub/internal/http-api/models"
)

// CreateCommentDTO for creating a comment. The length bound applies to the
// trimmed text, so it lives in the service, not in a binding tag.
type CreateCommentDTO struct {
	Content string `json:"text" binding:"required"`
}

// UpdateCommentDTO for updating a comment
type UpdateCommentDTO struct {
	Content string `json:"text" binding:"required"`
}

// CommentResponse for returning comment information
type CommentResponse struct {
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

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO.
// LikeCount is computed from the loaded likes so it can never drift from the
// liked_by membership.
func FromModelToCommentResponse(comment *models.Comment) *CommentResponse {
	likedBy := make([]string, 0, len(comment.LikedBy))
	for _, like := range comment.LikedBy {
		likedBy = append(likedBy, like.UserID)
	}

	return &CommentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		Username:  comment.User.Username,
		Avatar:    comment.User.Avatar,
		AnimeID:   comment.AnimeID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		LikeCount: len(likedBy),
		LikedBy:   likedBy,
	}
}

// Pagination describes the page window of a comment listing
type Pagination struct {
	Current    int   `json:"current"`
	Total      int   `json:"total"`
	TotalItems int64 `json:"totalItems"`
}

// PaginatedCommentsResponse for returning paginated comments
type PaginatedCommentsResponse struct {
	Comments   []CommentResponse `json:"comments"`
	Pagination Pagination        `json:"pagination"`
}

// NewPaginatedCommentsResponse creates a paginated comment response
func NewPaginatedCommentsResponse(comments []CommentResponse, totalItems int64, page, limit int) *PaginatedCommentsResponse {
	totalPages := int(totalItems) / limit
	if int(totalItems)%limit != 0 {
		totalPages++
	}

	return &PaginatedCommentsResponse{
		Comments: comments,
		Pagination: Pagination{
			Current:    page,
			Total:      totalPages,
			TotalItems: totalItems,
		},
	}
}

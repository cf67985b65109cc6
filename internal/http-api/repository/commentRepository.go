package repository

import (
	"errors"

	"animehub/internal/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *models.Comment) error
	Update(comment *models.Comment) error
	Delete(commentID string) error
	GetByID(commentID string) (*models.Comment, error)
	GetByAnime(animeID int64, page, pageSize int) ([]models.Comment, int64, error)
	AddLike(commentID, userID string) error
	RemoveLike(commentID, userID string) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create a new comment
func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// Update an existing comment
func (r *commentRepository) Update(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// Delete a comment permanently; ownership is checked by the service layer so
// the admin path can reuse this
func (r *commentRepository) Delete(commentID string) error {
	result := r.db.Where("id = ?", commentID).Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves a comment by its ID with author and likes loaded
func (r *commentRepository) GetByID(commentID string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Where("id = ?", commentID).
		Preload("User").
		Preload("LikedBy").
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByAnime retrieves comments for an anime with pagination, newest first.
// An out-of-range page yields an empty slice, not an error.
func (r *commentRepository) GetByAnime(animeID int64, page, pageSize int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	// Count total comments
	if err := r.db.Model(&models.Comment{}).Where("anime_id = ?", animeID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get paginated comments
	offset := (page - 1) * pageSize
	err := r.db.Where("anime_id = ?", animeID).
		Preload("User").
		Preload("LikedBy").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&comments).Error

	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// AddLike records a like. Two racing likes from the same user both pass the
// service's existence check; the composite unique index rejects the loser and
// that is treated as success since the like row exists either way.
func (r *commentRepository) AddLike(commentID, userID string) error {
	like := &models.CommentLike{
		CommentID: commentID,
		UserID:    userID,
	}
	err := r.db.Create(like).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}
		return err
	}
	return nil
}

// RemoveLike deletes a like if present and reports whether a row was removed
func (r *commentRepository) RemoveLike(commentID, userID string) (bool, error) {
	result := r.db.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

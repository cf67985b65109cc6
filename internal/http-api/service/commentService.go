package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"animehub/internal/http-api/dto"
	"animehub/internal/http-api/models"
	"animehub/internal/http-api/repository"
	ws "animehub/internal/websocket"

	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const maxCommentLength = 1000

var (
	ErrAnimeNotFound    = errors.New("anime not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrNotCommentAuthor = errors.New("you don't have permission to modify this comment")
	ErrEmptyComment     = errors.New("comment text must not be empty")
	ErrCommentTooLong   = errors.New("comment text must be at most 1000 characters")
	ErrTooManyComments  = errors.New("too many comments, slow down")
)

// Broadcaster fans a comment mutation out to everyone viewing the same anime.
// The hub implements it; tests substitute a spy.
type Broadcaster interface {
	BroadcastComment(msg *ws.Message)
}

type CommentService interface {
	GetAnimeComments(animeID int64, page, limit int) (*dto.PaginatedCommentsResponse, error)
	CreateComment(userID string, animeID int64, content string) (*dto.CommentResponse, error)
	UpdateComment(commentID, userID, content string) (*dto.CommentResponse, error)
	DeleteComment(commentID, userID, role string) error
	ToggleLike(commentID, userID string) (*dto.CommentResponse, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	animeRepo   repository.AnimeRepository
	broadcaster Broadcaster

	// per-user creation limiter: burst of 5, then one comment every 2s
	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

func NewCommentService(commentRepo repository.CommentRepository, animeRepo repository.AnimeRepository, broadcaster Broadcaster) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		animeRepo:   animeRepo,
		broadcaster: broadcaster,
		limiters:    make(map[string]*rate.Limiter),
	}
}

// GetAnimeComments retrieves comments for an anime newest first. Out-of-range
// pages come back as an empty list with the real totals.
func (s *commentService) GetAnimeComments(animeID int64, page, limit int) (*dto.PaginatedCommentsResponse, error) {
	ctx := context.Background()

	// Check if anime exists
	if _, err := s.animeRepo.GetByID(ctx, animeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnimeNotFound
		}
		return nil, err
	}

	comments, total, err := s.commentRepo.GetByAnime(animeID, page, limit)
	if err != nil {
		return nil, err
	}

	commentResponses := make([]dto.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		commentResponses = append(commentResponses, *dto.FromModelToCommentResponse(&comment))
	}

	return dto.NewPaginatedCommentsResponse(commentResponses, total, page, limit), nil
}

// CreateComment validates and persists a new comment, then broadcasts it to
// the anime's room. The REST response and the broadcast carry the same
// payload; clients dedupe by id.
func (s *commentService) CreateComment(userID string, animeID int64, content string) (*dto.CommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	if !s.allowCreate(userID) {
		return nil, ErrTooManyComments
	}

	// Check if anime exists
	ctx := context.Background()
	if _, err := s.animeRepo.GetByID(ctx, animeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnimeNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		UserID:  userID,
		AnimeID: animeID,
		Content: content,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// Reload with author data
	comment, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, err
	}

	response := dto.FromModelToCommentResponse(comment)
	s.broadcaster.BroadcastComment(ws.NewCommentCreatedMessage(response))
	return response, nil
}

// UpdateComment replaces the text of the requester's own comment. Identity
// fields (id, author, anime, created_at) never change.
func (s *commentService) UpdateComment(commentID, userID, content string) (*dto.CommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	// Check ownership; admins may delete any comment but not edit it
	if comment.UserID != userID {
		return nil, ErrNotCommentAuthor
	}

	comment.Content = content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	// Reload with author data
	comment, err = s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}

	response := dto.FromModelToCommentResponse(comment)
	s.broadcaster.BroadcastComment(ws.NewCommentUpdatedMessage(response))
	return response, nil
}

// DeleteComment removes a comment permanently. The author may delete their
// own comment; the admin role may delete any.
func (s *commentService) DeleteComment(commentID, userID, role string) error {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != userID && role != "admin" {
		return ErrNotCommentAuthor
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	s.broadcaster.BroadcastComment(ws.NewCommentDeletedMessage(comment.AnimeID, commentID))
	return nil
}

// ToggleLike flips the requester's like on a comment. A retried toggle flips
// the state again; that is the documented semantic, not a bug. Like toggles
// are broadcast as full-object updates.
func (s *commentService) ToggleLike(commentID, userID string) (*dto.CommentResponse, error) {
	if _, err := s.commentRepo.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	removed, err := s.commentRepo.RemoveLike(commentID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		if err := s.commentRepo.AddLike(commentID, userID); err != nil {
			return nil, err
		}
	}

	// Reload with likes; like_count is derived from the rows
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}

	response := dto.FromModelToCommentResponse(comment)
	s.broadcaster.BroadcastComment(ws.NewCommentUpdatedMessage(response))
	return response, nil
}

func (s *commentService) allowCreate(userID string) bool {
	s.limiterMu.Lock()
	limiter, ok := s.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(0.5), 5)
		s.limiters[userID] = limiter
	}
	s.limiterMu.Unlock()
	return limiter.Allow()
}

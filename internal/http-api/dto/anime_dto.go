package dto

import (
	"time"

	"animehub/internal/http-api/models"
)

// AnimeResponse for returning catalog entries
type AnimeResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Synopsis      *string   `json:"synopsis,omitempty"`
	Status        *string   `json:"status,omitempty"`
	TotalEpisodes *int      `json:"total_episodes,omitempty"`
	CoverURL      *string   `json:"cover_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromModelToAnimeResponse converts an Anime model to AnimeResponse DTO
func FromModelToAnimeResponse(anime *models.Anime) *AnimeResponse {
	return &AnimeResponse{
		ID:            anime.ID,
		Title:         anime.Title,
		Synopsis:      anime.Synopsis,
		Status:        anime.Status,
		TotalEpisodes: anime.TotalEpisodes,
		CoverURL:      anime.CoverURL,
		CreatedAt:     anime.CreatedAt,
	}
}

// PaginatedAnimeResponse for returning paginated catalog listings
type PaginatedAnimeResponse struct {
	Data       []AnimeResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// NewPaginatedAnimeResponse creates a paginated anime response
func NewPaginatedAnimeResponse(data []AnimeResponse, total int64, page, pageSize int) *PaginatedAnimeResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &PaginatedAnimeResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

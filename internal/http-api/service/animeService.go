package service

import (
	"context"
	"errors"

	"animehub/internal/http-api/dto"
	"animehub/internal/http-api/repository"

	"gorm.io/gorm"
)

type AnimeService interface {
	GetAll(ctx context.Context, page, pageSize int) (*dto.PaginatedAnimeResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.AnimeResponse, error)
}

type animeService struct {
	animeRepo repository.AnimeRepository
}

func NewAnimeService(animeRepo repository.AnimeRepository) AnimeService {
	return &animeService{animeRepo: animeRepo}
}

// GetAll retrieves the catalog with pagination
func (s *animeService) GetAll(ctx context.Context, page, pageSize int) (*dto.PaginatedAnimeResponse, error) {
	anime, total, err := s.animeRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AnimeResponse, 0, len(anime))
	for _, a := range anime {
		responses = append(responses, *dto.FromModelToAnimeResponse(&a))
	}

	return dto.NewPaginatedAnimeResponse(responses, total, page, pageSize), nil
}

// GetByID retrieves one catalog entry
func (s *animeService) GetByID(ctx context.Context, id int64) (*dto.AnimeResponse, error) {
	anime, err := s.animeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnimeNotFound
		}
		return nil, err
	}

	return dto.FromModelToAnimeResponse(anime), nil
}

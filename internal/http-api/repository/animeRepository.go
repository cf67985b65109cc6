package repository

import (
	"context"

	"animehub/internal/http-api/models"

	"gorm.io/gorm"
)

type AnimeRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Anime, error)
	GetAll(ctx context.Context, page, pageSize int) ([]models.Anime, int64, error)
	Create(ctx context.Context, anime *models.Anime) error
}

type animeRepository struct {
	db *gorm.DB
}

func NewAnimeRepository(db *gorm.DB) AnimeRepository {
	return &animeRepository{db: db}
}

// GetByID retrieves an anime by its ID
func (r *animeRepository) GetByID(ctx context.Context, id int64) (*models.Anime, error) {
	var anime models.Anime
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&anime).Error
	if err != nil {
		return nil, err
	}
	return &anime, nil
}

// GetAll retrieves the catalog with pagination
func (r *animeRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Anime, int64, error) {
	var anime []models.Anime
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Anime{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Order("title ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&anime).Error

	if err != nil {
		return nil, 0, err
	}

	return anime, total, nil
}

// Create inserts a catalog entry (used by seeding and admin tooling)
func (r *animeRepository) Create(ctx context.Context, anime *models.Anime) error {
	return r.db.WithContext(ctx).Create(anime).Error
}

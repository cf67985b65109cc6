package models

import "time"

type Anime struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title         string    `json:"title" gorm:"not null;index"`
	Synopsis      *string   `json:"synopsis,omitempty" gorm:"type:text"`
	Status        *string   `json:"status,omitempty"` // "airing", "completed", "upcoming"
	TotalEpisodes *int      `json:"total_episodes,omitempty"`
	CoverURL      *string   `json:"cover_url,omitempty"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Anime) TableName() string {
	return "anime"
}

package portfolio

import (
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/tirzah-studio/site-api/domain/content"
)

// Kind names the record in messages ("Portfolio item not found").
const Kind = "Portfolio item"

// Media types accepted for an item.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Item is a showcased project.
type Item struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Category     string          `json:"category"`
	MediaType    string          `json:"mediaType"`
	MediaSrc     string          `json:"mediaSrc"`
	VideoSrc     *string         `json:"videoSrc"`
	Description  string          `json:"description"`
	Link         *string         `json:"link"`
	Background   *string         `json:"background"`
	Services     []content.Entry `json:"services"`
	Achievements []content.Entry `json:"achievements"`
	Stats        *content.Stats  `json:"stats"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (it *Item) videoPath() string {
	if it.VideoSrc == nil {
		return ""
	}
	return *it.VideoSrc
}

// row mirrors portfolio_items; the jsonb columns stay raw until decoded.
type row struct {
	ID           string             `db:"id"`
	Title        string             `db:"title"`
	Category     string             `db:"category"`
	MediaType    string             `db:"media_type"`
	MediaSrc     string             `db:"media_src"`
	VideoSrc     *string            `db:"video_src"`
	Description  string             `db:"description"`
	Link         *string            `db:"link"`
	Background   *string            `db:"background"`
	Services     types.NullJSONText `db:"services"`
	Achievements types.NullJSONText `db:"achievements"`
	Stats        types.NullJSONText `db:"stats"`
	IsActive     bool               `db:"is_active"`
	CreatedAt    time.Time          `db:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at"`
}

func (r row) item() (Item, error) {
	services, err := content.ParseEntries(r.Services)
	if err != nil {
		return Item{}, err
	}
	achievements, err := content.ParseEntries(r.Achievements)
	if err != nil {
		return Item{}, err
	}
	stats, err := content.ParseStats(r.Stats)
	if err != nil {
		return Item{}, err
	}
	return Item{
		ID:           r.ID,
		Title:        r.Title,
		Category:     r.Category,
		MediaType:    r.MediaType,
		MediaSrc:     r.MediaSrc,
		VideoSrc:     r.VideoSrc,
		Description:  r.Description,
		Link:         r.Link,
		Background:   r.Background,
		Services:     services,
		Achievements: achievements,
		Stats:        stats,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

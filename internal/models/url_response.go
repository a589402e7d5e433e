package models

import (
	"time"

	"shortify-be/internal/entities"
)

// ShortenResponse represents the response after creating a short URL.
// ShortURL is the bare short code.
type ShortenResponse struct {
	Status   bool   `json:"status"`
	Message  string `json:"message"`
	ShortURL string `json:"shortUrl"`
}

// URLItem is one entry of a user's history
type URLItem struct {
	ID          string     `json:"id"`
	ShortURL    string     `json:"shortUrl"`
	OriginalURL string     `json:"originalUrl"`
	VisitCount  int64      `json:"visitCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// ListURLsResponse is one page of history
type ListURLsResponse struct {
	Status      bool      `json:"status"`
	URLs        []URLItem `json:"urls"`
	Total       int64     `json:"total"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}

// NewURLItem converts an entity to its response shape
func NewURLItem(u *entities.URL) URLItem {
	return URLItem{
		ID:          u.ID,
		ShortURL:    u.ShortCode,
		OriginalURL: u.OriginalURL,
		VisitCount:  u.VisitCount,
		CreatedAt:   u.CreatedAt,
		ExpiresAt:   u.ExpiresAt,
	}
}

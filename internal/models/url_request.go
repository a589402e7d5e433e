package models

// ShortenRequest represents the request body for creating a short URL
type ShortenRequest struct {
	OriginalURL string `json:"originalUrl" binding:"required,max=2048"`
}

// ListURLsQuery is bound from GET /url/getAll. Page and Limit are pointers
// so an explicit 0 fails min=1 instead of reading as absent.
type ListURLsQuery struct {
	Page   *int   `form:"page" binding:"omitempty,min=1"`
	Limit  *int   `form:"limit" binding:"omitempty,min=1"`
	Search string `form:"search" binding:"max=200"`
}

// PageOr returns the requested page or def when none was sent.
func (q ListURLsQuery) PageOr(def int) int {
	if q.Page == nil {
		return def
	}
	return *q.Page
}

// LimitOr returns the requested page size or def when none was sent.
func (q ListURLsQuery) LimitOr(def int) int {
	if q.Limit == nil {
		return def
	}
	return *q.Limit
}

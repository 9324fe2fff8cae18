package model

import "time"

// ShortURL maps a canonical recipe link to its short token
type ShortURL struct {
	ID        int64     `json:"id"`
	FullLink  string    `json:"full_link"`
	ShortLink string    `json:"short_link"`
	CreatedAt time.Time `json:"created_at"`
}

// ShortLinkResponse is the get-link API response
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

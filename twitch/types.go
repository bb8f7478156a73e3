package twitch

import "time"

// Clip is a single clip as returned by the Helix clips endpoint.
type Clip struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	CreatorName  string    `json:"creator_name"`
	ThumbnailURL string    `json:"thumbnail_url"`
	ViewCount    int       `json:"view_count"`
	Duration     float64   `json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
}

type usersResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Login string `json:"login"`
	} `json:"data"`
}

type clipsResponse struct {
	Data []Clip `json:"data"`
}

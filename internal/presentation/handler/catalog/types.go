package catalog

import "time"

type createAlbumRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	ArtistName  string     `json:"artist_name" validate:"required,max=200"`
	ReleaseDate *time.Time `json:"release_date"`
	CoverURL    string     `json:"cover_url" validate:"omitempty,url"`
}

type updateAlbumRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	ArtistName  *string    `json:"artist_name" validate:"omitempty,min=1,max=200"`
	ReleaseDate *time.Time `json:"release_date"`
	CoverURL    *string    `json:"cover_url" validate:"omitempty,url"`
}

type createTrackRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	DurationSec int    `json:"duration_sec" validate:"gte=0"`
	FilePath    string `json:"file_path"`
}

type updateTrackRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	DurationSec *int    `json:"duration_sec" validate:"omitempty,gte=0"`
	FilePath    *string `json:"file_path"`
}

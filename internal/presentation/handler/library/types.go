package library

type createPlaylistRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	IsPublic bool   `json:"is_public"`
}

type addTrackRequest struct {
	TrackID  string `json:"track_id" validate:"required"`
	Position *int   `json:"position" validate:"omitempty,gte=0"`
}

type addFavoriteRequest struct {
	TrackID string `json:"track_id" validate:"required"`
}

package playback

type startRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	TrackID     string `json:"track_id" validate:"required"`
	Volume      *int   `json:"volume" validate:"omitempty,gte=0,lte=100"`
	ContextType string `json:"context_type" validate:"omitempty,oneof=album playlist track"`
	ContextID   string `json:"context_id"`
}

type volumeRequest struct {
	Volume *int `json:"volume" validate:"required,gte=0,lte=100"`
}

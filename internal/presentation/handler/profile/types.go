package profile

type createProfileRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Region      string `json:"region" validate:"omitempty,len=2"`
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	Region      *string `json:"region" validate:"omitempty,len=2"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	IsClosed    *bool   `json:"is_closed"`
}

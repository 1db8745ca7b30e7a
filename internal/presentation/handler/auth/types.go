package auth

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type twoFactorRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type twoFactorResponse struct {
	UserID  string `json:"user_id"`
	Enabled bool   `json:"enabled"`
}

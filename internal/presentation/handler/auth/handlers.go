package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	authService "github.com/hilthontt/melody/internal/application/auth"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/json"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/presentation/utils"
)

type Service interface {
	Register(ctx context.Context, in authService.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*authService.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*authService.TokenPair, error)
	SetTwoFactor(ctx context.Context, userID string, enabled bool) (*domain.User, error)
}

type Handler struct {
	service Service
	logger  logging.Logger
}

func NewHandler(service Service, logger logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.RegisterHandler)
		r.Post("/login", h.LoginHandler)
		r.Post("/token/refresh", h.RefreshHandler)
		r.Post("/{userID}/2fa", h.TwoFactorHandler)
	})
}

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), authService.RegisterInput{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, registerResponse{UserID: user.ID})
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, pair)
}

func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, pair)
}

func (h *Handler) TwoFactorHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireURLParam(w, r, "userID")
	if !ok {
		return
	}

	var req twoFactorRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	user, err := h.service.SetTwoFactor(r.Context(), userID, *req.Enabled)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, twoFactorResponse{UserID: user.ID, Enabled: user.Has2FA})
}

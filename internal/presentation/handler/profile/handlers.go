package profile

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/json"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/presentation/utils"
)

type Service interface {
	Create(ctx context.Context, userID, displayName, region string) (*domain.Profile, error)
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.Profile, error)
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
	r.Route("/profiles/me", func(r chi.Router) {
		r.Get("/", h.GetProfileHandler)
		r.Patch("/", h.UpdateProfileHandler)
	})
}

// InternalRoutes is called by the auth service during registration.
func (h *Handler) InternalRoutes(r chi.Router) {
	r.Post("/internal/profiles", h.CreateProfileHandler)
}

func (h *Handler) CreateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	profile, err := h.service.Create(r.Context(), req.UserID, req.DisplayName, req.Region)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, profile)
}

func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireSubject(w, r, "user_id")
	if !ok {
		return
	}

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireSubject(w, r, "user_id")
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	profile, err := h.service.Update(r.Context(), userID, domain.ProfilePatch{
		DisplayName: req.DisplayName,
		Region:      req.Region,
		AvatarURL:   req.AvatarURL,
		IsClosed:    req.IsClosed,
	})
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, profile)
}

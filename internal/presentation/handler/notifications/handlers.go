package notifications

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/json"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/presentation/utils"
)

const userParam = "user_id"

type Service interface {
	List(ctx context.Context, userID string, includeRead bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
	Settings(ctx context.Context, userID string) (*domain.NotificationSettings, error)
	UpdateSettings(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.NotificationSettings, error)
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
	r.Route("/me/notifications", func(r chi.Router) {
		r.Get("/", h.ListHandler)
		r.Post("/mark-read", h.MarkReadHandler)
		r.Get("/settings", h.GetSettingsHandler)
		r.Put("/settings", h.UpdateSettingsHandler)
	})
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireSubject(w, r, userParam)
	if !ok {
		return
	}

	includeRead, err := utils.QueryBool(r, "include_read", true)
	if err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	items, err := h.service.List(r.Context(), userID, includeRead)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}
	if items == nil {
		items = []domain.Notification{}
	}

	json.Write(w, http.StatusOK, items)
}

// MarkReadHandler marks the listed notifications, or all of them when the
// body names none.
func (h *Handler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireSubject(w, r, userParam)
	if !ok {
		return
	}

	var req markReadRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	updated, err := h.service.MarkRead(r.Context(), userID, req.NotificationIDs)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, markReadResponse{Updated: updated})
}

func (h *Handler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireSubject(w, r, userParam)
	if !ok {
		return
	}

	settings, err := h.service.Settings(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, settings)
}

func (h *Handler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireSubject(w, r, userParam)
	if !ok {
		return
	}

	var req settingsRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), userID, req.patch())
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, settings)
}

package playback

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	playbackService "github.com/hilthontt/melody/internal/application/playback"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/json"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/presentation/utils"
)

type Service interface {
	Start(ctx context.Context, in playbackService.StartInput) (*domain.PlaybackSession, error)
	Get(ctx context.Context, id string) (*domain.PlaybackSession, error)
	Pause(ctx context.Context, id string) (*domain.PlaybackSession, error)
	Resume(ctx context.Context, id string) (*domain.PlaybackSession, error)
	Stop(ctx context.Context, id string) (*domain.PlaybackSession, error)
	Skip(ctx context.Context, id string) (*domain.PlaybackSession, error)
	SetVolume(ctx context.Context, id string, volume int) (*domain.PlaybackSession, error)
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
	r.Route("/playback", func(r chi.Router) {
		r.Post("/start", h.StartHandler)
		r.Get("/{id}", h.GetHandler)
		r.Post("/{id}/pause", h.actionHandler(h.service.Pause))
		r.Post("/{id}/resume", h.actionHandler(h.service.Resume))
		r.Post("/{id}/stop", h.actionHandler(h.service.Stop))
		r.Post("/{id}/skip", h.actionHandler(h.service.Skip))
		r.Post("/{id}/volume", h.VolumeHandler)
	})
}

func (h *Handler) StartHandler(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	session, err := h.service.Start(r.Context(), playbackService.StartInput{
		UserID:      req.UserID,
		TrackID:     req.TrackID,
		Volume:      req.Volume,
		ContextType: req.ContextType,
		ContextID:   req.ContextID,
	})
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, session)
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, session)
}

func (h *Handler) actionHandler(action func(ctx context.Context, id string) (*domain.PlaybackSession, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := action(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.WriteError(w, r, h.logger, err)
			return
		}

		json.Write(w, http.StatusOK, session)
	}
}

func (h *Handler) VolumeHandler(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	session, err := h.service.SetVolume(r.Context(), chi.URLParam(r, "id"), *req.Volume)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, session)
}

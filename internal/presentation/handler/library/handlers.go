package library

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/json"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/presentation/utils"
)

const ownerParam = "owner_id"

type Service interface {
	CreatePlaylist(ctx context.Context, ownerID, title string, isPublic bool) (*domain.Playlist, error)
	ListPlaylists(ctx context.Context, ownerID string) ([]domain.Playlist, error)
	AddTrack(ctx context.Context, ownerID, playlistID, trackID string, position *int) (*domain.PlaylistTrack, error)
	ListTracks(ctx context.Context, ownerID, playlistID string) ([]domain.PlaylistTrack, error)
	AddFavorite(ctx context.Context, userID, trackID string) (*domain.FavoriteTrack, error)
	ListFavorites(ctx context.Context, userID string) ([]domain.FavoriteTrack, error)
	RemoveFavorite(ctx context.Context, userID, trackID string) error
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
	r.Route("/me/playlists", func(r chi.Router) {
		r.Post("/", h.CreatePlaylistHandler)
		r.Get("/", h.ListPlaylistsHandler)
		r.Post("/{id}/tracks", h.AddTrackHandler)
		r.Get("/{id}/tracks", h.ListTracksHandler)
	})

	r.Route("/me/favorites/tracks", func(r chi.Router) {
		r.Post("/", h.AddFavoriteHandler)
		r.Get("/", h.ListFavoritesHandler)
		r.Delete("/{trackID}", h.RemoveFavoriteHandler)
	})
}

func (h *Handler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.RequireSubject(w, r, ownerParam)
	if !ok {
		return
	}

	var req createPlaylistRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	playlist, err := h.service.CreatePlaylist(r.Context(), ownerID, req.Title, req.IsPublic)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, playlist)
}

func (h *Handler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.RequireSubject(w, r, ownerParam)
	if !ok {
		return
	}

	playlists, err := h.service.ListPlaylists(r.Context(), ownerID)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, playlists)
}

func (h *Handler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.RequireSubject(w, r, ownerParam)
	if !ok {
		return
	}

	var req addTrackRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	entry, err := h.service.AddTrack(r.Context(), ownerID, chi.URLParam(r, "id"), req.TrackID, req.Position)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, entry)
}

func (h *Handler) ListTracksHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := utils.RequireSubject(w, r, ownerParam)
	if !ok {
		return
	}

	tracks, err := h.service.ListTracks(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, tracks)
}

func (h *Handler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireSubject(w, r, ownerParam)
	if !ok {
		return
	}

	var req addFavoriteRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	fav, err := h.service.AddFavorite(r.Context(), userID, req.TrackID)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, fav)
}

func (h *Handler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireSubject(w, r, ownerParam)
	if !ok {
		return
	}

	favs, err := h.service.ListFavorites(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, favs)
}

func (h *Handler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.RequireSubject(w, r, ownerParam)
	if !ok {
		return
	}

	if err := h.service.RemoveFavorite(r.Context(), userID, chi.URLParam(r, "trackID")); err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

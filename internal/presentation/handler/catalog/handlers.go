package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	catalogService "github.com/hilthontt/melody/internal/application/catalog"
	"github.com/hilthontt/melody/internal/domain"
	"github.com/hilthontt/melody/internal/infrastructure/json"
	"github.com/hilthontt/melody/internal/infrastructure/logging"
	"github.com/hilthontt/melody/internal/presentation/utils"
)

type Service interface {
	CreateAlbum(ctx context.Context, in catalogService.CreateAlbumInput) (*domain.Album, error)
	GetAlbum(ctx context.Context, id string) (*domain.Album, error)
	ListAlbums(ctx context.Context, offset, limit int) ([]domain.Album, error)
	UpdateAlbum(ctx context.Context, id string, patch domain.AlbumPatch) (*domain.Album, error)
	PublishAlbum(ctx context.Context, id string) (*domain.Album, error)
	ListAlbumTracks(ctx context.Context, albumID string) ([]domain.Track, error)
	CreateTrack(ctx context.Context, albumID string, in catalogService.CreateTrackInput) (*domain.Track, error)
	GetTrack(ctx context.Context, id string) (*domain.Track, error)
	UpdateTrack(ctx context.Context, id string, patch domain.TrackPatch) (*domain.Track, error)
	PublishTrack(ctx context.Context, id string) (*domain.Track, error)
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
	r.Route("/albums", func(r chi.Router) {
		r.Post("/", h.CreateAlbumHandler)
		r.Get("/", h.ListAlbumsHandler)
		r.Get("/{id}", h.GetAlbumHandler)
		r.Patch("/{id}", h.UpdateAlbumHandler)
		r.Post("/{id}/publish", h.PublishAlbumHandler)
		r.Get("/{id}/tracks", h.ListAlbumTracksHandler)
	})

	r.Route("/tracks", func(r chi.Router) {
		r.Post("/albums/{albumID}", h.CreateTrackHandler)
		r.Get("/{id}", h.GetTrackHandler)
		r.Patch("/{id}", h.UpdateTrackHandler)
		r.Post("/{id}/publish", h.PublishTrackHandler)
	})
}

func (h *Handler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	var req createAlbumRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	album, err := h.service.CreateAlbum(r.Context(), catalogService.CreateAlbumInput{
		Title:       req.Title,
		ArtistName:  req.ArtistName,
		ReleaseDate: req.ReleaseDate,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, album)
}

func (h *Handler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	offset, err := utils.QueryInt(r, "offset", 0)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}
	limit, err := utils.QueryInt(r, "limit", catalogService.DefaultPageSize)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	albums, err := h.service.ListAlbums(r.Context(), offset, limit)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, albums)
}

func (h *Handler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.GetAlbum(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, album)
}

func (h *Handler) UpdateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	var req updateAlbumRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	album, err := h.service.UpdateAlbum(r.Context(), chi.URLParam(r, "id"), domain.AlbumPatch{
		Title:       req.Title,
		ArtistName:  req.ArtistName,
		ReleaseDate: req.ReleaseDate,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, album)
}

func (h *Handler) PublishAlbumHandler(w http.ResponseWriter, r *http.Request) {
	album, err := h.service.PublishAlbum(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, album)
}

func (h *Handler) ListAlbumTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.service.ListAlbumTracks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, tracks)
}

func (h *Handler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req createTrackRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	track, err := h.service.CreateTrack(r.Context(), chi.URLParam(r, "albumID"), catalogService.CreateTrackInput{
		Title:       req.Title,
		DurationSec: req.DurationSec,
		FilePath:    req.FilePath,
	})
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, track)
}

// GetTrackHandler also answers the existence checks other services make
// before accepting a track id.
func (h *Handler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, err := h.service.GetTrack(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, track)
}

func (h *Handler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req updateTrackRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	track, err := h.service.UpdateTrack(r.Context(), chi.URLParam(r, "id"), domain.TrackPatch{
		Title:       req.Title,
		DurationSec: req.DurationSec,
		FilePath:    req.FilePath,
	})
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, track)
}

func (h *Handler) PublishTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, err := h.service.PublishTrack(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, track)
}

package search

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
	Search(ctx context.Context, text string, kind domain.SearchKind, limit int) ([]domain.SearchEntry, error)
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
	r.Get("/search", h.SearchHandler)
}

// SearchHandler answers GET /search?q=...&type=album|track&limit=n from the
// read model, which lags the catalog by however long the projection takes.
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseSearchKind(r.URL.Query().Get("type"))
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}
	limit, err := utils.QueryInt(r, "limit", 0)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	results, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), kind, limit)
	if err != nil {
		utils.WriteError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, results)
}

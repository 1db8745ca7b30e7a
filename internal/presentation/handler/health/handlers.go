package health

import (
	"net/http"
	"time"

	"github.com/hilthontt/melody/internal/infrastructure/json"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	service string
}

func NewHandler(service string) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	data := healthResponse{
		Status:    "ok",
		Service:   h.service,
		Timestamp: time.Now().UTC(),
	}
	json.Write(w, http.StatusOK, data)
}

package analytics

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
)

// Handler exposes the analytics endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Collect)
}

func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	month, ok := h.intParam(w, r, "month", 1, 12)
	if !ok {
		return
	}
	year, ok := h.intParam(w, r, "year", 1970, 9999)
	if !ok {
		return
	}

	data, err := h.service.Collect(r.Context(), month, year)
	if err != nil {
		h.logger.Error("collect analytics failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

// intParam parses an optional numeric query parameter; 0 means unspecified.
func (h *Handler) intParam(w http.ResponseWriter, r *http.Request, name string, min, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		httpx.ValidationProblem(w, map[string]string{name: "out of range"})
		return 0, false
	}
	return v, true
}

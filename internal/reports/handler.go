package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
)

const defaultWindowDays = 365

type Handler struct {
	logger  *slog.Logger
	service *Service
	staff   func(http.Handler) http.Handler
}

func NewHandler(logger *slog.Logger, service *Service, staff func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, staff: staff}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.staff)
		r.Get("/sales", h.salesByUserMonth)
	})
}

func (h *Handler) salesByUserMonth(w http.ResponseWriter, r *http.Request) {
	days := defaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Window", "days must be a positive integer")
			return
		}
		days = parsed
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	groups, err := h.service.SalesByUserMonth(r.Context(), since)
	if err != nil {
		h.logger.Error("sales report failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Report Failed", "could not build sales report")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"since": since.Format("2006-01-02"),
		"users": groups,
	})
}

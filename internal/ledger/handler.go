package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-pos/meridian-pos/internal/auth"
	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Handler wires HTTP endpoints for sales.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	user      func(http.Handler) http.Handler
	validator *validator.Validate
}

// NewHandler constructs the sales handler. The user middleware guards every route.
func NewHandler(logger *slog.Logger, service *Service, user func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, user: user, validator: validator.New()}
}

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.user)
		r.Get("/", h.listSales)
		r.Post("/", h.createSale)
		r.Get("/{id}", h.getSale)
	})
}

type createSaleRequest struct {
	Items []createSaleItem `json:"items" validate:"required,min=1,dive"`
}

type createSaleItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type saleResponse struct {
	*Sale
	Total float64 `json:"total"`
}

// insufficientStockProblem extends the RFC7807 body with the offending
// product so clients can re-present the form with the available quantity.
type insufficientStockProblem struct {
	httpx.ProblemDetail
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}

	var req createSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	items := make([]RequestedItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, RequestedItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	sale, err := h.service.CreateSale(r.Context(), identity.ID, items)
	if err != nil {
		h.respondCreateError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saleResponse{Sale: sale, Total: sale.Total()})
}

func (h *Handler) respondCreateError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientStockError
	var unknown *UnknownProductError
	var invalid *InvalidQuantityError
	switch {
	case errors.As(err, &insufficient):
		httpx.JSON(w, http.StatusConflict, insufficientStockProblem{
			ProblemDetail: httpx.ProblemDetail{
				Title:  "Insufficient Stock",
				Status: http.StatusConflict,
				Detail: insufficient.Error(),
			},
			ProductID: insufficient.ProductID.String(),
			Available: insufficient.Available,
		})
	case errors.As(err, &unknown):
		httpx.Problem(w, http.StatusNotFound, "Not Found", unknown.Error())
	case errors.As(err, &invalid), errors.Is(err, ErrNoItems):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("create sale failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "the sale could not be recorded, nothing was charged")
	}
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sale id must be a UUID")
		return
	}
	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "sale not found")
			return
		}
		h.logger.Error("get sale failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saleResponse{Sale: sale, Total: sale.Total()})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{}
	q := r.URL.Query()
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if userStr := q.Get("user_id"); userStr != "" {
		if id, err := strconv.ParseInt(userStr, 10, 64); err == nil {
			filter.UserID = id
		}
	}
	if sinceStr := q.Get("since"); sinceStr != "" {
		if since, err := time.Parse(time.RFC3339, sinceStr); err == nil {
			filter.Since = since
		} else {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "since must be RFC3339")
			return
		}
	}

	sales, total, err := h.service.ListSales(r.Context(), filter)
	if err != nil {
		h.logger.Error("list sales failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	responses := make([]saleResponse, 0, len(sales))
	for i := range sales {
		responses = append(responses, saleResponse{Sale: &sales[i], Total: sales[i].Total()})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"sales":      responses,
		"pagination": shared.NewPagination(filter.Page, filter.Limit, total),
	})
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orders    service.OrderService
	discounts service.DiscountService
	logger    zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, discounts service.DiscountService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		discounts: discounts,
		logger:    logger.With().Str("handler", "order").Logger(),
	}
}

// currentUser resolves the authenticated user's identity from the request
// context. Identity resolution itself happens upstream in middleware.
func (h *OrderHandler) currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing user identity", h.logger)
		return uuid.Nil, false
	}
	return userID, true
}

// orderIDFromPath extracts the order id segment from /api/orders/{id}[/discount].
func (h *OrderHandler) orderIDFromPath(w http.ResponseWriter, path string) (uuid.UUID, bool) {
	rest := strings.Trim(strings.TrimPrefix(path, "/api/orders"), "/")
	idPart := strings.SplitN(rest, "/", 2)[0]
	if idPart == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "order ID is required", h.logger)
		return uuid.Nil, false
	}

	orderID, err := uuid.Parse(idPart)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid order ID format", h.logger)
		return uuid.Nil, false
	}
	return orderID, true
}

// List handles GET /api/orders requests. Supports the `number` id filter
// and page/limit pagination.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := model.ListFilter{
		Number: r.URL.Query().Get("number"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	orders, err := h.orders.List(r.Context(), userID, filter)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ListOrdersResponse{
		Orders: orders,
		Page:   page,
		Limit:  limit,
	})
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.orders.Create(r.Context(), userID, req.Items)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := h.orderIDFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), orderID, userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Update handles PUT /api/orders/{id} requests.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := h.orderIDFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	var req model.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	var update model.OrderUpdate
	if req.Status != nil {
		status, err := model.ParseStatus(*req.Status)
		if err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
		update.Status = &status
	}

	// Distinguish "items untouched" (absent) from "remove all" (empty).
	var items []model.ItemInput
	if req.Items != nil {
		items = *req.Items
		if items == nil {
			items = []model.ItemInput{}
		}
	}

	order, err := h.orders.Update(r.Context(), orderID, userID, update, items)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ApplyDiscount handles POST /api/orders/{id}/discount requests.
func (h *OrderHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := h.orderIDFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	var req model.ApplyDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "coupon code is required", h.logger)
		return
	}

	outcome, err := h.discounts.Apply(r.Context(), userID, orderID, strings.ToUpper(req.Code))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	// Attach the current order view so the client sees the new totals.
	order, err := h.orders.Get(r.Context(), orderID, userID)
	if err == nil {
		outcome.Order = order
	}

	writeJSON(w, http.StatusOK, outcome)
}

// RemoveDiscount handles DELETE /api/orders/{id}/discount requests.
func (h *OrderHandler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentUser(w, r); !ok {
		return
	}
	if _, ok := h.orderIDFromPath(w, r.URL.Path); !ok {
		return
	}

	var req model.RemoveDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DiscountID == uuid.Nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "discount_id is required", h.logger)
		return
	}

	if err := h.discounts.Remove(r.Context(), req.DiscountID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

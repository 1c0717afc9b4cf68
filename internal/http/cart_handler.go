package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/marceleta/cardapio-checkout/internal/catalog"
	"github.com/marceleta/cardapio-checkout/internal/domain"
	"github.com/marceleta/cardapio-checkout/internal/service"
)

type CartHandler struct {
	sessions *SessionManager
	catalog  *catalog.Service
	timeout  time.Duration
}

func NewCartHandler(sessions *SessionManager, catalogSvc *catalog.Service, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  catalogSvc,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID   string   `json:"product_id"`
	Observation string   `json:"observation,omitempty"`
	AddOns      []string `json:"add_ons,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	LineKey  string `json:"line_key"`
	Quantity int    `json:"quantity"`
}

type RemoveItemRequestDTO struct {
	LineKey string `json:"line_key"`
}

type CartLineDTO struct {
	LineKey     string         `json:"line_key"`
	ProductID   string         `json:"product_id"`
	Name        string         `json:"name"`
	UnitPrice   string         `json:"unit_price"`
	Quantity    int            `json:"quantity"`
	LineTotal   string         `json:"line_total"`
	Observation string         `json:"observation,omitempty"`
	AddOns      []domain.AddOn `json:"add_ons,omitempty"`
}

type CartResponseDTO struct {
	Items      []CartLineDTO `json:"items"`
	TotalItems int           `json:"total_items"`
	TotalPrice string        `json:"total_price"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	menuItem, err := h.catalog.GetItem(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrItemNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "menu item not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("catalog lookup failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	addOns, badAddOn := selectAddOns(menuItem, req.AddOns)
	if badAddOn != "" {
		respondError(w, http.StatusBadRequest, "invalid_add_on", "unknown add-on: "+badAddOn)
		return
	}

	item := domain.CartItem{
		ProductID:   menuItem.ID,
		Name:        menuItem.Name,
		UnitPrice:   menuItem.Price,
		Observation: req.Observation,
		AddOns:      addOns,
	}
	if err := flow.Cart().AddItem(ctx, item); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(flow))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(flow))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.LineKey == "" {
		respondError(w, http.StatusBadRequest, "invalid_line_key", "line_key is required")
		return
	}

	// quantity <= 0 removes the line, by design
	if err := flow.Cart().UpdateQuantity(ctx, req.LineKey, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update quantity")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(flow))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	var req RemoveItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.LineKey == "" {
		respondError(w, http.StatusBadRequest, "invalid_line_key", "line_key is required")
		return
	}

	if err := flow.Cart().RemoveItem(ctx, req.LineKey); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove item")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(flow))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	if err := flow.Cart().Clear(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(flow))
}

func (h *CartHandler) resolveFlow(w http.ResponseWriter, r *http.Request) (*service.Flow, bool) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return nil, false
	}

	flow, err := h.sessions.Flow(r.Context(), sessionID, customerFromContext(r.Context()))
	if err != nil {
		log.WithError(err).Error("failed to resolve session flow")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return nil, false
	}
	return flow, true
}

func selectAddOns(menuItem *domain.MenuItem, names []string) ([]domain.AddOn, string) {
	if len(names) == 0 {
		return nil, ""
	}

	offered := make(map[string]domain.AddOn, len(menuItem.AddOns))
	for _, a := range menuItem.AddOns {
		offered[a.Name] = a
	}

	selected := make([]domain.AddOn, 0, len(names))
	for _, name := range names {
		addOn, ok := offered[name]
		if !ok {
			return nil, name
		}
		selected = append(selected, addOn)
	}
	return selected, ""
}

func cartResponse(flow *service.Flow) CartResponseDTO {
	items := flow.Cart().Items()
	lines := make([]CartLineDTO, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLineDTO{
			LineKey:     item.LineKey(),
			ProductID:   item.ProductID,
			Name:        item.Name,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal().StringFixed(2),
			Observation: item.Observation,
			AddOns:      item.AddOns,
		})
	}
	return CartResponseDTO{
		Items:      lines,
		TotalItems: flow.Cart().TotalItems(),
		TotalPrice: flow.Cart().TotalPrice().StringFixed(2),
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondFieldErrors(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:  "validation failed",
		Code:   "validation_error",
		Fields: fields,
	})
}

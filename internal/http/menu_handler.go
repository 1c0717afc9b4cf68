package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/marceleta/cardapio-checkout/internal/catalog"
	"github.com/marceleta/cardapio-checkout/internal/delivery"
)

type MenuHandler struct {
	catalog *catalog.Service
	cep     delivery.CEPLookup
	timeout time.Duration
}

func NewMenuHandler(catalogSvc *catalog.Service, cep delivery.CEPLookup, timeout time.Duration) *MenuHandler {
	return &MenuHandler{
		catalog: catalogSvc,
		cep:     cep,
		timeout: timeout,
	}
}

func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.catalog.ListItems(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list menu items")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	item, err := h.catalog.GetItem(ctx, chi.URLParam(r, "product_id"))
	if errors.Is(err, catalog.ErrItemNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "menu item not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to get menu item")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// LookupCEP prefills the address form. Responds 204 when the collaborator
// has no data — the shopper types the address by hand.
func (h *MenuHandler) LookupCEP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	addr := h.cep.Lookup(ctx, chi.URLParam(r, "cep"))
	if addr == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, addr)
}

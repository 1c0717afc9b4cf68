package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marceleta/cardapio-checkout/internal/checkout"
	"github.com/marceleta/cardapio-checkout/internal/domain"
	"github.com/marceleta/cardapio-checkout/internal/payment"
	"github.com/marceleta/cardapio-checkout/internal/service"
)

type CheckoutHandler struct {
	sessions *SessionManager
	timeout  time.Duration
}

func NewCheckoutHandler(sessions *SessionManager, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

type AddressDTO struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	CEP          string `json:"cep"`
}

type SubmitDeliveryRequestDTO struct {
	Type    string      `json:"type"`
	Address *AddressDTO `json:"address,omitempty"`
}

type SubmitPaymentRequestDTO struct {
	Method       string `json:"method"`
	NeedsChange  bool   `json:"needs_change,omitempty"`
	Tendered     string `json:"tendered,omitempty"`
	Installments int    `json:"installments,omitempty"`
}

type PlaceOrderRequestDTO struct {
	Observations string `json:"observations,omitempty"`
}

type SessionResponseDTO struct {
	Step       string                    `json:"step"`
	OrderID    string                    `json:"order_id,omitempty"`
	Delivery   *domain.DeliverySelection `json:"delivery,omitempty"`
	Payment    *domain.PaymentSelection  `json:"payment,omitempty"`
	OrderTotal string                    `json:"order_total"`
}

type OrderMessageResponseDTO struct {
	OrderID  string `json:"order_id"`
	Text     string `json:"text"`
	DeepLink string `json:"deep_link"`
}

func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	// the mock identity collaborator reports every shopper as signed in
	if err := flow.Start(true); err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondError(w, http.StatusConflict, "empty_cart", "cart is empty, nothing to check out")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to start checkout")
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse(flow))
}

func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse(flow))
}

func (h *CheckoutHandler) SubmitDelivery(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	var req SubmitDeliveryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	deliveryType := domain.DeliveryType(req.Type)
	if deliveryType != domain.DeliveryTypePickup && deliveryType != domain.DeliveryTypeDelivery {
		respondError(w, http.StatusBadRequest, "invalid_delivery_type", "type must be pickup or delivery")
		return
	}

	var addr *domain.Address
	if req.Address != nil {
		addr = &domain.Address{
			Street:       req.Address.Street,
			Number:       req.Address.Number,
			Neighborhood: req.Address.Neighborhood,
			City:         req.Address.City,
			State:        req.Address.State,
			CEP:          req.Address.CEP,
		}
	}

	fieldErrs, err := flow.SubmitDelivery(deliveryType, addr)
	if err != nil {
		handleStepError(w, err)
		return
	}
	if fieldErrs.HasErrors() {
		respondFieldErrors(w, fieldErrs)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse(flow))
}

func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	var req SubmitPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	in := payment.Input{
		NeedsChange:  req.NeedsChange,
		Installments: req.Installments,
	}
	if req.Tendered != "" {
		tendered, err := decimal.NewFromString(req.Tendered)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_tendered", "tendered must be a decimal amount")
			return
		}
		in.Tendered = tendered
	}

	if err := flow.SubmitPayment(domain.PaymentMethod(req.Method), in); err != nil {
		handleStepError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse(flow))
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	flow.Back()
	respondJSON(w, http.StatusOK, sessionResponse(flow))
}

func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	flow.Reset()
	respondJSON(w, http.StatusOK, sessionResponse(flow))
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	flow, ok := h.resolveFlow(w, r)
	if !ok {
		return
	}

	var req PlaceOrderRequestDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}
	if req.Observations != "" {
		flow.SetObservations(req.Observations)
	}

	msg, err := flow.PlaceOrder(ctx)
	if err != nil {
		if errors.Is(err, service.ErrIncompleteCheckout) {
			respondError(w, http.StatusConflict, "incomplete_checkout", "checkout session is incomplete")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to place order")
		return
	}

	respondJSON(w, http.StatusOK, OrderMessageResponseDTO{
		OrderID:  flow.Session().OrderID,
		Text:     msg.Text,
		DeepLink: msg.DeepLink,
	})
}

func (h *CheckoutHandler) resolveFlow(w http.ResponseWriter, r *http.Request) (*service.Flow, bool) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return nil, false
	}

	flow, err := h.sessions.Flow(r.Context(), sessionID, customerFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return nil, false
	}
	return flow, true
}

func handleStepError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrWrongStep):
		respondError(w, http.StatusConflict, "wrong_step", "operation not allowed at current step")
	case errors.Is(err, payment.ErrInsufficientTender):
		respondFieldErrors(w, map[string]string{"tendered": "valor insuficiente para o total do pedido"})
	case errors.Is(err, payment.ErrTenderRequired):
		respondFieldErrors(w, map[string]string{"tendered": "informe o valor para troco"})
	case errors.Is(err, payment.ErrInvalidInstallments):
		respondFieldErrors(w, map[string]string{"installments": "parcelamento indisponível"})
	case errors.Is(err, payment.ErrNoMethodSelected), errors.Is(err, payment.ErrUnknownMethod):
		respondFieldErrors(w, map[string]string{"method": "forma de pagamento inválida"})
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func sessionResponse(flow *service.Flow) SessionResponseDTO {
	session := flow.Session()
	return SessionResponseDTO{
		Step:       session.Step.String(),
		OrderID:    session.OrderID,
		Delivery:   session.Delivery,
		Payment:    session.Payment,
		OrderTotal: flow.OrderTotal().StringFixed(2),
	}
}

// Package service orchestrates one shopper's checkout: it gates each step
// through the matching validator, renders the order on submit, and fans out
// the archive/publish side effects.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/marceleta/cardapio-checkout/internal/cart"
	"github.com/marceleta/cardapio-checkout/internal/checkout"
	"github.com/marceleta/cardapio-checkout/internal/delivery"
	"github.com/marceleta/cardapio-checkout/internal/domain"
	"github.com/marceleta/cardapio-checkout/internal/order"
	"github.com/marceleta/cardapio-checkout/internal/payment"
)

// ErrIncompleteCheckout means PlaceOrder was invoked before the session
// reached the summary step with validated selections. Callers treat it as a
// blocking internal error, never as user input to correct.
var ErrIncompleteCheckout = errors.New("checkout session is incomplete")

// Deps are the collaborators a Flow drives. Archive and Publisher are
// optional: when nil the corresponding side effect is skipped.
type Deps struct {
	Cart       *cart.Store
	Calculator delivery.Calculator
	Payments   *payment.PlanValidator
	Serializer *order.Serializer
	Archive    order.Archive
	Publisher  order.EventPublisher
}

// Flow is one shopper's checkout session end to end. mu serializes the
// session's requests: the HTTP layer may run several at once (double-click,
// submit racing a refresh) and the machine is not safe for concurrent use.
type Flow struct {
	sessionID string
	customer  domain.Customer
	mu        sync.Mutex
	machine   *checkout.Machine
	deps      Deps
	log       *log.Entry
}

func NewFlow(sessionID string, customer domain.Customer, deps Deps) *Flow {
	return &Flow{
		sessionID: sessionID,
		customer:  customer,
		machine:   checkout.NewMachine(),
		deps:      deps,
		log:       log.WithField("session_id", sessionID),
	}
}

// Start enters the checkout; blocked while the cart is empty.
func (f *Flow) Start(authenticated bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.machine.Start(authenticated, f.deps.Cart.TotalItems())
}

// Authenticated reports a signed-in shopper, auto-advancing past AUTH.
func (f *Flow) Authenticated() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.machine.Authenticated()
}

// SubmitDelivery validates the delivery selection and advances to PAYMENT.
// Field-level problems come back in FieldErrors and block the advance.
func (f *Flow) SubmitDelivery(deliveryType domain.DeliveryType, addr *domain.Address) (delivery.FieldErrors, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sel, fieldErrs := f.deps.Calculator.Quote(deliveryType, addr)
	if fieldErrs.HasErrors() {
		return fieldErrs, nil
	}

	if err := f.machine.SetDelivery(sel); err != nil {
		return nil, err
	}
	f.machine.NextStep()
	return nil, nil
}

// SubmitPayment validates the payment method against the order total and
// advances to SUMMARY.
func (f *Flow) SubmitPayment(method domain.PaymentMethod, in payment.Input) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sel, err := f.deps.Payments.BuildPlan(method, f.orderTotal(), in)
	if err != nil {
		return err
	}

	if err := f.machine.SetPayment(sel); err != nil {
		return err
	}
	f.machine.NextStep()
	return nil
}

// PlaceOrder renders the order message, completes the session and clears the
// cart. Archival and event publishing are best-effort: the order message is
// already on its way to the shopper's messaging app, so a failing side
// effect is logged, not surfaced.
func (f *Flow) PlaceOrder(ctx context.Context) (*domain.OrderMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session := f.machine.Session()
	if session.Step != domain.StepSummary || session.Delivery == nil || session.Payment == nil {
		return nil, ErrIncompleteCheckout
	}

	items := f.deps.Cart.Items()
	msg, err := f.deps.Serializer.Render(f.customer, items, session.Delivery, session.Payment, session.Observations)
	if err != nil {
		return nil, fmt.Errorf("render order message: %w", err)
	}

	orderID := uuid.New()
	if err := f.machine.Complete(orderID.String()); err != nil {
		return nil, err
	}

	subtotal := f.deps.Cart.TotalPrice()
	placed := &domain.Order{
		ID:              orderID,
		SessionID:       f.sessionID,
		CustomerName:    f.customer.Name,
		CustomerContact: f.customer.Contact,
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     session.Delivery.Fee,
		Total:           subtotal.Add(session.Delivery.Fee),
		PaymentMethod:   session.Payment.Method,
		Message:         msg.Text,
	}

	if f.deps.Archive != nil {
		if err := f.deps.Archive.SaveOrder(ctx, placed); err != nil {
			f.log.WithError(err).WithField("order_id", orderID).Error("failed to archive order")
		}
	}
	if f.deps.Publisher != nil {
		if err := f.deps.Publisher.PublishPlaced(ctx, placed); err != nil {
			f.log.WithError(err).WithField("order_id", orderID).Error("failed to publish order event")
		}
	}

	if err := f.deps.Cart.Clear(ctx); err != nil {
		f.log.WithError(err).Warn("failed to clear cart after send")
	}

	f.log.WithField("order_id", orderID).Info("order placed")
	return msg, nil
}

// Back retreats one step.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.machine.PreviousStep()
}

// Reset abandons the session; the cart is left alone.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.machine.Reset()
}

func (f *Flow) SetObservations(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.machine.SetObservations(text)
}

// OrderTotal is the cart subtotal plus the delivery fee, when one is chosen.
func (f *Flow) OrderTotal() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderTotal()
}

// orderTotal computes the total; the caller holds mu.
func (f *Flow) orderTotal() decimal.Decimal {
	total := f.deps.Cart.TotalPrice()
	if d := f.machine.Session().Delivery; d != nil {
		total = total.Add(d.Fee)
	}
	return total
}

func (f *Flow) Step() domain.Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.machine.Step()
}

func (f *Flow) Session() domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.machine.Session()
}

func (f *Flow) Cart() *cart.Store {
	return f.deps.Cart
}

func (f *Flow) Customer() domain.Customer {
	return f.customer
}

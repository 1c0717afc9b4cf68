// Package checkout owns the multi-step checkout session: a fixed step
// sequence and the delivery/payment selections accumulated along the way.
// The machine is a pure sequencer — payload validation belongs to the
// delivery and payment packages and runs before a step is advanced.
package checkout

import (
	"errors"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to check out")
	ErrIllegalTransition = errors.New("illegal checkout step transition")
	ErrWrongStep         = errors.New("operation not allowed at current step")
)

var stepOrder = []domain.Step{
	domain.StepAuth,
	domain.StepDelivery,
	domain.StepPayment,
	domain.StepSummary,
	domain.StepSuccess,
}

// Machine walks one checkout session through the fixed step sequence.
type Machine struct {
	session domain.Session
}

func NewMachine() *Machine {
	return &Machine{session: domain.Session{Step: domain.StepAuth}}
}

// Start enters the flow. It refuses to start over an empty cart and lands on
// DELIVERY directly when the shopper is already authenticated.
func (m *Machine) Start(authenticated bool, totalItems int) error {
	if totalItems <= 0 {
		return ErrEmptyCart
	}
	if authenticated {
		m.session.Step = domain.StepDelivery
	} else {
		m.session.Step = domain.StepAuth
	}
	return nil
}

// Authenticated is the auto-advance hook: the instant the identity
// collaborator reports a signed-in shopper, AUTH is skipped.
func (m *Machine) Authenticated() {
	if m.session.Step == domain.StepAuth {
		m.session.Step = domain.StepDelivery
	}
}

// NextStep moves to the step immediately following the current one. SUCCESS
// is only reachable through Complete, so forward motion stops at SUMMARY.
func (m *Machine) NextStep() {
	idx := stepIndex(m.session.Step)
	if idx < 0 || m.session.Step == domain.StepSummary || m.session.Step.IsTerminal() {
		return
	}
	m.session.Step = stepOrder[idx+1]
}

// PreviousStep moves to the step immediately preceding; no-op at AUTH or
// once the session is terminal.
func (m *Machine) PreviousStep() {
	idx := stepIndex(m.session.Step)
	if idx <= 0 || m.session.Step.IsTerminal() {
		return
	}
	m.session.Step = stepOrder[idx-1]
}

// Complete transitions SUMMARY to the terminal SUCCESS step, recording the
// order identifier minted for the send.
func (m *Machine) Complete(orderID string) error {
	if m.session.Step != domain.StepSummary {
		return ErrIllegalTransition
	}
	m.session.OrderID = orderID
	m.session.Step = domain.StepSuccess
	return nil
}

// Reset abandons the session: back to AUTH with selections cleared. The cart
// is not touched — clearing it after a successful send is the caller's job.
func (m *Machine) Reset() {
	m.session = domain.Session{Step: domain.StepAuth}
}

// SetDelivery records the validated delivery selection. Only legal while on
// the DELIVERY step, which also covers the back-navigation case.
func (m *Machine) SetDelivery(sel *domain.DeliverySelection) error {
	if m.session.Step != domain.StepDelivery {
		return ErrWrongStep
	}
	m.session.Delivery = sel
	return nil
}

// SetPayment records the validated payment selection, replacing any prior
// one wholesale so no stale method detail survives a method switch.
func (m *Machine) SetPayment(sel *domain.PaymentSelection) error {
	if m.session.Step != domain.StepPayment {
		return ErrWrongStep
	}
	m.session.Payment = sel
	return nil
}

func (m *Machine) SetObservations(text string) {
	m.session.Observations = text
}

func (m *Machine) Step() domain.Step {
	return m.session.Step
}

// Session returns a copy of the current session state.
func (m *Machine) Session() domain.Session {
	return m.session
}

func stepIndex(s domain.Step) int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Package payment validates a chosen payment method against the order total
// and derives the method-specific detail (change, installment plan).
package payment

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/marceleta/cardapio-checkout/internal/domain"
	"github.com/marceleta/cardapio-checkout/internal/money"
)

var (
	ErrNoMethodSelected    = errors.New("no payment method selected")
	ErrUnknownMethod       = errors.New("unknown payment method")
	ErrInsufficientTender  = errors.New("tendered amount is less than the order total")
	ErrTenderRequired      = errors.New("tendered amount is required when change is needed")
	ErrInvalidInstallments = errors.New("installment count outside the offered set")
	ErrNonPositiveTotal    = errors.New("order total must be positive")
)

// DefaultMaxInstallments is the offered credit plan set: 1..3, no interest.
const DefaultMaxInstallments = 3

// Input carries the raw method-specific fields from the payment form.
type Input struct {
	NeedsChange  bool
	Tendered     decimal.Decimal
	Installments int
}

// PlanValidator builds validated payment selections. A fresh selection is
// built on every call, so switching methods can never leak stale detail.
type PlanValidator struct {
	maxInstallments int
}

func NewPlanValidator() *PlanValidator {
	return &PlanValidator{maxInstallments: DefaultMaxInstallments}
}

func (v *PlanValidator) BuildPlan(method domain.PaymentMethod, total decimal.Decimal, in Input) (*domain.PaymentSelection, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrNonPositiveTotal
	}

	switch method {
	case domain.PaymentCash:
		detail, err := v.cashDetail(total, in)
		if err != nil {
			return nil, err
		}
		return &domain.PaymentSelection{Method: method, Detail: detail}, nil

	case domain.PaymentCredit:
		detail, err := v.creditDetail(total, in.Installments)
		if err != nil {
			return nil, err
		}
		return &domain.PaymentSelection{Method: method, Detail: detail}, nil

	case domain.PaymentDebit, domain.PaymentPix:
		return &domain.PaymentSelection{
			Method: method,
			Detail: domain.PaymentDetail{TotalAmount: total},
		}, nil

	case "":
		return nil, ErrNoMethodSelected
	}
	return nil, ErrUnknownMethod
}

func (v *PlanValidator) cashDetail(total decimal.Decimal, in Input) (domain.PaymentDetail, error) {
	if !in.NeedsChange {
		return domain.PaymentDetail{
			TotalAmount:    total,
			TenderedAmount: total,
			Change:         decimal.Zero,
		}, nil
	}

	if in.Tendered.IsZero() {
		return domain.PaymentDetail{}, ErrTenderRequired
	}
	if in.Tendered.LessThan(total) {
		return domain.PaymentDetail{}, ErrInsufficientTender
	}

	return domain.PaymentDetail{
		TotalAmount:    total,
		TenderedAmount: in.Tendered,
		Change:         money.Round2(in.Tendered.Sub(total)),
	}, nil
}

// creditDetail splits the total into n equal installments; the last one
// absorbs the rounding remainder so the plan sums exactly to the total.
func (v *PlanValidator) creditDetail(total decimal.Decimal, n int) (domain.PaymentDetail, error) {
	if n < 1 || n > v.maxInstallments {
		return domain.PaymentDetail{}, ErrInvalidInstallments
	}

	base := money.Round2(total.Div(decimal.NewFromInt(int64(n))))
	last := total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))

	return domain.PaymentDetail{
		TotalAmount:       total,
		Installments:      n,
		InstallmentAmount: base,
		LastInstallment:   last,
	}, nil
}

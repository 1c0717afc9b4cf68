// Package delivery quotes delivery fees and validates delivery addresses.
package delivery

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

const (
	pickupETA   = "20-30 min"
	deliveryETA = "45-60 min"

	cepDigits = 8
)

// FieldErrors maps an address field name to its validation message. An empty
// map means the input is valid.
type FieldErrors map[string]string

func (f FieldErrors) HasErrors() bool {
	return len(f) > 0
}

// Calculator quotes a fee and ETA for a delivery selection. The flat-fee
// implementation below is the current one; callers only see this interface,
// so a distance-based calculator can replace it without touching them.
type Calculator interface {
	Quote(deliveryType domain.DeliveryType, addr *domain.Address) (*domain.DeliverySelection, FieldErrors)
}

// FlatFeeCalculator charges a fixed fee for delivery and nothing for pickup.
type FlatFeeCalculator struct {
	fee decimal.Decimal
}

func NewFlatFeeCalculator(fee decimal.Decimal) *FlatFeeCalculator {
	return &FlatFeeCalculator{fee: fee}
}

func (c *FlatFeeCalculator) Quote(deliveryType domain.DeliveryType, addr *domain.Address) (*domain.DeliverySelection, FieldErrors) {
	if deliveryType == domain.DeliveryTypePickup {
		return &domain.DeliverySelection{
			Type:          domain.DeliveryTypePickup,
			Fee:           decimal.Zero,
			EstimatedTime: pickupETA,
		}, nil
	}

	fieldErrs := ValidateAddress(addr)
	if fieldErrs.HasErrors() {
		return nil, fieldErrs
	}

	normalized := *addr
	normalized.CEP, _ = NormalizeCEP(addr.CEP)

	return &domain.DeliverySelection{
		Type:          domain.DeliveryTypeDelivery,
		Address:       &normalized,
		Fee:           c.fee,
		EstimatedTime: deliveryETA,
	}, nil
}

// ValidateAddress checks every required field and the CEP format, reporting
// failures per field so the form can show inline messages.
func ValidateAddress(addr *domain.Address) FieldErrors {
	errs := FieldErrors{}
	if addr == nil {
		errs["address"] = "endereço é obrigatório"
		return errs
	}

	required := map[string]string{
		"street":       addr.Street,
		"number":       addr.Number,
		"neighborhood": addr.Neighborhood,
		"city":         addr.City,
		"state":        addr.State,
	}
	messages := map[string]string{
		"street":       "rua é obrigatória",
		"number":       "número é obrigatório",
		"neighborhood": "bairro é obrigatório",
		"city":         "cidade é obrigatória",
		"state":        "estado é obrigatório",
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			errs[field] = messages[field]
		}
	}

	if strings.TrimSpace(addr.CEP) == "" {
		errs["cep"] = "CEP é obrigatório"
	} else if _, ok := NormalizeCEP(addr.CEP); !ok {
		errs["cep"] = "CEP inválido, use 8 dígitos"
	}

	return errs
}

// NormalizeCEP strips formatting and reports whether exactly 8 digits remain.
func NormalizeCEP(cep string) (string, bool) {
	var b strings.Builder
	for _, r := range cep {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	return digits, len(digits) == cepDigits
}

package delivery

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

func validAddress() *domain.Address {
	return &domain.Address{
		Street:       "Rua das Flores",
		Number:       "123",
		Neighborhood: "Centro",
		City:         "São Paulo",
		State:        "SP",
		CEP:          "01310-100",
	}
}

func TestQuote_PickupIsFreeWithShortETA(t *testing.T) {
	calc := NewFlatFeeCalculator(decimal.RequireFromString("8.50"))

	sel, fieldErrs := calc.Quote(domain.DeliveryTypePickup, nil)

	require.Empty(t, fieldErrs)
	require.NotNil(t, sel)
	assert.True(t, sel.Fee.IsZero())
	assert.Equal(t, pickupETA, sel.EstimatedTime)
	assert.Nil(t, sel.Address)
}

func TestQuote_DeliveryChargesFlatFee(t *testing.T) {
	calc := NewFlatFeeCalculator(decimal.RequireFromString("8.50"))

	sel, fieldErrs := calc.Quote(domain.DeliveryTypeDelivery, validAddress())

	require.Empty(t, fieldErrs)
	require.NotNil(t, sel)
	assert.True(t, sel.Fee.Equal(decimal.RequireFromString("8.50")))
	assert.Equal(t, deliveryETA, sel.EstimatedTime)
	require.NotNil(t, sel.Address)
	assert.Equal(t, "01310100", sel.Address.CEP) // stored normalized
}

func TestQuote_DeliveryWithMissingFieldsIsBlocked(t *testing.T) {
	calc := NewFlatFeeCalculator(decimal.RequireFromString("8.50"))
	addr := validAddress()
	addr.Street = ""
	addr.City = "  "

	sel, fieldErrs := calc.Quote(domain.DeliveryTypeDelivery, addr)

	assert.Nil(t, sel)
	assert.Contains(t, fieldErrs, "street")
	assert.Contains(t, fieldErrs, "city")
	assert.NotContains(t, fieldErrs, "number")
}

func TestQuote_DeliveryWithoutAddressIsBlocked(t *testing.T) {
	calc := NewFlatFeeCalculator(decimal.RequireFromString("8.50"))

	sel, fieldErrs := calc.Quote(domain.DeliveryTypeDelivery, nil)

	assert.Nil(t, sel)
	assert.Contains(t, fieldErrs, "address")
}

func TestValidateAddress_MalformedCEP(t *testing.T) {
	tests := []struct {
		name string
		cep  string
		ok   bool
	}{
		{"formatted", "01310-100", true},
		{"bare digits", "01310100", true},
		{"too short", "0131010", false},
		{"too long", "013101000", false},
		{"letters only", "abcdefgh", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			addr.CEP = tt.cep
			errs := ValidateAddress(addr)
			if tt.ok {
				assert.NotContains(t, errs, "cep")
			} else {
				assert.Contains(t, errs, "cep")
			}
		})
	}
}

func TestNormalizeCEP_StripsFormatting(t *testing.T) {
	digits, ok := NormalizeCEP("01.310-100")
	require.True(t, ok)
	assert.Equal(t, "01310100", digits)
}

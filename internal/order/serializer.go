// Package order renders, archives and announces completed orders.
package order

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marceleta/cardapio-checkout/internal/domain"
	"github.com/marceleta/cardapio-checkout/internal/money"
)

// ErrIncompleteOrder means serialization was invoked with structurally
// missing state (no items, delivery or payment). That is a caller defect,
// not a user-facing validation failure.
var ErrIncompleteOrder = errors.New("order state is incomplete, cannot serialize")

const messageDivider = "--------------------------------"

// Serializer renders the deterministic order text and its wa.me deep link.
// It is a pure function of its inputs: identical inputs produce identical
// bytes.
type Serializer struct {
	storeName   string
	destination string
}

// NewSerializer takes the store display name and the destination WhatsApp
// number (digits only, with country code), both environment-supplied.
func NewSerializer(storeName, destination string) *Serializer {
	return &Serializer{storeName: storeName, destination: destination}
}

// Render produces the order message for the given customer, cart lines,
// delivery selection and payment selection.
func (s *Serializer) Render(
	customer domain.Customer,
	items []domain.CartItem,
	delivery *domain.DeliverySelection,
	payment *domain.PaymentSelection,
	observations string,
) (*domain.OrderMessage, error) {
	if len(items) == 0 || delivery == nil || payment == nil {
		return nil, ErrIncompleteOrder
	}

	var b strings.Builder

	fmt.Fprintf(&b, "*Novo Pedido - %s*\n\n", s.storeName)
	fmt.Fprintf(&b, "Cliente: %s\n", customer.Name)
	fmt.Fprintf(&b, "Contato: %s\n\n", customer.Contact)

	b.WriteString("-- ITENS DO PEDIDO --\n")
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
		fmt.Fprintf(&b, "- %dx %s (%s)\n", item.Quantity, item.Name, money.FormatBRL(item.LineTotal()))
		for _, addOn := range item.AddOns {
			fmt.Fprintf(&b, "  + %s (%s)\n", addOn.Name, money.FormatBRL(addOn.Price))
		}
		if item.Observation != "" {
			fmt.Fprintf(&b, "  Obs: %s\n", item.Observation)
		}
	}

	b.WriteString("\n-- ENTREGA --\n")
	if delivery.Type == domain.DeliveryTypeDelivery && delivery.Address != nil {
		addr := delivery.Address
		fmt.Fprintf(&b, "Endereço: %s, %s\n", addr.Street, addr.Number)
		fmt.Fprintf(&b, "Bairro: %s\n", addr.Neighborhood)
		fmt.Fprintf(&b, "Cidade: %s - %s\n", addr.City, addr.State)
		fmt.Fprintf(&b, "CEP: %s\n", addr.CEP)
	} else {
		b.WriteString("Retirada no balcão\n")
	}
	fmt.Fprintf(&b, "Tempo estimado: %s\n", delivery.EstimatedTime)

	b.WriteString("\n-- PAGAMENTO --\n")
	fmt.Fprintf(&b, "Forma: %s\n", payment.Method.Label())
	switch payment.Method {
	case domain.PaymentCash:
		if payment.Detail.Change.IsPositive() {
			fmt.Fprintf(&b, "Troco para: %s (troco de %s)\n",
				money.FormatBRL(payment.Detail.TenderedAmount),
				money.FormatBRL(payment.Detail.Change))
		}
	case domain.PaymentCredit:
		if payment.Detail.Installments > 1 && !payment.Detail.LastInstallment.Equal(payment.Detail.InstallmentAmount) {
			fmt.Fprintf(&b, "Parcelado: %dx de %s (última de %s)\n",
				payment.Detail.Installments,
				money.FormatBRL(payment.Detail.InstallmentAmount),
				money.FormatBRL(payment.Detail.LastInstallment))
		} else if payment.Detail.Installments > 1 {
			fmt.Fprintf(&b, "Parcelado: %dx de %s\n",
				payment.Detail.Installments,
				money.FormatBRL(payment.Detail.InstallmentAmount))
		}
	}

	if observations != "" {
		fmt.Fprintf(&b, "\nObservações: %s\n", observations)
	}

	b.WriteString("\n" + messageDivider + "\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", money.FormatBRL(subtotal))
	if delivery.Fee.IsPositive() {
		fmt.Fprintf(&b, "Taxa de Entrega: %s\n", money.FormatBRL(delivery.Fee))
	}
	total := subtotal.Add(delivery.Fee)
	fmt.Fprintf(&b, "*TOTAL DO PEDIDO: %s*", money.FormatBRL(total))

	text := b.String()
	return &domain.OrderMessage{
		Text:     text,
		DeepLink: fmt.Sprintf("https://wa.me/%s?text=%s", s.destination, url.QueryEscape(text)),
	}, nil
}

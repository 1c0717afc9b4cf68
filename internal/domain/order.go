package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the authenticated shopper as reported by the identity
// collaborator: a display name and a contact handle (phone).
type Customer struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// OrderMessage is the rendered order: the plain text handed to the messaging
// channel and the wa.me deep link embedding it. Derived value, never stored
// as state; recomputed from cart + session at send time.
type OrderMessage struct {
	Text     string `json:"text"`
	DeepLink string `json:"deep_link"`
}

// Order is the archived record of a completed checkout.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	SessionID       string          `json:"session_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerContact string          `json:"customer_contact"`
	Items           []CartItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Message         string          `json:"message"`
	CreatedAt       time.Time       `json:"created_at"`
}

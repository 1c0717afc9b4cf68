package domain

import "github.com/shopspring/decimal"

// Step is one stage of the checkout sequence.
type Step string

const (
	StepAuth     Step = "AUTH"
	StepDelivery Step = "DELIVERY"
	StepPayment  Step = "PAYMENT"
	StepSummary  Step = "SUMMARY"
	StepSuccess  Step = "SUCCESS"
)

func (s Step) IsTerminal() bool {
	return s == StepSuccess
}

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}

type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "pickup"
	DeliveryTypeDelivery DeliveryType = "delivery"
)

// Address is a structured Brazilian delivery address. CEP is stored
// normalized to 8 digits.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	CEP          string `json:"cep"`
}

// DeliverySelection is the outcome of the delivery step. Address is present
// iff Type is delivery; Fee is always zero for pickup.
type DeliverySelection struct {
	Type          DeliveryType    `json:"type"`
	Address       *Address        `json:"address,omitempty"`
	Fee           decimal.Decimal `json:"fee"`
	EstimatedTime string          `json:"estimated_time"`
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCredit PaymentMethod = "credit"
	PaymentPix    PaymentMethod = "pix"
)

// Label is the method name as printed on the order message.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Dinheiro"
	case PaymentDebit:
		return "Cartão de Débito"
	case PaymentCredit:
		return "Cartão de Crédito"
	case PaymentPix:
		return "Pix"
	}
	return string(m)
}

// PaymentDetail holds the method-specific derived values. Only the fields
// for the selected method are meaningful; building a new detail on every
// method switch guarantees no stale data leaks across methods.
type PaymentDetail struct {
	TotalAmount decimal.Decimal `json:"total_amount"`

	// cash
	TenderedAmount decimal.Decimal `json:"tendered_amount,omitempty"`
	Change         decimal.Decimal `json:"change,omitempty"`

	// credit
	Installments      int             `json:"installments,omitempty"`
	InstallmentAmount decimal.Decimal `json:"installment_amount,omitempty"`
	LastInstallment   decimal.Decimal `json:"last_installment,omitempty"`
}

type PaymentSelection struct {
	Method PaymentMethod `json:"method"`
	Detail PaymentDetail `json:"detail"`
}

// Session is the accumulated state of one checkout walk-through. It is owned
// by the checkout state machine; OrderID is minted once the session reaches
// the terminal step.
type Session struct {
	Step         Step
	Delivery     *DeliverySelection
	Payment      *PaymentSelection
	Observations string
	OrderID      string
}

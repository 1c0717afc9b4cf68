package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marceleta/cardapio-checkout/internal/cart"
	"github.com/marceleta/cardapio-checkout/internal/checkout"
	"github.com/marceleta/cardapio-checkout/internal/delivery"
	"github.com/marceleta/cardapio-checkout/internal/domain"
	"github.com/marceleta/cardapio-checkout/internal/order"
	"github.com/marceleta/cardapio-checkout/internal/payment"
)

type mockArchive struct {
	saved []*domain.Order
	err   error
}

func (m *mockArchive) SaveOrder(_ context.Context, o *domain.Order) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, o)
	return nil
}

type mockPublisher struct {
	published []*domain.Order
	err       error
}

func (m *mockPublisher) PublishPlaced(_ context.Context, o *domain.Order) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, o)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

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

func newTestFlow(t *testing.T, archive order.Archive, publisher order.EventPublisher) *Flow {
	t.Helper()

	store, err := cart.NewStore(context.Background(), "session-1", cart.NewMemoryRepository())
	require.NoError(t, err)

	return NewFlow("session-1",
		domain.Customer{Name: "João Silva", Contact: "+55 11 91234-5678"},
		Deps{
			Cart:       store,
			Calculator: delivery.NewFlatFeeCalculator(amount("8.50")),
			Payments:   payment.NewPlanValidator(),
			Serializer: order.NewSerializer("Pizzaria do Zé", "5511999990000"),
			Archive:    archive,
			Publisher:  publisher,
		})
}

func fillCart(t *testing.T, f *Flow) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.Cart().AddItem(ctx, domain.CartItem{
		ProductID: "pizza-margherita", Name: "Pizza Margherita", UnitPrice: amount("35.00"),
	}))
	require.NoError(t, f.Cart().AddItem(ctx, domain.CartItem{
		ProductID: "refrigerante-2l", Name: "Refrigerante 2L", UnitPrice: amount("15.00"),
	}))
}

func TestStart_EmptyCartBlocks(t *testing.T) {
	f := newTestFlow(t, nil, nil)

	err := f.Start(true)

	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Equal(t, domain.StepAuth, f.Step())
}

func TestSubmitDelivery_InvalidAddressBlocksAdvance(t *testing.T) {
	f := newTestFlow(t, nil, nil)
	fillCart(t, f)
	require.NoError(t, f.Start(true))

	addr := validAddress()
	addr.Street = ""
	fieldErrs, err := f.SubmitDelivery(domain.DeliveryTypeDelivery, addr)

	require.NoError(t, err)
	assert.Contains(t, fieldErrs, "street")
	assert.Equal(t, domain.StepDelivery, f.Step())
}

func TestSubmitPayment_InsufficientTenderBlocksAdvance(t *testing.T) {
	f := newTestFlow(t, nil, nil)
	fillCart(t, f)
	require.NoError(t, f.Start(true))

	fieldErrs, err := f.SubmitDelivery(domain.DeliveryTypeDelivery, validAddress())
	require.NoError(t, err)
	require.Empty(t, fieldErrs)

	err = f.SubmitPayment(domain.PaymentCash, payment.Input{NeedsChange: true, Tendered: amount("40.00")})

	assert.ErrorIs(t, err, payment.ErrInsufficientTender)
	assert.Equal(t, domain.StepPayment, f.Step())
}

func TestOrderTotal_IncludesDeliveryFee(t *testing.T) {
	f := newTestFlow(t, nil, nil)
	fillCart(t, f)
	require.NoError(t, f.Start(true))

	assert.True(t, f.OrderTotal().Equal(amount("50.00")))

	_, err := f.SubmitDelivery(domain.DeliveryTypeDelivery, validAddress())
	require.NoError(t, err)

	assert.True(t, f.OrderTotal().Equal(amount("58.50")))
}

func TestPlaceOrder_BeforeSummaryIsRefused(t *testing.T) {
	f := newTestFlow(t, nil, nil)
	fillCart(t, f)
	require.NoError(t, f.Start(true))

	_, err := f.PlaceOrder(context.Background())

	assert.ErrorIs(t, err, ErrIncompleteCheckout)
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	archive := &mockArchive{}
	publisher := &mockPublisher{}
	f := newTestFlow(t, archive, publisher)
	fillCart(t, f)
	ctx := context.Background()

	require.NoError(t, f.Start(true))

	fieldErrs, err := f.SubmitDelivery(domain.DeliveryTypeDelivery, validAddress())
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.Equal(t, domain.StepPayment, f.Step())

	require.NoError(t, f.SubmitPayment(domain.PaymentPix, payment.Input{}))
	require.Equal(t, domain.StepSummary, f.Step())

	msg, err := f.PlaceOrder(ctx)
	require.NoError(t, err)

	assert.Contains(t, msg.Text, "Subtotal: R$ 50,00")
	assert.Contains(t, msg.Text, "Taxa de Entrega: R$ 8,50")
	assert.Contains(t, msg.Text, "*TOTAL DO PEDIDO: R$ 58,50*")
	assert.Contains(t, msg.DeepLink, "https://wa.me/5511999990000?text=")

	assert.Equal(t, domain.StepSuccess, f.Step())
	assert.NotEmpty(t, f.Session().OrderID)
	assert.Empty(t, f.Cart().Items())

	require.Len(t, archive.saved, 1)
	assert.True(t, archive.saved[0].Total.Equal(amount("58.50")))
	require.Len(t, publisher.published, 1)
	assert.Equal(t, archive.saved[0].ID, publisher.published[0].ID)
}

func TestPlaceOrder_SideEffectFailuresDoNotFailCheckout(t *testing.T) {
	archive := &mockArchive{err: errors.New("postgres down")}
	publisher := &mockPublisher{err: errors.New("kafka down")}
	f := newTestFlow(t, archive, publisher)
	fillCart(t, f)

	require.NoError(t, f.Start(true))
	fieldErrs, err := f.SubmitDelivery(domain.DeliveryTypePickup, nil)
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.NoError(t, f.SubmitPayment(domain.PaymentDebit, payment.Input{}))

	msg, err := f.PlaceOrder(context.Background())

	require.NoError(t, err)
	assert.Contains(t, msg.Text, "Retirada no balcão")
	assert.Equal(t, domain.StepSuccess, f.Step())
}

func TestFlow_ConcurrentRequestsSerialize(t *testing.T) {
	f := newTestFlow(t, nil, nil)
	fillCart(t, f)
	require.NoError(t, f.Start(true))
	ctx := context.Background()

	// mutating and reading requests for one session may run in parallel
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.Cart().AddItem(ctx, domain.CartItem{
				ProductID: "pizza-margherita", Name: "Pizza Margherita", UnitPrice: amount("35.00"),
			}))
			f.SetObservations("sem cebola")
			_ = f.Session()
			_ = f.OrderTotal()
			_ = f.Step()
		}()
	}
	wg.Wait()

	assert.Equal(t, "sem cebola", f.Session().Observations)
	assert.Equal(t, 10, f.Cart().TotalItems())
}

func TestBack_RetreatsOneStep(t *testing.T) {
	f := newTestFlow(t, nil, nil)
	fillCart(t, f)
	require.NoError(t, f.Start(true))
	_, err := f.SubmitDelivery(domain.DeliveryTypePickup, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StepPayment, f.Step())

	f.Back()

	assert.Equal(t, domain.StepDelivery, f.Step())
}

func TestReset_LeavesCartAlone(t *testing.T) {
	f := newTestFlow(t, nil, nil)
	fillCart(t, f)
	require.NoError(t, f.Start(true))

	f.Reset()

	assert.Equal(t, domain.StepAuth, f.Step())
	assert.Len(t, f.Cart().Items(), 2)
}

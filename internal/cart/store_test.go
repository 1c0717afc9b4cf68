package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pizza() domain.CartItem {
	return domain.CartItem{
		ProductID: "pizza-margherita",
		Name:      "Pizza Margherita",
		UnitPrice: price("35.00"),
	}
}

func soda() domain.CartItem {
	return domain.CartItem{
		ProductID: "refrigerante-2l",
		Name:      "Refrigerante 2L",
		UnitPrice: price("15.00"),
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), "session-1", NewMemoryRepository())
	require.NoError(t, err)
	return s
}

func TestAddItem_NewLine(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddItem(context.Background(), pizza()))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 1, s.TotalItems())
	assert.True(t, s.TotalPrice().Equal(price("35.00")))
}

func TestAddItem_SameConfigurationIncrements(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddItem(context.Background(), pizza()))
	require.NoError(t, s.AddItem(context.Background(), pizza()))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, s.TotalPrice().Equal(price("70.00")))
}

func TestAddItem_DifferentAddOnsStaySeparate(t *testing.T) {
	s := newTestStore(t)

	plain := pizza()
	withExtra := pizza()
	withExtra.AddOns = []domain.AddOn{{Name: "Borda recheada", Price: price("8.00")}}

	require.NoError(t, s.AddItem(context.Background(), plain))
	require.NoError(t, s.AddItem(context.Background(), withExtra))

	assert.Len(t, s.Items(), 2)
	// add-on price does not enter the subtotal
	assert.True(t, s.TotalPrice().Equal(price("70.00")))
}

func TestAddItem_DifferentObservationStaysSeparate(t *testing.T) {
	s := newTestStore(t)

	plain := pizza()
	noOnion := pizza()
	noOnion.Observation = "sem cebola"

	require.NoError(t, s.AddItem(context.Background(), plain))
	require.NoError(t, s.AddItem(context.Background(), noOnion))

	assert.Len(t, s.Items(), 2)
}

func TestUpdateQuantity_SetsQuantity(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddItem(context.Background(), pizza()))

	require.NoError(t, s.UpdateQuantity(context.Background(), pizza().LineKey(), 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, s.TotalPrice().Equal(price("105.00")))
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddItem(context.Background(), pizza()))

	require.NoError(t, s.UpdateQuantity(context.Background(), pizza().LineKey(), 0))

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.TotalItems())
}

func TestUpdateQuantity_NegativeRemovesLine(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddItem(context.Background(), pizza()))

	require.NoError(t, s.UpdateQuantity(context.Background(), pizza().LineKey(), -1))

	assert.Empty(t, s.Items())
}

func TestRemoveItem_DeletesLine(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddItem(context.Background(), pizza()))
	require.NoError(t, s.AddItem(context.Background(), soda()))

	require.NoError(t, s.RemoveItem(context.Background(), pizza().LineKey()))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Refrigerante 2L", items[0].Name)
}

func TestRemoveItem_AbsentLineIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddItem(context.Background(), pizza()))

	require.NoError(t, s.RemoveItem(context.Background(), "missing"))

	assert.Len(t, s.Items(), 1)
}

func TestClear_EmptiesAggregate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddItem(context.Background(), pizza()))

	require.NoError(t, s.Clear(context.Background()))

	assert.Empty(t, s.Items())
	assert.True(t, s.TotalPrice().IsZero())
}

func TestTotalPrice_InvariantOverMutationSequence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, pizza()))
	require.NoError(t, s.AddItem(ctx, soda()))
	require.NoError(t, s.AddItem(ctx, pizza()))
	require.NoError(t, s.UpdateQuantity(ctx, soda().LineKey(), 4))
	require.NoError(t, s.UpdateQuantity(ctx, pizza().LineKey(), 1))
	require.NoError(t, s.RemoveItem(ctx, "missing"))

	expected := decimal.Zero
	for _, item := range s.Items() {
		require.Greater(t, item.Quantity, 0)
		expected = expected.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, s.TotalPrice().Equal(expected))
	assert.True(t, s.TotalPrice().Equal(price("95.00")))
}

func TestAddItem_ConcurrentRequestsSerialize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// one session can issue parallel requests (double-click, add racing a
	// cart fetch); every increment must land
	const adds = 8
	var wg sync.WaitGroup
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AddItem(ctx, pizza()))
			_ = s.Items()
			_ = s.TotalPrice()
		}()
	}
	wg.Wait()

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, adds, items[0].Quantity)
	assert.Equal(t, adds, s.TotalItems())
}

func TestNewStore_LoadsPersistedCart(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first, err := NewStore(ctx, "session-1", repo)
	require.NoError(t, err)
	require.NoError(t, first.AddItem(ctx, pizza()))

	second, err := NewStore(ctx, "session-1", repo)
	require.NoError(t, err)
	require.Len(t, second.Items(), 1)
	assert.Equal(t, "Pizza Margherita", second.Items()[0].Name)
}

type failingRepository struct {
	err error
}

func (f *failingRepository) Load(context.Context, string) ([]domain.CartItem, error) {
	return nil, ErrCartNotFound
}

func (f *failingRepository) Save(context.Context, string, []domain.CartItem) error {
	return f.err
}

func (f *failingRepository) Delete(context.Context, string) error {
	return f.err
}

func TestAddItem_PersistFailureIsReturned(t *testing.T) {
	repo := &failingRepository{err: errors.New("redis down")}
	s, err := NewStore(context.Background(), "session-1", repo)
	require.NoError(t, err)

	err = s.AddItem(context.Background(), pizza())
	assert.Error(t, err)
}

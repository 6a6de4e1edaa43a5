package service

import (
	"math/rand"
	"testing"
	"time"

	"pos-terminal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumLines(cart models.Cart) int64 {
	var total int64
	for _, item := range cart.Items {
		total += int64(item.Quantity) * item.Price
	}
	return total
}

func TestCartScenarioAddIncreaseRemove(t *testing.T) {
	r := NewRegister(WithRemoveDebounce(0))

	_, err := r.AddToActiveCart(productA)
	require.NoError(t, err)
	cart, err := r.AddToActiveCart(productB)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), cart.TotalAmount)

	_, err = r.IncreaseQuantity(0)
	require.NoError(t, err)
	cart, err = r.IncreaseQuantity(0)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, int64(50000), cart.TotalAmount)

	cart, applied, err := r.RemoveItem(1)
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(30000), cart.TotalAmount)
}

func TestTotalAlwaysMatchesLines(t *testing.T) {
	r := NewRegister(WithRemoveDebounce(0))
	products := []models.Product{productA, productB, productC}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		cart := r.ActiveCart()
		n := len(cart.Items)
		switch rng.Intn(4) {
		case 0:
			cart, _ = r.AddToActiveCart(products[rng.Intn(len(products))])
		case 1:
			if n > 0 {
				cart, _ = r.IncreaseQuantity(rng.Intn(n))
			}
		case 2:
			if n > 0 {
				cart, _ = r.DecreaseQuantity(rng.Intn(n))
			}
		case 3:
			if n > 0 {
				cart, _, _ = r.RemoveItem(rng.Intn(n))
			}
		}
		require.Equal(t, sumLines(cart), cart.TotalAmount, "step %d", i)
		for _, item := range cart.Items {
			require.GreaterOrEqual(t, item.Quantity, 1)
			require.Equal(t, int64(item.Quantity)*item.Price, item.Total)
		}
	}
}

func TestDecreaseFloorsAtOne(t *testing.T) {
	r := NewRegister()
	_, err := r.AddToActiveCart(productA)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		cart, err := r.DecreaseQuantity(0)
		require.NoError(t, err)
		assert.Equal(t, 1, cart.Items[0].Quantity)
		assert.Equal(t, int64(10000), cart.TotalAmount)
	}
}

func TestAddingExistingProductIsNoop(t *testing.T) {
	r := NewRegister()
	_, err := r.AddToActiveCart(productA)
	require.NoError(t, err)
	_, err = r.IncreaseQuantity(0)
	require.NoError(t, err)

	cart, err := r.AddToActiveCart(productA)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, int64(20000), cart.TotalAmount)
}

func TestOutOfRangeIndexIsValidationError(t *testing.T) {
	r := NewRegister()

	_, err := r.IncreaseQuantity(0)
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = r.RemoveItem(-1)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = r.SelectCart(3)
	assert.ErrorIs(t, err, ErrValidation)
	_, _, err = r.CloseCart(5)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveIsDebounced(t *testing.T) {
	r := NewRegister(WithRemoveDebounce(50 * time.Millisecond))
	for _, p := range []models.Product{productA, productB, productC} {
		_, err := r.AddToActiveCart(p)
		require.NoError(t, err)
	}

	cart, applied, err := r.RemoveItem(0)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Len(t, cart.Items, 2)

	cart, applied, err = r.RemoveItem(0)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Len(t, cart.Items, 2)

	require.Eventually(t, func() bool {
		_, applied, _ := r.RemoveItem(0)
		return applied
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, r.ActiveCart().Items, 1)
}

func TestCloseFirstCartIsNoop(t *testing.T) {
	r := NewRegister()
	r.NewCart()

	_, closed, err := r.CloseCart(0)
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Len(t, r.Snapshot().Carts, 2)
}

func TestCloseCartKeepsActiveIndexValid(t *testing.T) {
	tests := []struct {
		name       string
		active     int
		close      int
		wantActive int
	}{
		{name: "active after closed shifts left", active: 3, close: 1, wantActive: 2},
		{name: "closing active moves to previous", active: 2, close: 2, wantActive: 1},
		{name: "active before closed stays", active: 1, close: 3, wantActive: 1},
		{name: "closing last active tab", active: 3, close: 3, wantActive: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegister()
			for i := 0; i < 3; i++ {
				r.NewCart()
			}
			_, err := r.SelectCart(tt.active)
			require.NoError(t, err)
			before := r.Snapshot()

			_, closed, err := r.CloseCart(tt.close)
			require.NoError(t, err)
			assert.True(t, closed)

			snap := r.Snapshot()
			assert.Len(t, snap.Carts, len(before.Carts)-1)
			assert.Equal(t, tt.wantActive, snap.ActiveIndex)
			assert.Less(t, snap.ActiveIndex, len(snap.Carts))
		})
	}
}

func TestNewCartGetsUniqueInvoiceNumberAfterClose(t *testing.T) {
	r := NewRegister(WithComponentID("receipt-abc1234"))
	second := r.NewCart()
	assert.Equal(t, "receipt-abc1234-2", second.InvoiceNumber)
	assert.Equal(t, 1, r.Snapshot().ActiveIndex)

	_, _, err := r.CloseCart(1)
	require.NoError(t, err)
	third := r.NewCart()

	assert.NotEqual(t, second.ID, third.ID)
	assert.Equal(t, "receipt-abc1234-3", third.InvoiceNumber)
}

func TestDefaultComponentIDShape(t *testing.T) {
	r := NewRegister()
	assert.Regexp(t, `^receipt-[0-9a-f]{7}$`, r.ComponentID())
	assert.Equal(t, r.ComponentID()+"-1", r.ActiveCart().InvoiceNumber)
}

func TestSetNoteAndPaymentMethod(t *testing.T) {
	r := NewRegister()

	cart, err := r.SetNote("Ít đường")
	require.NoError(t, err)
	assert.Equal(t, "Ít đường", cart.Note)

	cart, err = r.SetPaymentMethod(models.PaymentMethodCard)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodCard, cart.PaymentMethod)

	_, err = r.SetPaymentMethod("Bitcoin")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.PaymentMethodCard, r.ActiveCart().PaymentMethod)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := NewRegister()
	_, err := r.AddToActiveCart(productA)
	require.NoError(t, err)

	snap := r.Snapshot()
	snap.Carts[0].Items[0].Quantity = 99

	assert.Equal(t, 1, r.ActiveCart().Items[0].Quantity)
}

func TestEditsRejectedWhileCheckingOut(t *testing.T) {
	r := NewRegister()
	cart, err := r.AddToActiveCart(productA)
	require.NoError(t, err)

	_, err = r.beginCheckout(cart.ID)
	require.NoError(t, err)

	_, err = r.AddToActiveCart(productB)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	_, err = r.IncreaseQuantity(0)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	_, err = r.beginCheckout(cart.ID)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	reset := r.finishCheckout(cart.ID, false)
	assert.False(t, reset.CheckingOut)
	assert.Len(t, reset.Items, 1)
}

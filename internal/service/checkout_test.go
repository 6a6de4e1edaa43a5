package service

import (
	"context"
	"testing"

	"pos-terminal/internal/apiclient"
	"pos-terminal/internal/models"
	"pos-terminal/internal/vietqr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutEmptyCartMakesNoCall(t *testing.T) {
	h := newHarness(t, true)

	_, err := h.checkout.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, h.backend.total())
}

func TestCheckoutUnauthenticatedMakesNoCall(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.register.AddToActiveCart(productA)
	require.NoError(t, err)

	_, err = h.checkout.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, 0, h.backend.total())
	assert.Equal(t, 0, h.qr.count())
}

func TestCheckoutWithoutUserID(t *testing.T) {
	h := newHarness(t, false)
	h.backend.loginResult = &apiclient.LoginResult{Token: "opaque"}
	_, err := h.auth.Login(context.Background(), "cashier@sukem.vn", "secret")
	require.NoError(t, err)
	_, err = h.register.AddToActiveCart(productA)
	require.NoError(t, err)

	_, err = h.checkout.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrMissingUser)
	assert.Equal(t, 0, h.backend.count("create-invoice"))
}

func TestCheckoutSuccessResetsCartKeepingIdentity(t *testing.T) {
	h := newHarness(t, true)
	h.register.NewCart()
	_, err := h.register.AddToActiveCart(productA)
	require.NoError(t, err)
	_, err = h.register.AddToActiveCart(productB)
	require.NoError(t, err)
	_, err = h.register.SetNote("Mang về")
	require.NoError(t, err)
	_, err = h.register.SetPaymentMethod(models.PaymentMethodCard)
	require.NoError(t, err)
	before := h.register.ActiveCart()

	result, err := h.checkout.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CheckoutPaid, result.Status)
	require.NotNil(t, result.Receipt)
	assert.Equal(t, int64(30000), result.Receipt.TotalAmount)

	require.Len(t, h.backend.created, 1)
	sent := h.backend.created[0]
	assert.Equal(t, "user-1", sent.UserID)
	assert.Equal(t, models.PaymentMethodCard, sent.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPaid, sent.PaymentStatus)
	assert.Equal(t, "Mang về", sent.Note)
	assert.Len(t, sent.Products, 2)

	after := h.register.ActiveCart()
	assert.Empty(t, after.Items)
	assert.Empty(t, after.Note)
	assert.Zero(t, after.TotalAmount)
	assert.Equal(t, models.PaymentMethodCash, after.PaymentMethod)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.InvoiceNumber, after.InvoiceNumber)
	assert.Equal(t, 1, h.register.Snapshot().ActiveIndex)
	assert.False(t, after.CheckingOut)

	assert.Len(t, h.receipts.List(), 1)
}

func TestCheckoutFailureLeavesCartUntouched(t *testing.T) {
	h := newHarness(t, true)
	h.backend.createErr = &apiclient.APIError{Status: 400, Message: "Lỗi tạo hóa đơn"}
	_, err := h.register.AddToActiveCart(productA)
	require.NoError(t, err)
	before := h.register.ActiveCart()

	_, err = h.checkout.Checkout(context.Background())
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)

	after := h.register.ActiveCart()
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.TotalAmount, after.TotalAmount)
	assert.False(t, after.CheckingOut)
	assert.Empty(t, h.receipts.List())
}

func TestCloseAndSecondCheckoutRejectedWhileCheckingOut(t *testing.T) {
	h := newHarness(t, true)
	h.backend.createStarted = make(chan struct{})
	h.backend.createRelease = make(chan struct{})

	h.register.NewCart()
	_, err := h.register.AddToActiveCart(productA)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := h.checkout.Checkout(context.Background())
		done <- err
	}()
	<-h.backend.createStarted

	_, err = h.checkout.CloseCart(1)
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	_, err = h.checkout.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.True(t, h.register.ActiveCart().CheckingOut)

	close(h.backend.createRelease)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.backend.count("create-invoice"))

	snap, err := h.checkout.CloseCart(1)
	require.NoError(t, err)
	assert.Len(t, snap.Carts, 1)
}

func TestBankTransferOpensQRWithoutPersisting(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.register.AddToActiveCart(productA)
	require.NoError(t, err)
	_, err = h.register.SetPaymentMethod(models.PaymentMethodBankTransfer)
	require.NoError(t, err)
	cart := h.register.ActiveCart()

	result, err := h.checkout.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CheckoutAwaitingTransfer, result.Status)
	require.NotNil(t, result.QR)
	assert.Equal(t, int64(10000), result.QR.Amount)
	assert.Equal(t, cart.InvoiceNumber, result.QR.InvoiceNumber)
	assert.Equal(t, "Thanh toan Sukem Store - "+cart.InvoiceNumber, result.QR.TransferContent)
	assert.Equal(t, "Vietcombank", result.QR.Bank.BankName)
	assert.NotEmpty(t, result.QR.QRDataURL)

	assert.Equal(t, 0, h.backend.count("create-invoice"))
	assert.Len(t, h.register.ActiveCart().Items, 1)
}

func TestConfirmQRPersistsExactlyOnce(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.register.AddToActiveCart(productB)
	require.NoError(t, err)
	_, err = h.register.SetPaymentMethod(models.PaymentMethodBankTransfer)
	require.NoError(t, err)
	_, err = h.checkout.Checkout(context.Background())
	require.NoError(t, err)

	result, err := h.checkout.ConfirmQRPayment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CheckoutPaid, result.Status)
	assert.Equal(t, models.PaymentMethodBankTransfer, h.backend.created[0].PaymentMethod)

	_, err = h.checkout.ConfirmQRPayment(context.Background())
	assert.ErrorIs(t, err, ErrNoQRSession)
	assert.Equal(t, 1, h.backend.count("create-invoice"))

	_, open := h.checkout.ActiveQR()
	assert.False(t, open)
}

func TestConfirmQRRejectsChangedTotal(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.register.AddToActiveCart(productA)
	require.NoError(t, err)
	_, err = h.register.SetPaymentMethod(models.PaymentMethodBankTransfer)
	require.NoError(t, err)
	_, err = h.checkout.Checkout(context.Background())
	require.NoError(t, err)

	_, err = h.register.IncreaseQuantity(0)
	require.NoError(t, err)

	_, err = h.checkout.ConfirmQRPayment(context.Background())
	assert.ErrorIs(t, err, ErrQRAmountChanged)
	assert.Equal(t, 0, h.backend.count("create-invoice"))
	assert.False(t, h.register.ActiveCart().CheckingOut)

	session, err := h.checkout.RetryQR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20000), session.Amount)

	_, err = h.checkout.ConfirmQRPayment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(20000), h.backend.created[0].TotalAmount)
}

func TestQRFailureCanBeRetried(t *testing.T) {
	h := newHarness(t, true)
	h.qr.setErr(vietqr.ErrUnavailable)
	_, err := h.register.AddToActiveCart(productA)
	require.NoError(t, err)
	_, err = h.register.SetPaymentMethod(models.PaymentMethodBankTransfer)
	require.NoError(t, err)

	result, err := h.checkout.Checkout(context.Background())
	assert.ErrorIs(t, err, vietqr.ErrUnavailable)
	require.NotNil(t, result)
	require.NotNil(t, result.QR)
	assert.NotEmpty(t, result.QR.Error)

	_, err = h.checkout.ConfirmQRPayment(context.Background())
	assert.ErrorIs(t, err, ErrNoQRSession)

	h.qr.setErr(nil)
	session, err := h.checkout.RetryQR(context.Background())
	require.NoError(t, err)
	assert.Empty(t, session.Error)
	assert.NotEmpty(t, session.QRDataURL)
	assert.Equal(t, 2, h.qr.count())
}

func TestRetryWithoutSession(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.checkout.RetryQR(context.Background())
	assert.ErrorIs(t, err, ErrNoQRSession)
}

func TestNilCartOpensNoQR(t *testing.T) {
	h := newHarness(t, true)
	session, err := h.checkout.openQR(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, session)
	assert.Equal(t, 0, h.qr.count())
}

func TestCloseQRKeepsCart(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.register.AddToActiveCart(productA)
	require.NoError(t, err)
	_, err = h.register.SetPaymentMethod(models.PaymentMethodBankTransfer)
	require.NoError(t, err)
	_, err = h.checkout.Checkout(context.Background())
	require.NoError(t, err)

	h.checkout.CloseQR()

	_, open := h.checkout.ActiveQR()
	assert.False(t, open)
	assert.Len(t, h.register.ActiveCart().Items, 1)
}

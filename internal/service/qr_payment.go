package service

import (
	"context"

	"pos-terminal/internal/models"
	"pos-terminal/internal/util"
	"pos-terminal/internal/vietqr"

	"go.uber.org/zap"
)

// QRGenerator produces bank transfer QR codes. *vietqr.Client implements it.
type QRGenerator interface {
	Generate(ctx context.Context, amount int64, invoiceNumber string) (*vietqr.QRData, error)
	BankInfo() vietqr.BankInfo
	TransferContent(invoiceNumber string) string
}

// QRSession is the open bank transfer for one cart. Error is set when the
// image could not be loaded and RetryQR should be offered.
type QRSession struct {
	CartID          int             `json:"cartId"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	Amount          int64           `json:"amount"`
	TransferContent string          `json:"transferContent"`
	Bank            vietqr.BankInfo `json:"bank"`
	QRDataURL       string          `json:"qrDataURL,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// openQR requests a QR for cart and records the session, failed or not.
// A nil cart opens nothing.
func (s *CheckoutService) openQR(ctx context.Context, cart *models.Cart) (*QRSession, error) {
	if cart == nil {
		return nil, nil
	}

	session := &QRSession{
		CartID:          cart.ID,
		InvoiceNumber:   cart.InvoiceNumber,
		Amount:          cart.TotalAmount,
		TransferContent: s.qr.TransferContent(cart.InvoiceNumber),
		Bank:            s.qr.BankInfo(),
	}

	data, err := s.qr.Generate(ctx, cart.TotalAmount, cart.InvoiceNumber)
	if err != nil {
		session.Error = err.Error()
		s.logger.Warn("QR generation failed",
			zap.String("invoice_number", cart.InvoiceNumber),
			zap.Error(err))
	} else {
		session.QRDataURL = data.QRDataURL
	}

	s.mu.Lock()
	s.qrSessions[cart.ID] = session
	s.mu.Unlock()

	out := *session
	return &out, err
}

// RetryQR re-requests the QR for the active cart using its current total.
func (s *CheckoutService) RetryQR(ctx context.Context) (*QRSession, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.RetryQR")
	defer span.End()

	cart := s.register.ActiveCart()
	if _, ok := s.qrSession(cart.ID); !ok {
		return nil, ErrNoQRSession
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	return s.openQR(ctx, &cart)
}

// ConfirmQRPayment persists the active cart once the cashier saw the transfer arrive.
// The cart must still match the amount the QR code was issued for.
func (s *CheckoutService) ConfirmQRPayment(ctx context.Context) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.ConfirmQRPayment")
	defer span.End()

	cart := s.register.ActiveCart()
	session, ok := s.qrSession(cart.ID)
	if !ok || session.QRDataURL == "" || cart.PaymentMethod != models.PaymentMethodBankTransfer {
		return nil, ErrNoQRSession
	}
	userID, err := s.precheck(cart)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, cart.ID, userID, func(c models.Cart) error {
		if c.TotalAmount != session.Amount || c.PaymentMethod != models.PaymentMethodBankTransfer {
			util.CheckoutFailuresTotal.WithLabelValues("qr_amount_changed").Inc()
			return ErrQRAmountChanged
		}
		return nil
	})
}

// CloseQR abandons the transfer for the active cart. The cart is left as is.
func (s *CheckoutService) CloseQR() {
	cart := s.register.ActiveCart()
	s.mu.Lock()
	delete(s.qrSessions, cart.ID)
	s.mu.Unlock()
}

// ActiveQR returns the open session for the active cart, if any.
func (s *CheckoutService) ActiveQR() (*QRSession, bool) {
	return s.qrSession(s.register.ActiveCart().ID)
}

func (s *CheckoutService) qrSession(cartID int) (*QRSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.qrSessions[cartID]
	if !ok {
		return nil, false
	}
	out := *session
	return &out, true
}

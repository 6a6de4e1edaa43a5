package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"pos-terminal/internal/models"
	"pos-terminal/internal/util"

	"go.uber.org/zap"
)

type CheckoutStatus string

const (
	CheckoutPaid             CheckoutStatus = "paid"
	CheckoutAwaitingTransfer CheckoutStatus = "awaiting_transfer"
)

// CheckoutResult is either a persisted receipt or an open bank transfer QR.
type CheckoutResult struct {
	Status  CheckoutStatus  `json:"status"`
	Cart    models.Cart     `json:"cart"`
	Receipt *models.Receipt `json:"receipt,omitempty"`
	QR      *QRSession      `json:"qr,omitempty"`
}

// CheckoutService turns the active cart into a receipt.
type CheckoutService struct {
	register *Register
	receipts *ReceiptService
	auth     *AuthService
	qr       QRGenerator
	logger   *zap.Logger

	mu         sync.Mutex
	qrSessions map[int]*QRSession
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(register *Register, receipts *ReceiptService, auth *AuthService, qr QRGenerator) *CheckoutService {
	return &CheckoutService{
		register:   register,
		receipts:   receipts,
		auth:       auth,
		qr:         qr,
		logger:     util.GetLogger(),
		qrSessions: make(map[int]*QRSession),
	}
}

// Checkout pays the active cart. Bank transfers only open a QR session; nothing is
// persisted until ConfirmQRPayment.
func (s *CheckoutService) Checkout(ctx context.Context) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	cart := s.register.ActiveCart()
	userID, err := s.precheck(cart)
	if err != nil {
		return nil, err
	}

	if cart.PaymentMethod == models.PaymentMethodBankTransfer {
		session, err := s.openQR(ctx, &cart)
		return &CheckoutResult{Status: CheckoutAwaitingTransfer, Cart: cart, QR: session}, err
	}

	return s.persist(ctx, cart.ID, userID, nil)
}

// CloseCart closes the tab at index and drops any QR session opened for it.
func (s *CheckoutService) CloseCart(index int) (RegisterSnapshot, error) {
	cartID, closed, err := s.register.CloseCart(index)
	if err != nil {
		return s.register.Snapshot(), err
	}
	if closed {
		s.mu.Lock()
		delete(s.qrSessions, cartID)
		s.mu.Unlock()
	}
	return s.register.Snapshot(), nil
}

// precheck runs every check that needs no network call.
func (s *CheckoutService) precheck(cart models.Cart) (string, error) {
	if len(cart.Items) == 0 {
		util.CheckoutFailuresTotal.WithLabelValues("empty_cart").Inc()
		return "", ErrEmptyCart
	}
	if cart.CheckingOut {
		util.CheckoutFailuresTotal.WithLabelValues("in_progress").Inc()
		return "", ErrCheckoutInProgress
	}
	if !s.auth.IsAuthenticated() {
		util.CheckoutFailuresTotal.WithLabelValues("unauthenticated").Inc()
		return "", ErrUnauthenticated
	}
	user := s.auth.CurrentUser()
	if user == nil || user.ID == "" {
		util.CheckoutFailuresTotal.WithLabelValues("missing_user").Inc()
		return "", ErrMissingUser
	}
	return user.ID, nil
}

// persist runs the checking-out transition. check, when set, vets the exact cart
// about to be sent before any network call.
func (s *CheckoutService) persist(ctx context.Context, cartID int, userID string, check func(models.Cart) error) (*CheckoutResult, error) {
	cart, err := s.register.beginCheckout(cartID)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(cart); err != nil {
			s.register.finishCheckout(cartID, false)
			return nil, err
		}
	}

	start := time.Now()
	receipt, err := s.receipts.Create(ctx, models.CreateReceiptRequest{
		Products:      cart.Items,
		UserID:        userID,
		PaymentMethod: cart.PaymentMethod,
		PaymentStatus: models.PaymentStatusPaid,
		Note:          cart.Note,
		TotalAmount:   cart.TotalAmount,
	})
	util.CheckoutLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		s.register.finishCheckout(cartID, false)
		util.CheckoutFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		s.logger.Warn("Checkout failed",
			zap.String("invoice_number", cart.InvoiceNumber),
			zap.Error(err))
		return nil, err
	}

	reset := s.register.finishCheckout(cartID, true)
	s.mu.Lock()
	delete(s.qrSessions, cartID)
	s.mu.Unlock()
	util.CheckoutsTotal.WithLabelValues(string(cart.PaymentMethod)).Inc()
	s.logger.Info("Checkout completed",
		zap.String("invoice_number", cart.InvoiceNumber),
		zap.String("receipt_id", receipt.ID),
		zap.Int64("total_amount", cart.TotalAmount))

	return &CheckoutResult{Status: CheckoutPaid, Cart: reset, Receipt: receipt}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrMissingUser):
		return "missing_user"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "backend"
	}
}

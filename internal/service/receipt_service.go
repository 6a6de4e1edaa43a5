package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pos-terminal/internal/models"
	"pos-terminal/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InvoiceBackend interface {
	CreateInvoice(ctx context.Context, token string, req models.CreateReceiptRequest) (*models.Receipt, error)
	ListInvoices(ctx context.Context, token string) ([]models.Receipt, error)
	GetInvoice(ctx context.Context, token, id string) (*models.Receipt, error)
	DeleteInvoice(ctx context.Context, token, id string) (string, error)
}

// ReceiptMirror is the optional local copy of the receipt history. *store.Store implements it.
type ReceiptMirror interface {
	SaveReceipts(ctx context.Context, receipts []models.Receipt) error
	ListReceipts(ctx context.Context) ([]models.Receipt, error)
	DeleteReceipt(ctx context.Context, id string) error
}

// InvoicePublisher announces confirmed invoice changes. *broker.EventPublisher implements it.
type InvoicePublisher interface {
	PublishInvoiceCreated(ctx context.Context, event *models.InvoiceCreatedEvent) error
	PublishInvoiceDeleted(ctx context.Context, event *models.InvoiceDeletedEvent) error
}

// ReceiptService caches persisted invoices. Mirror and publisher may be nil.
type ReceiptService struct {
	backend   InvoiceBackend
	auth      *AuthService
	mirror    ReceiptMirror
	publisher InvoicePublisher
	source    string
	logger    *zap.Logger

	mu       sync.RWMutex
	receipts []models.Receipt
	seq      fetchSeq
}

// NewReceiptService creates a new receipt service. source tags the events this terminal publishes.
func NewReceiptService(
	backend InvoiceBackend,
	auth *AuthService,
	mirror ReceiptMirror,
	publisher InvoicePublisher,
	source string,
) *ReceiptService {
	return &ReceiptService{
		backend:   backend,
		auth:      auth,
		mirror:    mirror,
		publisher: publisher,
		source:    source,
		logger:    util.GetLogger(),
		receipts:  []models.Receipt{},
	}
}

func (s *ReceiptService) Source() string {
	return s.source
}

// Create persists an invoice. The cache only changes after the backend confirms.
func (s *ReceiptService) Create(ctx context.Context, req models.CreateReceiptRequest) (*models.Receipt, error) {
	ctx, span := util.StartSpan(ctx, "ReceiptService.Create")
	defer span.End()

	if len(req.Products) == 0 {
		return nil, validationf("Hóa đơn chưa có sản phẩm")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrMissingUser
	}
	if !req.PaymentMethod.Valid() {
		return nil, validationf("Phương thức thanh toán không hợp lệ")
	}
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	receipt, err := s.backend.CreateInvoice(ctx, token, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.upsertLocked(*receipt)
	s.seq.bump()
	s.mu.Unlock()

	s.logger.Info("Invoice created",
		zap.String("receipt_id", receipt.ID),
		zap.String("invoice_number", receipt.InvoiceNumber),
		zap.Int64("total_amount", receipt.TotalAmount))

	s.mirrorSave(ctx, []models.Receipt{*receipt})
	if s.publisher != nil {
		event := &models.InvoiceCreatedEvent{
			BaseEvent: s.newBaseEvent(models.EventTypeInvoiceCreated),
			Receipt:   *receipt,
		}
		if err := s.publisher.PublishInvoiceCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish InvoiceCreated event", zap.Error(err))
		}
	}
	return receipt, nil
}

// Fetch reloads the history from the backend.
func (s *ReceiptService) Fetch(ctx context.Context) ([]models.Receipt, error) {
	ctx, span := util.StartSpan(ctx, "ReceiptService.Fetch")
	defer span.End()

	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	ticket := s.seq.ticket()
	receipts, err := s.backend.ListInvoices(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	applied := s.seq.accept(ticket)
	if applied {
		s.receipts = receipts
	}
	s.mu.Unlock()

	if applied {
		s.mirrorSave(ctx, receipts)
	} else {
		s.logger.Debug("Discarding stale receipt fetch", zap.Uint64("ticket", ticket))
	}
	return s.List(), nil
}

// Get asks the backend for one invoice.
func (s *ReceiptService) Get(ctx context.Context, id string) (*models.Receipt, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationf("Thiếu mã hóa đơn")
	}
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.GetInvoice(ctx, token, id)
}

func (s *ReceiptService) Delete(ctx context.Context, id string) (string, error) {
	ctx, span := util.StartSpan(ctx, "ReceiptService.Delete")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return "", validationf("Thiếu mã hóa đơn")
	}
	token, err := s.auth.Token(ctx)
	if err != nil {
		return "", err
	}

	message, err := s.backend.DeleteInvoice(ctx, token, id)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.removeLocked(id)
	s.seq.bump()
	s.mu.Unlock()

	s.logger.Info("Invoice deleted", zap.String("receipt_id", id))

	if s.mirror != nil {
		if err := s.mirror.DeleteReceipt(ctx, id); err != nil {
			s.logger.Warn("Failed to delete mirrored receipt", zap.String("receipt_id", id), zap.Error(err))
		}
	}
	if s.publisher != nil {
		event := &models.InvoiceDeletedEvent{
			BaseEvent: s.newBaseEvent(models.EventTypeInvoiceDeleted),
			ReceiptID: id,
		}
		if err := s.publisher.PublishInvoiceDeleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish InvoiceDeleted event", zap.Error(err))
		}
	}
	return message, nil
}

// List returns the cache in backend order.
func (s *ReceiptService) List() []models.Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

// History returns the cache newest first.
func (s *ReceiptService) History() []models.Receipt {
	out := s.List()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// ApplyRemoteCreated merges an invoice created by another terminal.
func (s *ReceiptService) ApplyRemoteCreated(ctx context.Context, receipt models.Receipt) {
	s.mu.Lock()
	s.upsertLocked(receipt)
	s.seq.bump()
	s.mu.Unlock()
	s.mirrorSave(ctx, []models.Receipt{receipt})
}

// ApplyRemoteDeleted drops an invoice deleted by another terminal.
func (s *ReceiptService) ApplyRemoteDeleted(ctx context.Context, id string) {
	s.mu.Lock()
	s.removeLocked(id)
	s.seq.bump()
	s.mu.Unlock()
	if s.mirror != nil {
		if err := s.mirror.DeleteReceipt(ctx, id); err != nil {
			s.logger.Warn("Failed to delete mirrored receipt", zap.String("receipt_id", id), zap.Error(err))
		}
	}
}

// LoadMirror seeds an empty cache from the local mirror so reports work before the first fetch.
func (s *ReceiptService) LoadMirror(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	ticket := s.seq.ticket()
	receipts, err := s.mirror.ListReceipts(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.receipts) == 0 && s.seq.accept(ticket) {
		s.receipts = receipts
		s.logger.Info("Receipt cache seeded from mirror", zap.Int("count", len(receipts)))
	}
	return nil
}

func (s *ReceiptService) upsertLocked(receipt models.Receipt) {
	for i := range s.receipts {
		if s.receipts[i].ID == receipt.ID {
			s.receipts[i] = receipt
			return
		}
	}
	s.receipts = append(s.receipts, receipt)
}

func (s *ReceiptService) removeLocked(id string) {
	kept := make([]models.Receipt, 0, len(s.receipts))
	for _, r := range s.receipts {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.receipts = kept
}

func (s *ReceiptService) mirrorSave(ctx context.Context, receipts []models.Receipt) {
	if s.mirror == nil || len(receipts) == 0 {
		return
	}
	if err := s.mirror.SaveReceipts(ctx, receipts); err != nil {
		s.logger.Warn("Failed to mirror receipts", zap.Int("count", len(receipts)), zap.Error(err))
	}
}

func (s *ReceiptService) newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Source:    s.source,
		Timestamp: time.Now(),
	}
}

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pos-terminal/internal/apiclient"
	"pos-terminal/internal/models"
	"pos-terminal/internal/vietqr"

	"github.com/stretchr/testify/require"
)

// fakeBackend stands in for every backend endpoint the services call.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	loginResult *apiclient.LoginResult
	loginErr    error
	verifyUser  *models.User
	verifyErr   error

	products     []models.Product
	listProducts func(ctx context.Context) ([]models.Product, error)

	invoices      []models.Receipt
	created       []models.CreateReceiptRequest
	createErr     error
	createStarted chan struct{}
	createRelease chan struct{}

	auditLogs []models.AuditLog
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: make(map[string]int),
		loginResult: &apiclient.LoginResult{
			Token: "session-token",
			User:  &models.User{ID: "user-1", Name: "Thu ngân", Email: "cashier@sukem.vn"},
		},
	}
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*apiclient.LoginResult, error) {
	f.record("login")
	return f.loginResult, f.loginErr
}

func (f *fakeBackend) Register(ctx context.Context, req apiclient.RegisterRequest) (string, error) {
	f.record("register")
	return "Đăng ký thành công", nil
}

func (f *fakeBackend) ForgotPassword(ctx context.Context, email string) (string, error) {
	f.record("forgot")
	return "Đã gửi mã", nil
}

func (f *fakeBackend) VerifyResetCode(ctx context.Context, email, resetCode string) (string, string, error) {
	f.record("verify-reset")
	return "reset-token", "Mã hợp lệ", nil
}

func (f *fakeBackend) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	f.record("reset")
	return "Đổi mật khẩu thành công", nil
}

func (f *fakeBackend) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	f.record("verify-token")
	return f.verifyUser, f.verifyErr
}

func (f *fakeBackend) ListProducts(ctx context.Context, token string) ([]models.Product, error) {
	f.record("list-products")
	if f.listProducts != nil {
		return f.listProducts(ctx)
	}
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeBackend) CreateProduct(ctx context.Context, token string, input models.ProductInput) (*models.Product, error) {
	f.record("create-product")
	return &models.Product{ID: fmt.Sprintf("p-%d", f.count("create-product")), Name: input.Name, Price: input.Price, Image: input.Image}, nil
}

func (f *fakeBackend) UpdateProduct(ctx context.Context, token, id string, input models.ProductInput) (*models.Product, error) {
	f.record("update-product")
	return &models.Product{ID: id, Name: input.Name, Price: input.Price, Image: input.Image}, nil
}

func (f *fakeBackend) DeleteProduct(ctx context.Context, token, id string) (string, error) {
	f.record("delete-product")
	return "Đã xóa sản phẩm", nil
}

func (f *fakeBackend) CreateInvoice(ctx context.Context, token string, req models.CreateReceiptRequest) (*models.Receipt, error) {
	f.record("create-invoice")
	if f.createStarted != nil {
		f.createStarted <- struct{}{}
	}
	if f.createRelease != nil {
		<-f.createRelease
	}
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return &models.Receipt{
		ID:            fmt.Sprintf("inv-%d", len(f.created)),
		InvoiceNumber: fmt.Sprintf("HD%03d", len(f.created)),
		Products:      req.Products,
		UserID:        req.UserID,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		Note:          req.Note,
		TotalAmount:   req.TotalAmount,
		Date:          time.Now(),
	}, nil
}

func (f *fakeBackend) ListInvoices(ctx context.Context, token string) ([]models.Receipt, error) {
	f.record("list-invoices")
	return append([]models.Receipt(nil), f.invoices...), nil
}

func (f *fakeBackend) GetInvoice(ctx context.Context, token, id string) (*models.Receipt, error) {
	f.record("get-invoice")
	for _, r := range f.invoices {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, &apiclient.APIError{Status: 404, Message: "Không tìm thấy hóa đơn"}
}

func (f *fakeBackend) DeleteInvoice(ctx context.Context, token, id string) (string, error) {
	f.record("delete-invoice")
	return "Đã xóa hóa đơn", nil
}

func (f *fakeBackend) ListAuditLogs(ctx context.Context, token string) ([]models.AuditLog, error) {
	f.record("list-audit")
	return f.auditLogs, nil
}

type fakeQR struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (q *fakeQR) Generate(ctx context.Context, amount int64, invoiceNumber string) (*vietqr.QRData, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.err != nil {
		return nil, q.err
	}
	return &vietqr.QRData{QRDataURL: fmt.Sprintf("data:image/png;base64,%s-%d", invoiceNumber, amount)}, nil
}

func (q *fakeQR) BankInfo() vietqr.BankInfo {
	return vietqr.BankInfo{BankName: "Vietcombank", AccountName: "LAM TIEU MINH", AccountNumber: "1030979625"}
}

func (q *fakeQR) TransferContent(invoiceNumber string) string {
	return "Thanh toan Sukem Store - " + invoiceNumber
}

func (q *fakeQR) setErr(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.err = err
}

func (q *fakeQR) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

type fakeMirror struct {
	mu       sync.Mutex
	saved    map[string]models.Receipt
	existing []models.Receipt
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{saved: make(map[string]models.Receipt)}
}

func (m *fakeMirror) SaveReceipts(ctx context.Context, receipts []models.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range receipts {
		m.saved[r.ID] = r
	}
	return nil
}

func (m *fakeMirror) ListReceipts(ctx context.Context) ([]models.Receipt, error) {
	return m.existing, nil
}

func (m *fakeMirror) DeleteReceipt(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, id)
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	created []*models.InvoiceCreatedEvent
	deleted []*models.InvoiceDeletedEvent
}

func (p *fakePublisher) PublishInvoiceCreated(ctx context.Context, event *models.InvoiceCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
	return nil
}

func (p *fakePublisher) PublishInvoiceDeleted(ctx context.Context, event *models.InvoiceDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, event)
	return nil
}

type harness struct {
	backend  *fakeBackend
	tokens   *MemoryTokenStore
	auth     *AuthService
	register *Register
	receipts *ReceiptService
	checkout *CheckoutService
	qr       *fakeQR
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()

	h := &harness{
		backend:  newFakeBackend(),
		tokens:   NewMemoryTokenStore(),
		register: NewRegister(WithRemoveDebounce(0), WithComponentID("receipt-test")),
		qr:       &fakeQR{},
	}
	h.auth = NewAuthService(h.backend, h.tokens)
	h.receipts = NewReceiptService(h.backend, h.auth, nil, nil, "terminal-test")
	h.checkout = NewCheckoutService(h.register, h.receipts, h.auth, h.qr)

	if loggedIn {
		_, err := h.auth.Login(context.Background(), "cashier@sukem.vn", "secret")
		require.NoError(t, err)
		h.backend.calls = make(map[string]int)
	}
	return h
}

var (
	productA = models.Product{ID: "A", Name: "Trà sữa", Price: 10000, Image: "a.png"}
	productB = models.Product{ID: "B", Name: "Bánh mì", Price: 20000, Image: "b.png"}
	productC = models.Product{ID: "C", Name: "Cà phê", Price: 15000, Image: "c.png"}
)

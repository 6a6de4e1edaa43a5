package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"pos-terminal/internal/models"
	"pos-terminal/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRemoveDebounce = 10 * time.Millisecond

// CartFeeder lets the product grid push items into whichever cart is active.
type CartFeeder interface {
	AddToActiveCart(product models.Product) (models.Cart, error)
}

// RegisterSnapshot is a deep copy of the register for rendering.
type RegisterSnapshot struct {
	Carts       []models.Cart `json:"carts"`
	ActiveIndex int           `json:"activeIndex"`
}

// Register is the in-memory set of open carts. Tab 0 is never closed.
type Register struct {
	componentID    string
	removeDebounce time.Duration
	now            func() time.Time
	logger         *zap.Logger

	mu          sync.Mutex
	carts       []*models.Cart
	active      int
	lastID      int
	removing    bool
	removeTimer *time.Timer
}

type RegisterOption func(*Register)

// WithRemoveDebounce sets the window in which repeated line removals are ignored.
func WithRemoveDebounce(d time.Duration) RegisterOption {
	return func(r *Register) { r.removeDebounce = d }
}

func WithClock(now func() time.Time) RegisterOption {
	return func(r *Register) { r.now = now }
}

func WithComponentID(id string) RegisterOption {
	return func(r *Register) { r.componentID = id }
}

// NewRegister creates a register with one empty cart.
func NewRegister(opts ...RegisterOption) *Register {
	r := &Register{
		componentID:    "receipt-" + uuid.New().String()[:7],
		removeDebounce: defaultRemoveDebounce,
		now:            time.Now,
		logger:         util.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.carts = []*models.Cart{r.newCartLocked()}
	util.OpenCarts.Set(1)
	return r
}

func (r *Register) ComponentID() string {
	return r.componentID
}

// newCartLocked allocates the next id. Ids are never reused, so invoice numbers stay unique.
func (r *Register) newCartLocked() *models.Cart {
	r.lastID++
	return &models.Cart{
		ID:            r.lastID,
		Items:         []models.LineItem{},
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.PaymentStatusUnpaid,
		InvoiceNumber: fmt.Sprintf("%s-%d", r.componentID, r.lastID),
		Date:          r.now(),
	}
}

// AddToActiveCart appends product with quantity 1. A product already in the cart is left as is.
func (r *Register) AddToActiveCart(product models.Product) (models.Cart, error) {
	if strings.TrimSpace(product.ID) == "" {
		return models.Cart{}, validationf("Sản phẩm không hợp lệ")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[r.active]
	if cart.CheckingOut {
		return cloneCart(cart), ErrCheckoutInProgress
	}
	for _, item := range cart.Items {
		if item.ProductID == product.ID {
			return cloneCart(cart), nil
		}
	}

	cart.Items = append(cart.Items, models.LineItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    1,
		Image:       product.Image,
		Total:       product.Price,
	})
	recomputeTotal(cart)
	util.CartOperationsTotal.WithLabelValues("add").Inc()
	return cloneCart(cart), nil
}

func (r *Register) IncreaseQuantity(index int) (models.Cart, error) {
	return r.editItem(index, "increase", func(item *models.LineItem) {
		item.Quantity++
	})
}

// DecreaseQuantity floors at 1; removing a line is RemoveItem's job.
func (r *Register) DecreaseQuantity(index int) (models.Cart, error) {
	return r.editItem(index, "decrease", func(item *models.LineItem) {
		if item.Quantity > 1 {
			item.Quantity--
		}
	})
}

func (r *Register) editItem(index int, op string, edit func(*models.LineItem)) (models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[r.active]
	if cart.CheckingOut {
		return cloneCart(cart), ErrCheckoutInProgress
	}
	if index < 0 || index >= len(cart.Items) {
		return cloneCart(cart), validationf("Không tìm thấy sản phẩm ở vị trí %d", index)
	}

	edit(&cart.Items[index])
	recomputeTotal(cart)
	util.CartOperationsTotal.WithLabelValues(op).Inc()
	return cloneCart(cart), nil
}

// RemoveItem deletes the line at index. Removals arriving inside the debounce window
// after an accepted one are ignored; applied reports which case happened.
func (r *Register) RemoveItem(index int) (cart models.Cart, applied bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := r.carts[r.active]
	if active.CheckingOut {
		return cloneCart(active), false, ErrCheckoutInProgress
	}
	if r.removing {
		util.CartOperationsTotal.WithLabelValues("remove_debounced").Inc()
		return cloneCart(active), false, nil
	}
	if index < 0 || index >= len(active.Items) {
		return cloneCart(active), false, validationf("Không tìm thấy sản phẩm ở vị trí %d", index)
	}

	active.Items = append(active.Items[:index], active.Items[index+1:]...)
	recomputeTotal(active)
	util.CartOperationsTotal.WithLabelValues("remove").Inc()

	if r.removeDebounce > 0 {
		r.removing = true
		if r.removeTimer != nil {
			r.removeTimer.Stop()
		}
		r.removeTimer = time.AfterFunc(r.removeDebounce, func() {
			r.mu.Lock()
			r.removing = false
			r.mu.Unlock()
		})
	}
	return cloneCart(active), true, nil
}

// NewCart opens a new tab and makes it active.
func (r *Register) NewCart() models.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.newCartLocked()
	r.carts = append(r.carts, cart)
	r.active = len(r.carts) - 1
	util.OpenCarts.Set(float64(len(r.carts)))
	util.CartOperationsTotal.WithLabelValues("new_cart").Inc()

	r.logger.Debug("Cart opened", zap.String("invoice_number", cart.InvoiceNumber))
	return cloneCart(cart)
}

// CloseCart removes the tab at index and keeps the active index on a valid tab.
// Index 0 is a no-op; closed reports whether a tab was removed.
func (r *Register) CloseCart(index int) (closedID int, closed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index == 0 {
		return 0, false, nil
	}
	if index < 0 || index >= len(r.carts) {
		return 0, false, validationf("Không tìm thấy hóa đơn ở vị trí %d", index)
	}
	if r.carts[index].CheckingOut {
		return 0, false, ErrCheckoutInProgress
	}

	closedID = r.carts[index].ID
	r.carts = append(r.carts[:index], r.carts[index+1:]...)
	switch {
	case r.active > index:
		r.active--
	case r.active == index:
		r.active = index - 1
	}

	util.OpenCarts.Set(float64(len(r.carts)))
	util.CartOperationsTotal.WithLabelValues("close_cart").Inc()
	return closedID, true, nil
}

func (r *Register) SelectCart(index int) (models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.carts) {
		return models.Cart{}, validationf("Không tìm thấy hóa đơn ở vị trí %d", index)
	}
	r.active = index
	return cloneCart(r.carts[index]), nil
}

func (r *Register) SetNote(note string) (models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[r.active]
	if cart.CheckingOut {
		return cloneCart(cart), ErrCheckoutInProgress
	}
	cart.Note = note
	return cloneCart(cart), nil
}

func (r *Register) SetPaymentMethod(method models.PaymentMethod) (models.Cart, error) {
	if !method.Valid() {
		return models.Cart{}, validationf("Phương thức thanh toán không hợp lệ: %s", method)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[r.active]
	if cart.CheckingOut {
		return cloneCart(cart), ErrCheckoutInProgress
	}
	cart.PaymentMethod = method
	return cloneCart(cart), nil
}

func (r *Register) Snapshot() RegisterSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := RegisterSnapshot{Carts: make([]models.Cart, len(r.carts)), ActiveIndex: r.active}
	for i, c := range r.carts {
		snap.Carts[i] = cloneCart(c)
	}
	return snap
}

func (r *Register) ActiveCart() models.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneCart(r.carts[r.active])
}

// beginCheckout marks the cart as checking-out and returns what is about to be persisted.
func (r *Register) beginCheckout(cartID int) (models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.cartByIDLocked(cartID)
	if cart == nil {
		return models.Cart{}, validationf("Không tìm thấy hóa đơn")
	}
	if cart.CheckingOut {
		return cloneCart(cart), ErrCheckoutInProgress
	}
	if len(cart.Items) == 0 {
		return cloneCart(cart), ErrEmptyCart
	}
	cart.CheckingOut = true
	return cloneCart(cart), nil
}

// finishCheckout clears the checking-out mark. On success the cart keeps its id,
// invoice number and tab but starts over empty.
func (r *Register) finishCheckout(cartID int, paid bool) models.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.cartByIDLocked(cartID)
	if cart == nil {
		return models.Cart{}
	}
	cart.CheckingOut = false
	if paid {
		cart.Items = []models.LineItem{}
		cart.Note = ""
		cart.PaymentMethod = models.PaymentMethodCash
		cart.PaymentStatus = models.PaymentStatusUnpaid
		cart.TotalAmount = 0
		cart.Date = r.now()
	}
	return cloneCart(cart)
}

func (r *Register) cartByIDLocked(id int) *models.Cart {
	for _, c := range r.carts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func recomputeTotal(cart *models.Cart) {
	var total int64
	for i := range cart.Items {
		item := &cart.Items[i]
		item.Total = int64(item.Quantity) * item.Price
		total += item.Total
	}
	cart.TotalAmount = total
}

func cloneCart(c *models.Cart) models.Cart {
	out := *c
	out.Items = make([]models.LineItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

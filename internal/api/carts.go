package api

import (
	"errors"
	"net/http"

	"pos-terminal/internal/models"
	"pos-terminal/internal/service"

	"github.com/gin-gonic/gin"
)

type registerView struct {
	service.RegisterSnapshot
	QR *service.QRSession `json:"qr,omitempty"`
}

func (h *Handler) registerView() registerView {
	view := registerView{RegisterSnapshot: h.register.Snapshot()}
	if qr, ok := h.checkout.ActiveQR(); ok {
		view.QR = qr
	}
	return view
}

func (h *Handler) listCarts(c *gin.Context) {
	respond(c, http.StatusOK, h.registerView(), nil)
}

func (h *Handler) newCart(c *gin.Context) {
	h.register.NewCart()
	respond(c, http.StatusCreated, h.registerView(), nil)
}

func (h *Handler) closeCart(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	if _, err := h.checkout.CloseCart(index); err != nil {
		fail(c, err, "Không thể đóng hóa đơn")
		return
	}
	respond(c, http.StatusOK, h.registerView(), nil)
}

func (h *Handler) selectCart(c *gin.Context) {
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Không thể chọn hóa đơn", "Dữ liệu không hợp lệ")
		return
	}
	if _, err := h.register.SelectCart(*req.Index); err != nil {
		fail(c, err, "Không thể chọn hóa đơn")
		return
	}
	respond(c, http.StatusOK, h.registerView(), nil)
}

func (h *Handler) setNote(c *gin.Context) {
	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Không thể lưu ghi chú", "Dữ liệu không hợp lệ")
		return
	}
	cart, err := h.register.SetNote(req.Note)
	if err != nil {
		fail(c, err, "Không thể lưu ghi chú")
		return
	}
	respond(c, http.StatusOK, cart, nil)
}

func (h *Handler) setPaymentMethod(c *gin.Context) {
	var req struct {
		PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Không thể đổi phương thức thanh toán", "Dữ liệu không hợp lệ")
		return
	}
	cart, err := h.register.SetPaymentMethod(req.PaymentMethod)
	if err != nil {
		fail(c, err, "Không thể đổi phương thức thanh toán")
		return
	}
	respond(c, http.StatusOK, cart, nil)
}

func (h *Handler) increaseQuantity(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	cart, err := h.register.IncreaseQuantity(index)
	if err != nil {
		fail(c, err, "Không thể cập nhật số lượng")
		return
	}
	respond(c, http.StatusOK, cart, nil)
}

func (h *Handler) decreaseQuantity(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	cart, err := h.register.DecreaseQuantity(index)
	if err != nil {
		fail(c, err, "Không thể cập nhật số lượng")
		return
	}
	respond(c, http.StatusOK, cart, nil)
}

func (h *Handler) removeItem(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	cart, applied, err := h.register.RemoveItem(index)
	if err != nil {
		fail(c, err, "Không thể xóa sản phẩm")
		return
	}
	respond(c, http.StatusOK, gin.H{"cart": cart, "applied": applied}, nil)
}

func (h *Handler) checkoutActive(c *gin.Context) {
	result, err := h.checkout.Checkout(c.Request.Context())
	if err != nil {
		h.checkoutFailed(c, err, result)
		return
	}
	if result.Status == service.CheckoutAwaitingTransfer {
		respond(c, http.StatusOK, result, &Notice{
			Status:      NoticeInfo,
			Title:       "Quét mã QR để thanh toán",
			Description: "Xác nhận sau khi đã nhận được chuyển khoản.",
		})
		return
	}
	respond(c, http.StatusOK, result, paidNotice(result))
}

func (h *Handler) retryQR(c *gin.Context) {
	session, err := h.checkout.RetryQR(c.Request.Context())
	if err != nil {
		var data any
		if session != nil {
			data = session
		}
		failWithData(c, err, "Không thể tải mã QR", data)
		return
	}
	respond(c, http.StatusOK, session, nil)
}

func (h *Handler) confirmQR(c *gin.Context) {
	result, err := h.checkout.ConfirmQRPayment(c.Request.Context())
	if err != nil {
		h.checkoutFailed(c, err, nil)
		return
	}
	respond(c, http.StatusOK, result, paidNotice(result))
}

func (h *Handler) closeQR(c *gin.Context) {
	h.checkout.CloseQR()
	respond(c, http.StatusOK, h.registerView(), nil)
}

func (h *Handler) checkoutFailed(c *gin.Context, err error, result *service.CheckoutResult) {
	if errors.Is(err, service.ErrUnauthenticated) {
		respond(c, http.StatusUnauthorized, nil, &Notice{
			Status:      NoticeWarning,
			Title:       "Bạn chưa đăng nhập!",
			Description: checkoutAuthPrompt,
		})
		return
	}
	var data any
	if result != nil {
		data = result
	}
	failWithData(c, err, "Lỗi thanh toán", data)
}

func paidNotice(result *service.CheckoutResult) *Notice {
	invoice := result.Cart.InvoiceNumber
	if result.Receipt != nil && result.Receipt.InvoiceNumber != "" {
		invoice = result.Receipt.InvoiceNumber
	}
	return success("Thanh toán thành công", "Hóa đơn "+invoice+" đã được tạo")
}

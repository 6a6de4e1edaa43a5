package api

import (
	"net/http"

	"pos-terminal/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listProducts(c *gin.Context) {
	if _, err := h.products.Fetch(c.Request.Context()); err != nil {
		fail(c, err, "Không thể tải sản phẩm")
		return
	}
	respond(c, http.StatusOK, h.products.Search(c.Query("q")), nil)
}

func (h *Handler) createProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Thêm sản phẩm thất bại", "Dữ liệu không hợp lệ")
		return
	}

	product, err := h.products.Create(c.Request.Context(), input)
	if err != nil {
		fail(c, err, "Thêm sản phẩm thất bại")
		return
	}
	respond(c, http.StatusCreated, product, success("Thêm sản phẩm thành công", product.Name))
}

func (h *Handler) updateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Cập nhật sản phẩm thất bại", "Dữ liệu không hợp lệ")
		return
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		fail(c, err, "Cập nhật sản phẩm thất bại")
		return
	}
	respond(c, http.StatusOK, product, success("Cập nhật sản phẩm thành công", product.Name))
}

func (h *Handler) deleteProduct(c *gin.Context) {
	message, err := h.products.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Xóa sản phẩm thất bại")
		return
	}
	respond(c, http.StatusOK, nil, success("Xóa sản phẩm thành công", message))
}

// addToCart pushes a catalog product into the active cart.
func (h *Handler) addToCart(c *gin.Context) {
	id := c.Param("id")
	product, ok := h.products.Get(id)
	if !ok {
		if _, err := h.products.Fetch(c.Request.Context()); err != nil {
			fail(c, err, "Không thể tải sản phẩm")
			return
		}
		product, ok = h.products.Get(id)
	}
	if !ok {
		respond(c, http.StatusNotFound, nil, &Notice{Status: NoticeWarning, Title: "Không tìm thấy sản phẩm"})
		return
	}

	cart, err := h.feeder.AddToActiveCart(product)
	if err != nil {
		fail(c, err, "Không thể thêm vào hóa đơn")
		return
	}
	respond(c, http.StatusOK, cart, nil)
}

package api

import (
	"net/http"

	"pos-terminal/internal/models"
	"pos-terminal/internal/reporting"

	"github.com/gin-gonic/gin"
)

// reportReceipts returns the cached history, refreshing it first when asked
// to or when nothing has been loaded yet.
func (h *Handler) reportReceipts(c *gin.Context) ([]models.Receipt, error) {
	receipts := h.receipts.List()
	if c.Query("refresh") == "true" || len(receipts) == 0 {
		return h.receipts.Fetch(c.Request.Context())
	}
	return receipts, nil
}

func (h *Handler) revenueReport(c *gin.Context) {
	filter, err := reporting.ParseFilter(c.Query("filter"))
	if err != nil {
		fail(c, err, "Không thể thống kê doanh thu")
		return
	}
	receipts, err := h.reportReceipts(c)
	if err != nil {
		fail(c, err, "Không thể thống kê doanh thu")
		return
	}
	respond(c, http.StatusOK, reporting.Summarize(receipts, filter, h.now()), nil)
}

func (h *Handler) hotProducts(c *gin.Context) {
	receipts, err := h.reportReceipts(c)
	if err != nil {
		fail(c, err, "Không thể tải sản phẩm bán chạy")
		return
	}
	respond(c, http.StatusOK, reporting.HotProducts(receipts, h.now()), nil)
}

func (h *Handler) revenueChart(c *gin.Context) {
	filter, err := reporting.ParseFilter(c.Query("filter"))
	if err != nil {
		fail(c, err, "Không thể tải biểu đồ")
		return
	}
	receipts, err := h.reportReceipts(c)
	if err != nil {
		fail(c, err, "Không thể tải biểu đồ")
		return
	}
	respond(c, http.StatusOK, reporting.BuildChart(receipts, filter, h.now()), nil)
}

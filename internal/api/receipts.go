package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listReceipts refreshes the history and returns it newest first.
func (h *Handler) listReceipts(c *gin.Context) {
	if _, err := h.receipts.Fetch(c.Request.Context()); err != nil {
		fail(c, err, "Không thể tải lịch sử giao dịch")
		return
	}
	respond(c, http.StatusOK, h.receipts.History(), nil)
}

func (h *Handler) getReceipt(c *gin.Context) {
	receipt, err := h.receipts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Không thể tải hóa đơn")
		return
	}
	respond(c, http.StatusOK, receipt, nil)
}

func (h *Handler) deleteReceipt(c *gin.Context) {
	message, err := h.receipts.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Xóa hóa đơn thất bại")
		return
	}
	if message == "" {
		message = "Hóa đơn đã được xóa"
	}
	respond(c, http.StatusOK, nil, success("Xóa hóa đơn thành công", message))
}

func (h *Handler) listAuditLogs(c *gin.Context) {
	entries, err := h.audit.Fetch(c.Request.Context())
	if err != nil {
		fail(c, err, "Không thể tải nhật ký")
		return
	}
	respond(c, http.StatusOK, entries, nil)
}

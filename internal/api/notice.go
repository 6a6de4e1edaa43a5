package api

import (
	"errors"
	"net/http"

	"pos-terminal/internal/apiclient"
	"pos-terminal/internal/reporting"
	"pos-terminal/internal/service"
	"pos-terminal/internal/util"
	"pos-terminal/internal/vietqr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NoticeStatus string

const (
	NoticeSuccess NoticeStatus = "success"
	NoticeWarning NoticeStatus = "warning"
	NoticeError   NoticeStatus = "error"
	NoticeInfo    NoticeStatus = "info"
)

// Notice is the toast the UI shows for an outcome.
type Notice struct {
	Status      NoticeStatus `json:"status"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
}

type response struct {
	Success bool    `json:"success"`
	Data    any     `json:"data,omitempty"`
	Notice  *Notice `json:"notice,omitempty"`
}

const (
	genericFailure     = "Đã có lỗi xảy ra, vui lòng thử lại."
	connectionFailure  = "Không thể kết nối server."
	loginPrompt        = "Vui lòng đăng nhập để tiếp tục."
	checkoutAuthPrompt = "Cần đăng nhập để tạo hóa đơn."
)

func respond(c *gin.Context, status int, data any, notice *Notice) {
	c.JSON(status, response{Success: status < http.StatusBadRequest, Data: data, Notice: notice})
}

func success(title, description string) *Notice {
	return &Notice{Status: NoticeSuccess, Title: title, Description: description}
}

// fail maps err to a status code and notice. title names the failed operation
// and is used when the error itself carries no better one.
func fail(c *gin.Context, err error, title string) {
	failWithData(c, err, title, nil)
}

func failWithData(c *gin.Context, err error, title string, data any) {
	status, notice := classify(err, title)
	if status >= http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	respond(c, status, data, notice)
}

func classify(err error, title string) (int, *Notice) {
	var (
		validation *service.ValidationError
		apiErr     *apiclient.APIError
		qrErr      *vietqr.ServiceError
	)

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, &Notice{
			Status:      NoticeWarning,
			Title:       "Giỏ hàng trống",
			Description: "Vui lòng thêm sản phẩm vào giỏ hàng trước khi thanh toán",
		}
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, &Notice{Status: NoticeWarning, Title: "Bạn chưa đăng nhập!", Description: loginPrompt}
	case errors.Is(err, service.ErrMissingUser):
		return http.StatusBadRequest, &Notice{
			Status:      NoticeError,
			Title:       "Lỗi thông tin người dùng",
			Description: "Không tìm thấy mã người dùng, vui lòng đăng nhập lại.",
		}
	case errors.Is(err, service.ErrCheckoutInProgress):
		return http.StatusConflict, &Notice{Status: NoticeWarning, Title: "Đang thanh toán", Description: "Hóa đơn này đang được thanh toán."}
	case errors.Is(err, service.ErrNoQRSession):
		return http.StatusConflict, &Notice{Status: NoticeWarning, Title: "Chưa có mã QR", Description: "Vui lòng tạo mã QR trước khi xác nhận thanh toán."}
	case errors.Is(err, service.ErrQRAmountChanged):
		return http.StatusConflict, &Notice{Status: NoticeWarning, Title: "Hóa đơn đã thay đổi", Description: "Tổng tiền đã thay đổi, vui lòng tạo lại mã QR."}
	case errors.As(err, &validation):
		return http.StatusBadRequest, &Notice{Status: NoticeWarning, Title: title, Description: validation.Message}
	case errors.Is(err, reporting.ErrUnknownFilter):
		return http.StatusBadRequest, &Notice{Status: NoticeWarning, Title: title, Description: "Bộ lọc không hợp lệ"}
	case errors.As(err, &qrErr):
		return http.StatusBadGateway, &Notice{Status: NoticeError, Title: "Không thể tải mã QR", Description: qrErr.Message}
	case errors.Is(err, vietqr.ErrUnavailable), errors.Is(err, vietqr.ErrNoData):
		return http.StatusBadGateway, &Notice{Status: NoticeError, Title: "Không thể tải mã QR", Description: "Vui lòng thử lại."}
	case errors.As(err, &apiErr):
		description := apiErr.Message
		if description == "" {
			description = genericFailure
		}
		status := http.StatusUnprocessableEntity
		switch {
		case apiErr.IsUnauthorized():
			status = http.StatusUnauthorized
		case apiErr.Status == http.StatusNotFound:
			status = http.StatusNotFound
		case apiErr.Status >= http.StatusInternalServerError:
			status = http.StatusBadGateway
		}
		return status, &Notice{Status: NoticeError, Title: title, Description: description}
	case errors.Is(err, apiclient.ErrUnavailable):
		return http.StatusBadGateway, &Notice{Status: NoticeError, Title: "Lỗi hệ thống", Description: connectionFailure}
	}
	return http.StatusInternalServerError, &Notice{Status: NoticeError, Title: "Lỗi hệ thống", Description: genericFailure}
}

func badRequest(c *gin.Context, title, description string) {
	respond(c, http.StatusBadRequest, nil, &Notice{Status: NoticeWarning, Title: title, Description: description})
}

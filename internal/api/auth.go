package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyResetCodeRequest struct {
	Email     string `json:"email"`
	ResetCode string `json:"resetCode"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Đăng nhập thất bại", "Dữ liệu không hợp lệ")
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err, "Đăng nhập thất bại")
		return
	}

	name := req.Email
	if user != nil {
		name = user.DisplayName()
	}
	respond(c, http.StatusOK, h.auth.Session(), success("Đăng nhập thành công", "Xin chào "+name))
}

func (h *Handler) registerAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Đăng ký thất bại", "Dữ liệu không hợp lệ")
		return
	}

	message, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		fail(c, err, "Đăng ký thất bại")
		return
	}
	respond(c, http.StatusCreated, nil, success("Đăng ký thành công", message))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		fail(c, err, "Đăng xuất thất bại")
		return
	}
	respond(c, http.StatusOK, h.auth.Session(), success("Đã đăng xuất", ""))
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Gửi mã thất bại", "Dữ liệu không hợp lệ")
		return
	}

	message, err := h.auth.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		fail(c, err, "Gửi mã thất bại")
		return
	}
	respond(c, http.StatusOK, nil, success("Đã gửi mã xác nhận", message))
}

func (h *Handler) verifyResetCode(c *gin.Context) {
	var req verifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Xác nhận mã thất bại", "Dữ liệu không hợp lệ")
		return
	}

	resetToken, message, err := h.auth.VerifyResetCode(c.Request.Context(), req.Email, req.ResetCode)
	if err != nil {
		fail(c, err, "Xác nhận mã thất bại")
		return
	}
	respond(c, http.StatusOK, gin.H{"resetToken": resetToken}, success("Mã xác nhận hợp lệ", message))
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Đặt lại mật khẩu thất bại", "Dữ liệu không hợp lệ")
		return
	}

	message, err := h.auth.ResetPassword(c.Request.Context(), req.ResetToken, req.NewPassword)
	if err != nil {
		fail(c, err, "Đặt lại mật khẩu thất bại")
		return
	}
	respond(c, http.StatusOK, nil, success("Đặt lại mật khẩu thành công", message))
}

// me re-checks the stored token, like a page load would.
func (h *Handler) me(c *gin.Context) {
	session, err := h.auth.CheckAuth(c.Request.Context())
	if err != nil {
		fail(c, err, "Lỗi xác thực")
		return
	}
	respond(c, http.StatusOK, session, nil)
}

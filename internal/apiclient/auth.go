package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"pos-terminal/internal/models"
)

// LoginResult carries the session established by a successful login.
type LoginResult struct {
	Token string
	User  *models.User
}

// RegisterRequest is the body of POST /api/authen/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token. User is nil when the backend omits it.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/authen/login",
		route:  "/api/authen/login",
		body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}

	result := &LoginResult{Token: env.Token}
	if user, ok := decodeUser(env.User); ok {
		result.User = user
	}
	return result, nil
}

// Register creates an account and returns the backend message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/authen/register",
		route:  "/api/authen/register",
		body:   req,
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ForgotPassword asks the backend to email a reset code.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/authen/forgot-password",
		route:  "/api/authen/forgot-password",
		body:   map[string]string{"email": email},
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// VerifyResetCode trades an emailed code for a reset token.
func (c *Client) VerifyResetCode(ctx context.Context, email, resetCode string) (resetToken, message string, err error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/authen/verify-reset-code",
		route:  "/api/authen/verify-reset-code",
		body:   map[string]string{"email": email, "resetCode": resetCode},
	})
	if err != nil {
		return "", "", err
	}
	return env.ResetToken, env.Message, nil
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/authen/reset-password",
		route:  "/api/authen/reset-password",
		body:   map[string]string{"resetToken": resetToken, "newPassword": newPassword},
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// VerifyToken checks a stored token and returns the user it belongs to.
func (c *Client) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	env, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/authen/verify-token",
		route:  "/api/authen/verify-token",
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	user, _ := decodeUser(env.User)
	return user, nil
}

func decodeUser(raw json.RawMessage) (*models.User, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false
	}
	return &user, true
}

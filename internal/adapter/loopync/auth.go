package loopync

import (
	"context"
	"net/url"
	"strconv"
)

// Signup регистрирует пользователя. 400 — handle или email заняты.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Response, error) {
	return c.post(ctx, "/auth/signup", nil, req)
}

// Login выполняет вход по email и паролю. 401 — неверные учётные данные.
func (c *Client) Login(ctx context.Context, email, password string) (*Response, error) {
	return c.post(ctx, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
}

// Me возвращает профиль владельца токена.
func (c *Client) Me(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/auth/me", nil)
}

// CheckHandle проверяет, свободен ли handle.
func (c *Client) CheckHandle(ctx context.Context, handle string) (*Response, error) {
	return c.get(ctx, "/auth/check-handle/"+escape(handle), nil)
}

// ForgotPassword запрашивает код сброса пароля.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*Response, error) {
	return c.post(ctx, "/auth/forgot-password", nil, map[string]string{"email": email})
}

// VerifyResetCode проверяет код сброса пароля.
func (c *Client) VerifyResetCode(ctx context.Context, email, code string) (*Response, error) {
	return c.post(ctx, "/auth/verify-reset-code", nil, map[string]string{
		"email": email,
		"code":  code,
	})
}

// ResetPassword устанавливает новый пароль по коду сброса.
func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) (*Response, error) {
	return c.post(ctx, "/auth/reset-password", nil, map[string]string{
		"email":       email,
		"code":        code,
		"newPassword": newPassword,
	})
}

// SearchUsers ищет пользователей по подстроке handle, имени или email.
// Запрос короче двух символов сервер возвращает пустым списком.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) (*Response, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.get(ctx, "/users/search", q)
}

// GetUser возвращает профиль пользователя по id.
func (c *Client) GetUser(ctx context.Context, userID string) (*Response, error) {
	return c.get(ctx, "/users/"+escape(userID), nil)
}

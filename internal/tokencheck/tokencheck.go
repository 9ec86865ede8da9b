// Package tokencheck разбирает JWT, выданный стендом, без проверки подписи:
// секрет стенда неизвестен, проверяются только содержательные claims.
package tokencheck

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClockSkew — допустимое расхождение часов клиента и стенда.
const ClockSkew = time.Minute

// Ошибки проверки claims.
var (
	ErrMalformed       = errors.New("токен не является JWT")
	ErrSubjectMismatch = errors.New("sub токена не совпадает с id пользователя")
	ErrExpired         = errors.New("срок действия токена истёк")
	ErrNoExpiry        = errors.New("в токене нет exp")
	ErrIssuedInFuture  = errors.New("iat токена в будущем")
)

// Claims — содержательные поля токена.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Algorithm string
}

// Inspect разбирает токен без проверки подписи.
// Стенд кладёт id пользователя в sub, а иногда в user_id.
func Inspect(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	out := &Claims{}
	if parsed.Method != nil {
		out.Algorithm = parsed.Method.Alg()
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		out.Subject = sub
	} else if uid, ok := claims["user_id"].(string); ok {
		out.Subject = uid
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out, nil
}

// Validate проверяет, что токен выдан userID, ещё действует и выдан не в будущем.
func (c *Claims) Validate(userID string, now time.Time) error {
	if c.Subject != userID {
		return fmt.Errorf("%w: %q != %q", ErrSubjectMismatch, c.Subject, userID)
	}
	if c.ExpiresAt.IsZero() {
		return ErrNoExpiry
	}
	if !c.ExpiresAt.After(now) {
		return fmt.Errorf("%w: exp %s", ErrExpired, c.ExpiresAt.UTC().Format(time.RFC3339))
	}
	if !c.IssuedAt.IsZero() && c.IssuedAt.After(now.Add(ClockSkew)) {
		return fmt.Errorf("%w: iat %s", ErrIssuedInFuture, c.IssuedAt.UTC().Format(time.RFC3339))
	}
	return nil
}

// TTL возвращает оставшееся время жизни токена.
func (c *Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Package urlutil предоставляет утилиты для безопасной работы с URL.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// MaskURL маскирует URL для безопасного логирования.
// Оставляет только scheme и host: path и query могут содержать токены.
// Пример: "https://hooks.slack.com/services/XXX/YYY" → "https://hooks.slack.com/***"
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***invalid-url***"
	}
	return u.Scheme + "://" + u.Host + "/***"
}

// SocketIOURL строит WebSocket URL Socket.IO (Engine.IO v4) по базовому URL API.
// Суффикс /api отбрасывается: сокет обслуживается с корня хоста.
// Пример: "https://host/api" → "wss://host/socket.io/?EIO=4&transport=websocket"
func SocketIOURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("разбор базового URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("неподдерживаемая схема %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("в URL %q нет хоста", baseURL)
	}
	path := strings.TrimSuffix(u.Path, "/")
	path = strings.TrimSuffix(path, "/api")
	u.Path = path + "/socket.io/"
	u.RawQuery = "EIO=4&transport=websocket"
	return u.String(), nil
}

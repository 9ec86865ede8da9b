package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/urlutil"
)

// TargetConfig описывает проверяемый стенд и учётные данные.
type TargetConfig struct {
	// BaseURL включает префикс /api.
	BaseURL   string        `yaml:"baseUrl" env:"LOOPCHECK_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"LOOPCHECK_TIMEOUT"`
	RateLimit float64       `yaml:"rateLimit" env:"LOOPCHECK_RATE_LIMIT"`
	RateBurst int           `yaml:"rateBurst" env:"LOOPCHECK_RATE_BURST"`
	UserAgent string        `yaml:"userAgent" env:"LOOPCHECK_USER_AGENT"`

	DemoEmail    string `yaml:"demoEmail" env:"LOOPCHECK_DEMO_EMAIL"`
	DemoPassword string `yaml:"demoPassword" env:"LOOPCHECK_DEMO_PASSWORD"`

	// PeerHandle ищется через /users/search; при неудаче используется PeerUserID.
	PeerHandle string `yaml:"peerHandle" env:"LOOPCHECK_PEER_HANDLE"`
	PeerUserID string `yaml:"peerUserId" env:"LOOPCHECK_PEER_USER_ID"`
	// StrangerUserID — пользователь, с которым демо не дружит.
	StrangerUserID string `yaml:"strangerUserId" env:"LOOPCHECK_STRANGER_USER_ID"`

	// Seed вызывает POST /seed перед логином. Стирает данные стенда.
	Seed bool `yaml:"seed" env:"LOOPCHECK_SEED"`

	// RealtimeURL переопределяет адрес Socket.IO, выведенный из BaseURL.
	RealtimeURL string `yaml:"realtimeUrl" env:"LOOPCHECK_REALTIME_URL"`
}

func getDefaultTargetConfig() *TargetConfig {
	return &TargetConfig{
		BaseURL:        constants.DefaultBaseURL,
		Timeout:        constants.DefaultTimeout,
		RateLimit:      constants.DefaultRateLimit,
		RateBurst:      constants.DefaultRateBurst,
		UserAgent:      constants.UserAgent,
		DemoEmail:      constants.DefaultDemoEmail,
		DemoPassword:   constants.DefaultDemoPassword,
		PeerHandle:     constants.DefaultPeerHandle,
		PeerUserID:     constants.DefaultPeerUserID,
		StrangerUserID: constants.DefaultStrangerUserID,
	}
}

// loadTargetConfig: YAML, затем env override, затем defaults для пустых полей.
func loadTargetConfig(l *slog.Logger, cfg *Config) (*TargetConfig, error) {
	targetConfig := getDefaultTargetConfig()
	if cfg.AppConfig != nil {
		mergeTargetConfig(targetConfig, &cfg.AppConfig.Target)
	}

	if err := cleanenv.ReadEnv(targetConfig); err != nil {
		return nil, err
	}

	l.Info("Target конфигурация загружена",
		slog.String("base_url", urlutil.MaskURL(targetConfig.BaseURL)),
		slog.String("demo_email", targetConfig.DemoEmail),
		slog.Bool("seed", targetConfig.Seed),
	)
	return targetConfig, nil
}

// mergeTargetConfig переносит непустые значения из YAML поверх defaults.
func mergeTargetConfig(dst, src *TargetConfig) {
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.Timeout > 0 {
		dst.Timeout = src.Timeout
	}
	if src.RateLimit > 0 {
		dst.RateLimit = src.RateLimit
	}
	if src.RateBurst > 0 {
		dst.RateBurst = src.RateBurst
	}
	if src.UserAgent != "" {
		dst.UserAgent = src.UserAgent
	}
	if src.DemoEmail != "" {
		dst.DemoEmail = src.DemoEmail
	}
	if src.DemoPassword != "" {
		dst.DemoPassword = src.DemoPassword
	}
	if src.PeerHandle != "" {
		dst.PeerHandle = src.PeerHandle
	}
	if src.PeerUserID != "" {
		dst.PeerUserID = src.PeerUserID
	}
	if src.StrangerUserID != "" {
		dst.StrangerUserID = src.StrangerUserID
	}
	dst.Seed = dst.Seed || src.Seed
	if src.RealtimeURL != "" {
		dst.RealtimeURL = src.RealtimeURL
	}
}

// validateTargetConfig проверяет обязательные параметры стенда.
func validateTargetConfig(tc *TargetConfig) error {
	u, err := url.Parse(tc.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("target: base url должен быть http(s) URL с host, получено %q", urlutil.MaskURL(tc.BaseURL))
	}
	if tc.Timeout <= 0 {
		return fmt.Errorf("target: timeout должен быть положительным")
	}
	if tc.RateLimit < 0 {
		return fmt.Errorf("target: rate limit не может быть отрицательным")
	}
	if tc.DemoEmail == "" || tc.DemoPassword == "" {
		return fmt.Errorf("target: demo email и password обязательны")
	}
	if tc.RealtimeURL != "" {
		ru, err := url.Parse(tc.RealtimeURL)
		if err != nil || (ru.Scheme != "ws" && ru.Scheme != "wss") {
			return fmt.Errorf("target: realtime url должен иметь схему ws или wss")
		}
	}
	return nil
}

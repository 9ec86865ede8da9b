package history

import (
	"context"

	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
)

// Open создаёт хранилище по конфигурации: NopStore при отключённой истории,
// иначе MSSQLStore с установленным соединением и созданными таблицами.
func Open(ctx context.Context, cfg *config.HistoryConfig, logger logging.Logger) (Store, error) {
	if cfg == nil || !cfg.Enabled {
		return NopStore{}, nil
	}

	store, err := NewMSSQLStore(Options{
		Server:   cfg.Server,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		Timeout:  cfg.Timeout,
		Encrypt:  cfg.Encrypt,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Connect(ctx); err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close() //nolint:errcheck // исходная ошибка важнее
		return nil, err
	}
	return store, nil
}

// Enabled сообщает, что store пишет историю по-настоящему.
func Enabled(store Store) bool {
	switch store.(type) {
	case nil, NopStore, UnavailableStore:
		return false
	default:
		return true
	}
}

// Unavailable возвращает ошибку открытия, если история включена,
// но база не открылась. Для остальных хранилищ возвращает nil.
func Unavailable(store Store) error {
	if u, ok := store.(UnavailableStore); ok {
		if u.Err == nil {
			return ErrNotConnected
		}
		return u.Err
	}
	return nil
}

package history

import (
	"context"
	"time"

	"github.com/Kargones/loopcheck/internal/scenario"
)

// RunRecord — строка истории: один прогон со счётчиками.
type RunRecord struct {
	RunID       string        `json:"run_id"`
	BaseURL     string        `json:"base_url"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Aborted     bool          `json:"aborted"`
	AbortReason string        `json:"abort_reason,omitempty"`
}

// OK сообщает, что в прогоне не было падений.
func (r RunRecord) OK() bool {
	return r.Failed == 0
}

// Store сохраняет и читает историю прогонов.
type Store interface {
	// Save записывает прогон и его шаги атомарно.
	Save(ctx context.Context, report *scenario.Report) error
	// Recent возвращает последние прогоны, новые первыми.
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}

// RecordFromReport собирает строку истории из отчёта.
func RecordFromReport(report *scenario.Report) RunRecord {
	return RunRecord{
		RunID:       report.RunID,
		BaseURL:     report.BaseURL,
		StartedAt:   report.StartedAt,
		Duration:    report.Duration,
		Passed:      report.Passed(),
		Failed:      report.Failed(),
		Skipped:     report.Skipped(),
		Aborted:     report.Aborted,
		AbortReason: report.AbortReason,
	}
}

// NopStore — хранилище для отключённой истории: Save ничего не делает,
// Recent возвращает пустой список.
type NopStore struct{}

var _ Store = NopStore{}

// Save ничего не делает.
func (NopStore) Save(context.Context, *scenario.Report) error { return nil }

// Recent возвращает пустой список.
func (NopStore) Recent(context.Context, int) ([]RunRecord, error) { return nil, nil }

// Close ничего не делает.
func (NopStore) Close() error { return nil }

// UnavailableStore заменяет включённую историю, база которой не открылась.
// Save ничего не делает, Recent возвращает ошибку открытия.
type UnavailableStore struct {
	Err error
}

var _ Store = UnavailableStore{}

// Save ничего не делает: прогон не зависит от доступности истории.
func (UnavailableStore) Save(context.Context, *scenario.Report) error { return nil }

// Recent возвращает ошибку открытия хранилища.
func (s UnavailableStore) Recent(context.Context, int) ([]RunRecord, error) { return nil, s.Err }

// Close ничего не делает.
func (UnavailableStore) Close() error { return nil }

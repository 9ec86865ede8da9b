package history

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
	"unicode/utf16"

	// регистрирует драйвер sqlserver
	_ "github.com/denisenkom/go-mssqldb"

	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/scenario"
)

const (
	driverName      = "sqlserver"
	defaultPort     = 1433
	defaultDatabase = "loopcheck"
	defaultTimeout  = 30 * time.Second
	// maxTextLength ограничивает message и details шага при записи.
	maxTextLength = 4000
	// maxReasonLength ограничивает причину прерывания прогона.
	maxReasonLength = 512
)

// Compile-time проверка реализации интерфейса.
var _ Store = (*MSSQLStore)(nil)

// Options — параметры подключения к MSSQL.
type Options struct {
	// Server — адрес сервера MSSQL.
	Server string
	// Port — порт сервера (по умолчанию 1433).
	Port     int
	User     string
	Password string
	// Database — база, в которой живут таблицы истории.
	Database string
	// Timeout — таймаут подключения и отдельного запроса.
	Timeout time.Duration
	// Encrypt — TLS к серверу.
	Encrypt bool
	Logger  logging.Logger
}

// MSSQLStore — Store поверх database/sql и драйвера go-mssqldb.
type MSSQLStore struct {
	db     *sql.DB
	opts   Options
	logger logging.Logger
}

// NewMSSQLStore проверяет параметры и создаёт хранилище.
// Подключение устанавливается в Connect.
func NewMSSQLStore(opts Options) (*MSSQLStore, error) {
	if opts.Server == "" {
		return nil, newError(ErrHistoryConnect, "server обязателен", nil)
	}
	if opts.Port == 0 {
		opts.Port = defaultPort
	}
	if opts.Port < 1 || opts.Port > 65535 {
		return nil, newError(ErrHistoryConnect, fmt.Sprintf("некорректный порт %d", opts.Port), nil)
	}
	if opts.Database == "" {
		opts.Database = defaultDatabase
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return &MSSQLStore{opts: opts, logger: opts.Logger}, nil
}

// NewMSSQLStoreWithDB создаёт хранилище поверх готового соединения.
func NewMSSQLStoreWithDB(db *sql.DB, logger logging.Logger) *MSSQLStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &MSSQLStore{
		db:     db,
		opts:   Options{Timeout: defaultTimeout, Database: defaultDatabase, Port: defaultPort},
		logger: logger,
	}
}

// DSN собирает строку подключения в URL-формате go-mssqldb.
// Спецсимволы в логине и пароле экранируются через url.UserPassword.
func (s *MSSQLStore) DSN() string {
	encrypt := "true"
	if !s.opts.Encrypt {
		encrypt = "disable"
	}
	q := url.Values{}
	q.Set("database", s.opts.Database)
	q.Set("encrypt", encrypt)
	q.Set("connection timeout", strconv.Itoa(int(s.opts.Timeout.Seconds())))

	u := &url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(s.opts.User, s.opts.Password),
		Host:     net.JoinHostPort(s.opts.Server, strconv.Itoa(s.opts.Port)),
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Connect открывает соединение и проверяет его ping.
func (s *MSSQLStore) Connect(ctx context.Context) error {
	db, err := sql.Open(driverName, s.DSN())
	if err != nil {
		return newError(ErrHistoryConnect, "открытие соединения", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // исходная ошибка важнее
		if ctx.Err() != nil {
			return newError(ErrHistoryConnect, "контекст отменён во время ping", ctx.Err())
		}
		return newError(ErrHistoryConnect, "ping не прошёл", err)
	}
	s.db = db
	s.logger.Debug("Подключение к истории установлено",
		"server", s.opts.Server,
		"database", s.opts.Database,
	)
	return nil
}

// Ping проверяет доступность сервера.
func (s *MSSQLStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return newError(ErrHistoryConnect, "ping", ErrNotConnected)
	}
	if err := s.db.PingContext(ctx); err != nil {
		return newError(ErrHistoryConnect, "ping", err)
	}
	return nil
}

// Close закрывает соединение. Повторный вызов безопасен.
func (s *MSSQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

const createRunsTable = `
IF OBJECT_ID(N'dbo.loopcheck_runs', N'U') IS NULL
CREATE TABLE dbo.loopcheck_runs (
	run_id       NVARCHAR(64)  NOT NULL PRIMARY KEY,
	base_url     NVARCHAR(512) NOT NULL,
	started_at   DATETIME2     NOT NULL,
	duration_ms  BIGINT        NOT NULL,
	passed       INT           NOT NULL,
	failed       INT           NOT NULL,
	skipped      INT           NOT NULL,
	aborted      BIT           NOT NULL,
	abort_reason NVARCHAR(512) NULL
);`

const createStepsTable = `
IF OBJECT_ID(N'dbo.loopcheck_steps', N'U') IS NULL
CREATE TABLE dbo.loopcheck_steps (
	run_id      NVARCHAR(64)   NOT NULL,
	seq         INT            NOT NULL,
	suite       NVARCHAR(64)   NOT NULL,
	step        NVARCHAR(128)  NOT NULL,
	status      NVARCHAR(8)    NOT NULL,
	message     NVARCHAR(4000) NULL,
	details     NVARCHAR(4000) NULL,
	started_at  DATETIME2      NOT NULL,
	duration_ms BIGINT         NOT NULL,
	CONSTRAINT pk_loopcheck_steps PRIMARY KEY (run_id, seq),
	CONSTRAINT fk_loopcheck_steps_run FOREIGN KEY (run_id) REFERENCES dbo.loopcheck_runs (run_id) ON DELETE CASCADE
);`

// EnsureSchema создаёт таблицы истории, если их нет.
func (s *MSSQLStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return newError(ErrHistorySchema, "создание таблиц", ErrNotConnected)
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	for _, stmt := range []string{createRunsTable, createStepsTable} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return newError(ErrHistorySchema, "создание таблиц", err)
		}
	}
	return nil
}

const insertRun = `INSERT INTO dbo.loopcheck_runs
	(run_id, base_url, started_at, duration_ms, passed, failed, skipped, aborted, abort_reason)
	VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9)`

const insertStep = `INSERT INTO dbo.loopcheck_steps
	(run_id, seq, suite, step, status, message, details, started_at, duration_ms)
	VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9)`

// Save записывает прогон и его шаги в одной транзакции.
func (s *MSSQLStore) Save(ctx context.Context, report *scenario.Report) (err error) {
	if s.db == nil {
		return newError(ErrHistorySave, "запись прогона", ErrNotConnected)
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(ErrHistorySave, "начало транзакции", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn("Ошибка отката транзакции истории", "error", rbErr.Error())
			}
		}
	}()

	rec := RecordFromReport(report)
	if _, err = tx.ExecContext(ctx, insertRun,
		rec.RunID,
		rec.BaseURL,
		rec.StartedAt.UTC(),
		rec.Duration.Milliseconds(),
		rec.Passed,
		rec.Failed,
		rec.Skipped,
		rec.Aborted,
		nullString(truncate(rec.AbortReason, maxReasonLength)),
	); err != nil {
		return newError(ErrHistorySave, "запись прогона", err)
	}

	for i, res := range report.Results {
		if _, err = tx.ExecContext(ctx, insertStep,
			rec.RunID,
			i+1,
			res.Suite,
			res.Step,
			string(res.Status),
			nullString(truncate(res.Message, maxTextLength)),
			nullString(truncate(res.Details, maxTextLength)),
			res.StartedAt.UTC(),
			res.Duration.Milliseconds(),
		); err != nil {
			return newError(ErrHistorySave, fmt.Sprintf("запись шага %s", res.FullName()), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return newError(ErrHistorySave, "фиксация транзакции", err)
	}
	s.logger.Debug("Прогон записан в историю", "run_id", rec.RunID, "steps", len(report.Results))
	return nil
}

const selectRecent = `SELECT TOP (@p1)
	run_id, base_url, started_at, duration_ms, passed, failed, skipped, aborted, abort_reason
	FROM dbo.loopcheck_runs
	ORDER BY started_at DESC`

// Recent возвращает последние limit прогонов.
func (s *MSSQLStore) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if s.db == nil {
		return nil, newError(ErrHistoryQuery, "чтение истории", ErrNotConnected)
	}
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, selectRecent, limit)
	if err != nil {
		return nil, newError(ErrHistoryQuery, "чтение истории", err)
	}
	defer rows.Close() //nolint:errcheck // ошибка чтения проверяется через rows.Err

	var out []RunRecord
	for rows.Next() {
		var (
			rec        RunRecord
			durationMs int64
			reason     sql.NullString
		)
		if err := rows.Scan(
			&rec.RunID,
			&rec.BaseURL,
			&rec.StartedAt,
			&durationMs,
			&rec.Passed,
			&rec.Failed,
			&rec.Skipped,
			&rec.Aborted,
			&reason,
		); err != nil {
			return nil, newError(ErrHistoryQuery, "разбор строки истории", err)
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.AbortReason = reason.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(ErrHistoryQuery, "чтение истории", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// truncate обрезает строку до n кодовых единиц UTF-16: в них NVARCHAR
// считает длину. Суррогатная пара не разделяется.
func truncate(s string, n int) string {
	units := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if units+w > n {
			return s[:i]
		}
		units += w
	}
	return s
}

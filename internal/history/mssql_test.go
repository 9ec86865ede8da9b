package history

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/scenario"
)

func newMockStore(t *testing.T) (*MSSQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "ошибка создания sqlmock")
	t.Cleanup(func() { _ = db.Close() })
	return NewMSSQLStoreWithDB(db, nil), mock
}

func sampleReport() *scenario.Report {
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return &scenario.Report{
		RunID:     "run-1",
		BaseURL:   "https://loopync.example/api",
		StartedAt: started,
		Duration:  3 * time.Second,
		Results: []scenario.StepResult{
			{Suite: "auth", Step: "login", Status: scenario.StatusPass, StartedAt: started, Duration: time.Second},
			{Suite: "calls", Step: "initiate", Status: scenario.StatusFail, Message: "403", StartedAt: started, Duration: 2 * time.Second},
		},
	}
}

func TestNewMSSQLStore(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantErr  bool
		wantPort int
		wantDB   string
	}{
		{name: "defaults", opts: Options{Server: "db"}, wantPort: 1433, wantDB: "loopcheck"},
		{name: "explicit", opts: Options{Server: "db", Port: 14330, Database: "qa"}, wantPort: 14330, wantDB: "qa"},
		{name: "без сервера", opts: Options{}, wantErr: true},
		{name: "плохой порт", opts: Options{Server: "db", Port: 70000}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMSSQLStore(tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrHistoryConnect, apperrors.CodeOf(err, ""))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, s.opts.Port)
			assert.Equal(t, tt.wantDB, s.opts.Database)
			assert.Equal(t, defaultTimeout, s.opts.Timeout)
		})
	}
}

func TestDSN_EscapesCredentials(t *testing.T) {
	s, err := NewMSSQLStore(Options{
		Server:   "db.local",
		User:     "svc;user",
		Password: "p@ss;word=1",
		Database: "qa",
		Timeout:  15 * time.Second,
	})
	require.NoError(t, err)

	u, err := url.Parse(s.DSN())
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "db.local:1433", u.Host)
	assert.Equal(t, "svc;user", u.User.Username())
	pass, _ := u.User.Password()
	assert.Equal(t, "p@ss;word=1", pass)
	assert.Equal(t, "qa", u.Query().Get("database"))
	assert.Equal(t, "disable", u.Query().Get("encrypt"))
	assert.Equal(t, "15", u.Query().Get("connection timeout"))
}

func TestNotConnected(t *testing.T) {
	s, err := NewMSSQLStore(Options{Server: "db"})
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Ping(ctx), ErrNotConnected)
	assert.ErrorIs(t, s.EnsureSchema(ctx), ErrNotConnected)
	assert.ErrorIs(t, s.Save(ctx, sampleReport()), ErrNotConnected)
	_, err = s.Recent(ctx, 5)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, s.Close())
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	s := NewMSSQLStoreWithDB(db, nil)
	assert.NoError(t, s.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("network"))
	err = s.Ping(context.Background())
	assert.Equal(t, ErrHistoryConnect, apperrors.CodeOf(err, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("IF OBJECT_ID(N'dbo.loopcheck_runs', N'U') IS NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("IF OBJECT_ID(N'dbo.loopcheck_steps', N'U') IS NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Error(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("loopcheck_runs").WillReturnError(errors.New("permission denied"))

	err := s.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrHistorySchema, apperrors.CodeOf(err, ""))
	assert.Contains(t, err.Error(), "permission denied")
}

func TestSave(t *testing.T) {
	s, mock := newMockStore(t)
	report := sampleReport()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dbo.loopcheck_runs")).
		WithArgs("run-1", "https://loopync.example/api", sqlmock.AnyArg(), int64(3000), 1, 1, 0, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dbo.loopcheck_steps")).
		WithArgs("run-1", 1, "auth", "login", "pass", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dbo.loopcheck_steps")).
		WithArgs("run-1", 2, "calls", "initiate", "fail", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(2000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Save(context.Background(), report))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_RollbackOnStepError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO dbo.loopcheck_runs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO dbo.loopcheck_steps").WillReturnError(errors.New("string truncated"))
	mock.ExpectRollback()

	err := s.Save(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Equal(t, ErrHistorySave, apperrors.CodeOf(err, ""))
	assert.Contains(t, err.Error(), "auth/login")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecent(t *testing.T) {
	s, mock := newMockStore(t)
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	cols := []string{"run_id", "base_url", "started_at", "duration_ms", "passed", "failed", "skipped", "aborted", "abort_reason"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT TOP (@p1)")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("run-2", "https://a/api", started.Add(time.Hour), int64(1500), 30, 0, 2, false, nil).
			AddRow("run-1", "https://a/api", started, int64(900), 3, 1, 0, true, "упал критичный набор auth"))

	recs, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "run-2", recs[0].RunID)
	assert.Equal(t, 1500*time.Millisecond, recs[0].Duration)
	assert.True(t, recs[0].OK())
	assert.Empty(t, recs[0].AbortReason)
	assert.False(t, recs[1].OK())
	assert.True(t, recs[1].Aborted)
	assert.Equal(t, "упал критичный набор auth", recs[1].AbortReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecent_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT TOP").WillReturnError(errors.New("timeout"))

	_, err := s.Recent(context.Background(), 0)
	assert.Equal(t, ErrHistoryQuery, apperrors.CodeOf(err, ""))
}

func TestOpen_Disabled(t *testing.T) {
	store, err := Open(context.Background(), &config.HistoryConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.False(t, Enabled(store))

	recs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, store.Save(context.Background(), sampleReport()))
}

func TestOpen_InvalidOptions(t *testing.T) {
	_, err := Open(context.Background(), &config.HistoryConfig{Enabled: true}, nil)
	require.Error(t, err)
	assert.Equal(t, ErrHistoryConnect, apperrors.CodeOf(err, ""))
}

func TestUnavailable(t *testing.T) {
	cause := newError(ErrHistoryConnect, "недоступен", errors.New("dial tcp"))
	store := UnavailableStore{Err: cause}

	assert.False(t, Enabled(store))
	assert.Same(t, cause, Unavailable(store))
	assert.ErrorIs(t, Unavailable(UnavailableStore{}), ErrNotConnected)
	assert.NoError(t, Unavailable(NopStore{}))
	assert.NoError(t, Unavailable(nil))

	_, err := store.Recent(context.Background(), 5)
	assert.Same(t, cause, err)
	assert.NoError(t, store.Save(context.Background(), sampleReport()))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "абв", truncate("абвгд", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestTruncate_CountsUTF16Units(t *testing.T) {
	// 😀 вне BMP: в NVARCHAR это суррогатная пара из двух единиц.
	assert.Equal(t, "a😀", truncate("a😀b", 3))
	assert.Equal(t, "a", truncate("a😀b", 2))
	assert.Equal(t, "", truncate("😀", 1))

	long := strings.Repeat("😀", maxTextLength)
	got := truncate(long, maxTextLength)
	assert.Len(t, utf16.Encode([]rune(got)), maxTextLength)
	assert.Equal(t, maxTextLength/2, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

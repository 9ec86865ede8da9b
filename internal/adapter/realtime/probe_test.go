package realtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/adapter/loopync/loopynctest"
	"github.com/Kargones/loopcheck/internal/adapter/realtime"
	"github.com/Kargones/loopcheck/internal/pkg/urlutil"
)

func newProbe(t *testing.T, baseURL string, timeout time.Duration) *realtime.Probe {
	t.Helper()
	wsURL, err := urlutil.SocketIOURL(baseURL)
	require.NoError(t, err)
	p, err := realtime.NewProbe(realtime.Options{URL: wsURL, Timeout: timeout})
	require.NoError(t, err)
	return p
}

// scriptedServer отвечает на upgrade и отдаёт заранее заданные пакеты.
func scriptedServer(t *testing.T, packets ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, p := range packets {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(p)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewProbe_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "http://host/socket.io/", "ws://"} {
		_, err := realtime.NewProbe(realtime.Options{URL: raw})
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), realtime.ErrDial)
	}
}

func TestProbe_Check_Success(t *testing.T) {
	srv := loopynctest.NewServer(t, loopynctest.WithRealtime())
	p := newProbe(t, srv.URL(), 3*time.Second)

	hs, err := p.Check(context.Background(), srv.Token(loopynctest.DemoUserID))
	require.NoError(t, err)
	assert.NotEmpty(t, hs.SID)
	assert.NotEmpty(t, hs.NamespaceSID)
	assert.Equal(t, 25*time.Second, hs.PingInterval)
	assert.Equal(t, 20*time.Second, hs.PingTimeout)
	assert.Equal(t, 1, hs.Pings, "ping до подтверждения должен получить pong")
}

func TestProbe_Check_Rejected(t *testing.T) {
	srv := loopynctest.NewServer(t, loopynctest.WithRealtime())
	p := newProbe(t, srv.URL(), 3*time.Second)

	_, err := p.Check(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.True(t, realtime.IsRejected(err))
	assert.Contains(t, err.Error(), "Authentication failed")
	assert.Contains(t, err.Error(), realtime.ErrRejected)
}

func TestProbe_Check_NotDeployed(t *testing.T) {
	srv := loopynctest.NewServer(t)
	p := newProbe(t, srv.URL(), 3*time.Second)

	_, err := p.Check(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, realtime.IsNotFound(err))
}

func TestProbe_Check_Timeout(t *testing.T) {
	srv := scriptedServer(t, `0{"sid":"abc","pingInterval":25000,"pingTimeout":20000}`)
	p := newProbe(t, srv.URL, 200*time.Millisecond)

	_, err := p.Check(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, realtime.IsTimeout(err))
}

func TestProbe_Check_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name    string
		packets []string
		want    string
	}{
		{name: "нет OPEN", packets: []string{"hello"}, want: "OPEN"},
		{name: "OPEN без sid", packets: []string{`0{}`}, want: "sid"},
		{name: "закрытие сессии", packets: []string{`0{"sid":"abc"}`, "1"}, want: "закрыл"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := scriptedServer(t, tt.packets...)
			p := newProbe(t, srv.URL, 2*time.Second)

			_, err := p.Check(context.Background(), "x")
			require.Error(t, err)
			assert.Contains(t, err.Error(), realtime.ErrProtocol)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestCheck_ProtocolErrorKeepsUTF8(t *testing.T) {
	srv := scriptedServer(t, "x"+strings.Repeat("ж", 40))
	p := newProbe(t, srv.URL, 2*time.Second)

	_, err := p.Check(context.Background(), "x")
	require.Error(t, err)
	msg := err.Error()
	assert.True(t, utf8.ValidString(msg))
	assert.NotContains(t, msg, `\x`)
	assert.Contains(t, msg, `"x`+strings.Repeat("ж", 31)+`..."`)
}

func TestProbe_Check_ContextCancelled(t *testing.T) {
	srv := scriptedServer(t, `0{"sid":"abc"}`)
	p := newProbe(t, srv.URL, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := p.Check(ctx, "x")
	require.Error(t, err)
	assert.True(t, realtime.IsTimeout(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

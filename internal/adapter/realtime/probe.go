// Package realtime проверяет realtime канал стенда: рукопожатие Socket.IO v5
// поверх Engine.IO v4 на транспорте WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/Kargones/loopcheck/internal/constants"
	"github.com/Kargones/loopcheck/internal/pkg/logging"
	"github.com/Kargones/loopcheck/internal/pkg/tracing"
)

// DefaultTimeout — таймаут рукопожатия по умолчанию.
const DefaultTimeout = 10 * time.Second

// maxPacketPreview — сколько байт пакета попадает в текст ошибки.
const maxPacketPreview = 64

// Типы пакетов Engine.IO (первый символ) и Socket.IO (второй символ).
const (
	packetOpen         = '0'
	packetClose        = '1'
	packetPing         = '2'
	packetPong         = "3"
	packetMessage      = '4'
	socketConnect      = '0'
	socketDisconnect   = "41"
	socketConnectError = '4'
)

// Options — параметры пробы.
type Options struct {
	// URL — адрес ws(s)://host/socket.io/?EIO=4&transport=websocket.
	URL string
	// Timeout — таймаут всего рукопожатия.
	Timeout time.Duration
	// UserAgent — заголовок User-Agent запроса upgrade.
	UserAgent string
	// Dialer — WebSocket dialer. nil — websocket.DefaultDialer.
	Dialer *websocket.Dialer
	// Logger — логгер пробы.
	Logger logging.Logger
}

// Handshake — результат успешного рукопожатия.
type Handshake struct {
	// SID — идентификатор сессии Engine.IO.
	SID string
	// NamespaceSID — идентификатор сокета в пространстве имён "/".
	NamespaceSID string
	// PingInterval и PingTimeout — параметры heartbeat из пакета OPEN.
	PingInterval time.Duration
	PingTimeout  time.Duration
	// Pings — число ping, полученных до подтверждения подключения.
	Pings int
	// Duration — длительность рукопожатия.
	Duration time.Duration
}

// Probe выполняет проверку Socket.IO.
type Probe struct {
	url       string
	timeout   time.Duration
	userAgent string
	dialer    *websocket.Dialer
	logger    logging.Logger
}

type openPacket struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// NewProbe создаёт пробу. URL должен иметь схему ws или wss.
func NewProbe(opts Options) (*Probe, error) {
	u, err := url.Parse(opts.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return nil, newError(ErrDial, fmt.Sprintf("некорректный адрес realtime %q", opts.URL), err)
	}
	p := &Probe{
		url:       opts.URL,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		dialer:    opts.Dialer,
		logger:    opts.Logger,
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	if p.userAgent == "" {
		p.userAgent = constants.UserAgent
	}
	if p.dialer == nil {
		p.dialer = websocket.DefaultDialer
	}
	if p.logger == nil {
		p.logger = logging.NewNopLogger()
	}
	return p, nil
}

// URL возвращает адрес, к которому подключается проба.
func (p *Probe) URL() string {
	return p.url
}

// Check подключается к Socket.IO с токеном и дожидается подтверждения подключения.
func (p *Probe) Check(ctx context.Context, token string) (hs *Handshake, err error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ctx, span := tracing.StartHTTP(ctx, http.MethodGet, "/socket.io/")
	status := http.StatusSwitchingProtocols
	defer func() { tracing.EndHTTP(span, status, err) }()

	start := time.Now()
	header := http.Header{"User-Agent": {p.userAgent}}
	conn, resp, dialErr := p.dialer.DialContext(ctx, p.url, header)
	if dialErr != nil {
		e := newError(ErrDial, "WebSocket соединение не установлено", dialErr)
		if resp != nil {
			status = resp.StatusCode
			e.StatusCode = resp.StatusCode
			e.Message = fmt.Sprintf("сервер ответил %d на upgrade", resp.StatusCode)
			_ = resp.Body.Close()
		} else if ctx.Err() != nil {
			e.Code = ErrTimeout
		}
		return nil, e
	}
	defer p.close(conn)

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	hs = &Handshake{}
	if err := p.readOpen(ctx, conn, hs); err != nil {
		return nil, err
	}

	auth, _ := json.Marshal(map[string]string{"token": token})
	if err := conn.WriteMessage(websocket.TextMessage, append([]byte{packetMessage, socketConnect}, auth...)); err != nil {
		return nil, newError(ErrProtocol, "отправка CONNECT", err)
	}

	if err := p.awaitConnect(ctx, conn, hs); err != nil {
		return nil, err
	}
	hs.Duration = time.Since(start)
	p.logger.Debug("Рукопожатие Socket.IO выполнено",
		"sid", hs.SID,
		"pings", hs.Pings,
		"duration_ms", hs.Duration.Milliseconds(),
	)
	return hs, nil
}

func (p *Probe) readOpen(ctx context.Context, conn *websocket.Conn, hs *Handshake) error {
	data, err := p.read(ctx, conn)
	if err != nil {
		return err
	}
	if len(data) == 0 || data[0] != packetOpen {
		return newError(ErrProtocol, fmt.Sprintf("ожидался пакет OPEN, получено %q", truncate(data)), nil)
	}
	var open openPacket
	if err := json.Unmarshal(data[1:], &open); err != nil {
		return newError(ErrProtocol, "некорректный пакет OPEN", err)
	}
	if open.SID == "" {
		return newError(ErrProtocol, "в пакете OPEN нет sid", nil)
	}
	hs.SID = open.SID
	hs.PingInterval = time.Duration(open.PingInterval) * time.Millisecond
	hs.PingTimeout = time.Duration(open.PingTimeout) * time.Millisecond
	return nil
}

func (p *Probe) awaitConnect(ctx context.Context, conn *websocket.Conn, hs *Handshake) error {
	for {
		data, err := p.read(ctx, conn)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			continue
		}
		switch data[0] {
		case packetPing:
			hs.Pings++
			if err := conn.WriteMessage(websocket.TextMessage, []byte(packetPong)); err != nil {
				return newError(ErrProtocol, "отправка PONG", err)
			}
		case packetClose:
			return newError(ErrProtocol, "сервер закрыл сессию до подтверждения подключения", nil)
		case packetMessage:
			if len(data) < 2 {
				return newError(ErrProtocol, "пустой пакет MESSAGE", nil)
			}
			switch data[1] {
			case socketConnect:
				var ack struct {
					SID string `json:"sid"`
				}
				if err := json.Unmarshal(data[2:], &ack); err != nil {
					return newError(ErrProtocol, "некорректный пакет CONNECT", err)
				}
				hs.NamespaceSID = ack.SID
				return nil
			case socketConnectError:
				var reject struct {
					Message string `json:"message"`
				}
				_ = json.Unmarshal(data[2:], &reject)
				msg := "подключение отклонено"
				if reject.Message != "" {
					msg = fmt.Sprintf("подключение отклонено: %s", reject.Message)
				}
				return newError(ErrRejected, msg, ErrConnectRejected)
			}
		}
	}
}

func (p *Probe) read(ctx context.Context, conn *websocket.Conn) ([]byte, error) {
	_, data, err := conn.ReadMessage()
	if err == nil {
		return data, nil
	}
	var netErr net.Error
	if ctx.Err() != nil || (errors.As(err, &netErr) && netErr.Timeout()) {
		return nil, newError(ErrTimeout, fmt.Sprintf("нет ответа за %s", p.timeout), err)
	}
	return nil, newError(ErrProtocol, "чтение пакета", err)
}

func (p *Probe) close(conn *websocket.Conn) {
	deadline := time.Now().Add(time.Second)
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.WriteMessage(websocket.TextMessage, []byte(socketDisconnect))
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	if err := conn.Close(); err != nil {
		p.logger.Debug("Ошибка закрытия WebSocket", "error", err)
	}
}

// truncate укорачивает пакет для сообщения об ошибке, не разрезая символ UTF-8.
func truncate(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) <= maxPacketPreview {
		return s
	}
	cut := maxPacketPreview
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

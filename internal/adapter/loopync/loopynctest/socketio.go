package loopynctest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Пакеты Engine.IO и Socket.IO, которыми обменивается fake сервер.
const (
	eioOpen           = "0"
	eioPing           = "2"
	eioPong           = "3"
	sioConnect        = "40"
	sioConnectError   = "44"
	socketReadTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleSocketIO реализует рукопожатие Socket.IO v5 поверх Engine.IO v4.
// Перед подтверждением подключения сервер шлёт ping и ждёт pong.
func (s *Server) handleSocketIO(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("EIO") != "4" || r.URL.Query().Get("transport") != "websocket" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": 5, "message": "Unsupported protocol version"})
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	open, _ := json.Marshal(map[string]any{
		"sid":          uuid.NewString(),
		"upgrades":     []string{},
		"pingInterval": 25000,
		"pingTimeout":  20000,
		"maxPayload":   1000000,
	})
	if err := conn.WriteMessage(websocket.TextMessage, append([]byte(eioOpen), open...)); err != nil {
		return
	}

	packet, ok := readPacket(conn)
	if !ok || !strings.HasPrefix(packet, sioConnect) {
		return
	}
	var auth struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal([]byte(strings.TrimPrefix(packet, sioConnect)), &auth)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(eioPing)); err != nil {
		return
	}
	if pong, ok := readPacket(conn); !ok || pong != eioPong {
		return
	}

	if _, err := s.UserIDFromToken(auth.Token); err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(sioConnectError+`{"message":"Authentication failed"}`))
		return
	}
	ack, _ := json.Marshal(map[string]string{"sid": uuid.NewString()})
	if err := conn.WriteMessage(websocket.TextMessage, append([]byte(sioConnect), ack...)); err != nil {
		return
	}
	for {
		if _, ok := readPacket(conn); !ok {
			return
		}
	}
}

func readPacket(conn *websocket.Conn) (string, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(socketReadTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}
	return string(data), true
}

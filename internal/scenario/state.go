package scenario

import (
	"fmt"
	"sort"
	"sync"
)

// Ключи состояния, которые шаги передают друг другу.
const (
	KeyToken        = "token"
	KeyUserID       = "user_id"
	KeyUserHandle   = "user_handle"
	KeyPeerToken    = "peer_token"
	KeyPeerUserID   = "peer_user_id"
	KeyRequestID    = "request_id"
	KeyFriendship   = "friendship"
	KeyThreadID     = "thread_id"
	KeyMessageText  = "message_text"
	KeyCallID       = "call_id"
	KeyChannelName  = "channel_name"
	KeyRoomID       = "room_id"
	KeyPostID       = "post_id"
	KeyVenueID      = "venue_id"
	KeySignupHandle = "signup_handle"
	KeySignupEmail  = "signup_email"
	KeySignupPass   = "signup_password"
	KeySignupUserID = "signup_user_id"
	KeyResetCode    = "reset_code"
	KeyAgoraEnabled = "agora_enabled"
	KeyRealtimeSID  = "realtime_sid"
)

// State — потокобезопасное хранилище значений между шагами.
type State struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewState создаёт пустое состояние.
func NewState() *State {
	return &State{values: make(map[string]any)}
}

// Set сохраняет значение. nil удаляет ключ.
func (s *State) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == nil {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

// Get возвращает значение и признак его наличия.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Has сообщает, задан ли ключ. Пустая строка считается отсутствием значения.
func (s *State) Has(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	if str, isStr := v.(string); isStr {
		return str != ""
	}
	return true
}

// String возвращает строковое значение или "" если ключа нет
// или значение другого типа.
func (s *State) String(key string) string {
	v, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// MustString возвращает строковое значение или ошибку с именем ключа.
func (s *State) MustString(key string) (string, error) {
	str := s.String(key)
	if str == "" {
		return "", fmt.Errorf("в состоянии нет значения %q", key)
	}
	return str, nil
}

// Bool возвращает булево значение; отсутствие ключа — false.
func (s *State) Bool(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Missing возвращает ключи из keys, которых нет в состоянии.
func (s *State) Missing(keys []string) []string {
	var out []string
	for _, k := range keys {
		if !s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Snapshot возвращает копию состояния.
func (s *State) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Keys возвращает отсортированный список заданных ключей.
func (s *State) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

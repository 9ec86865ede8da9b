package loopynctest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
)

// Seed-пользователи стенда.
const (
	DemoUserID     = "demo_user"
	DemoHandle     = "demo"
	DemoEmail      = "demo@loopync.com"
	DemoPassword   = "password123"
	PeerUserID     = "u1"
	PeerHandle     = "vibekween"
	StrangerUserID = "u3"
	// AgoraAppID — app id, который сервер отдаёт при настроенном Agora.
	AgoraAppID = "test-agora-app"
)

// Option настраивает Server.
type Option func(*Server)

// WithoutAgora имитирует стенд без ключей Agora.
func WithoutAgora() Option {
	return func(s *Server) { s.agora = false }
}

// WithRealtime включает Socket.IO эндпоинт /socket.io/.
func WithRealtime() Option {
	return func(s *Server) { s.realtime = true }
}

// WithCaseSensitiveEmail имитирует стенд, который сравнивает email
// с учётом регистра.
func WithCaseSensitiveEmail() Option {
	return func(s *Server) { s.exactEmail = true }
}

// WithClock подменяет источник времени сервера.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

type userRecord struct {
	user      loopync.User
	password  string
	resetCode string
}

type dmThread struct {
	id            string
	user1         string
	user2         string
	createdAt     string
	lastMessageAt string
}

type voiceRoom struct {
	loopync.Room
	maxParticipants int
	maxSpeakers     int
}

type friendship struct {
	createdAt string
}

// Server — fake API Loopync поверх httptest.Server.
type Server struct {
	srv        *httptest.Server
	router     *mux.Router
	secret     []byte
	now        func() time.Time
	agora      bool
	realtime   bool
	exactEmail bool

	mu           sync.Mutex
	users        map[string]*userRecord
	userOrder    []string
	friendships  map[string]friendship
	requests     map[string]*loopync.FriendRequest
	requestOrder []string
	threads      map[string]*dmThread
	threadOrder  []string
	messages     map[string][]loopync.Message
	calls        map[string]*loopync.Call
	callOrder    []string
	rooms        map[string]*voiceRoom
	roomOrder    []string
	posts        map[string]*loopync.Post
	postOrder    []string
	venues       []loopync.Venue
	reels        []loopync.Reel
	hits         map[string]int
}

// NewServer запускает fake сервер с seed данными. Сервер закрывается через t.Cleanup.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		secret: []byte("loopynctest-secret"),
		now:    time.Now,
		agora:  true,
		hits:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	s.router = s.routes()
	s.srv = httptest.NewServer(s.router)
	t.Cleanup(s.srv.Close)
	return s
}

// URL возвращает базовый адрес API, включая префикс /api.
func (s *Server) URL() string {
	return s.srv.URL + "/api"
}

// RootURL возвращает адрес сервера без префикса.
func (s *Server) RootURL() string {
	return s.srv.URL
}

// Close останавливает сервер.
func (s *Server) Close() {
	s.srv.Close()
}

// Hits возвращает число запросов к маршруту, например "POST /api/seed".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Token выпускает JWT для пользователя, как это делает стенд при входе.
func (s *Server) Token(userID string) string {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("подпись тестового JWT: %v", err))
	}
	return signed
}

// UserIDFromToken проверяет подпись токена и возвращает sub.
func (s *Server) UserIDFromToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	return parsed.Claims.GetSubject()
}

// AddUser регистрирует пользователя напрямую, минуя API.
func (s *Server) AddUser(handle, name, email, password string) loopync.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked("", handle, name, email, password)
}

// MakeFriends связывает двух пользователей дружбой напрямую.
func (s *Server) MakeFriends(a, b string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.befriendLocked(a, b)
}

// AreFriends сообщает, дружат ли пользователи.
func (s *Server) AreFriends(a, b string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.friendships[pairKey(a, b)]
	return ok
}

// User возвращает копию профиля пользователя.
func (s *Server) User(id string) (loopync.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return loopync.User{}, false
	}
	return rec.user, true
}

// RequestStatuses возвращает статусы заявок from → to в порядке создания.
func (s *Server) RequestStatuses(from, to string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, id := range s.requestOrder {
		if req := s.requests[id]; req.FromUserID == from && req.ToUserID == to {
			out = append(out, req.Status)
		}
	}
	return out
}

// CallStatuses возвращает статусы звонков callerID → recipientID в порядке создания.
func (s *Server) CallStatuses(callerID, recipientID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, id := range s.callOrder {
		if c := s.calls[id]; c.CallerID == callerID && c.RecipientID == recipientID {
			out = append(out, c.Status)
		}
	}
	return out
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *Server) addUserLocked(id, handle, name, email, password string) loopync.User {
	if id == "" {
		id = uuid.NewString()
	}
	u := loopync.User{
		ID:         id,
		Handle:     handle,
		Name:       name,
		Email:      email,
		Avatar:     "https://api.dicebear.com/7.x/avataaars/svg?seed=" + handle,
		IsVerified: true,
		Friends:    []string{},
		CreatedAt:  s.timestamp(),
	}
	s.users[id] = &userRecord{user: u, password: password}
	s.userOrder = append(s.userOrder, id)
	return u
}

func (s *Server) befriendLocked(a, b string) {
	key := pairKey(a, b)
	if _, ok := s.friendships[key]; ok {
		return
	}
	s.friendships[key] = friendship{createdAt: s.timestamp()}
	if rec, ok := s.users[a]; ok {
		rec.user.Friends = appendUnique(rec.user.Friends, b)
	}
	if rec, ok := s.users[b]; ok {
		rec.user.Friends = appendUnique(rec.user.Friends, a)
	}
}

func (s *Server) unfriendLocked(a, b string) bool {
	key := pairKey(a, b)
	if _, ok := s.friendships[key]; !ok {
		return false
	}
	delete(s.friendships, key)
	if rec, ok := s.users[a]; ok {
		rec.user.Friends = without(rec.user.Friends, b)
	}
	if rec, ok := s.users[b]; ok {
		rec.user.Friends = without(rec.user.Friends, a)
	}
	return true
}

func (s *Server) findUserByEmailLocked(email string) *userRecord {
	for _, id := range s.userOrder {
		rec := s.users[id]
		if rec.user.Email == email || !s.exactEmail && strings.EqualFold(rec.user.Email, email) {
			return rec
		}
	}
	return nil
}

func (s *Server) findUserByHandleLocked(handle string) *userRecord {
	for _, id := range s.userOrder {
		rec := s.users[id]
		if rec.user.Handle == handle {
			return rec
		}
	}
	return nil
}

// reset пересоздаёт seed данные. Вызывающий держит s.mu либо сервер ещё не запущен.
func (s *Server) reset() {
	s.users = make(map[string]*userRecord)
	s.userOrder = nil
	s.friendships = make(map[string]friendship)
	s.requests = make(map[string]*loopync.FriendRequest)
	s.requestOrder = nil
	s.threads = make(map[string]*dmThread)
	s.threadOrder = nil
	s.messages = make(map[string][]loopync.Message)
	s.calls = make(map[string]*loopync.Call)
	s.callOrder = nil
	s.rooms = make(map[string]*voiceRoom)
	s.roomOrder = nil
	s.posts = make(map[string]*loopync.Post)
	s.postOrder = nil

	seedUsers := []struct{ id, handle, name string }{
		{"u1", "vibekween", "Priya Sharma"},
		{"u2", "techbro_raj", "Raj Malhotra"},
		{"u3", "artsy_soul", "Ananya Reddy"},
		{"u4", "crypto_maya", "Maya Patel"},
		{"u5", "foodie_sahil", "Sahil Khan"},
	}
	for _, su := range seedUsers {
		s.addUserLocked(su.id, su.handle, su.name, su.handle+"@loopync.com", "password123")
	}
	s.addUserLocked(DemoUserID, DemoHandle, "Demo User", DemoEmail, DemoPassword)

	for i, text := range []string{
		"Just dropped my new track! #vibes",
		"Building something cool this weekend",
		"Sunset sketches from the rooftop",
		"Best biryani in town, fight me",
	} {
		id := fmt.Sprintf("p%d", i+1)
		s.posts[id] = &loopync.Post{
			ID:         id,
			AuthorID:   seedUsers[i].id,
			Text:       text,
			Audience:   "public",
			Hashtags:   []string{},
			LikedBy:    []string{},
			RepostedBy: []string{},
			CreatedAt:  s.timestamp(),
		}
		s.postOrder = append(s.postOrder, id)
	}

	s.venues = []loopync.Venue{
		{
			ID: "v1", Name: "Cafe Mocha", Description: "Cozy coffee spot",
			Avatar: "https://api.dicebear.com/7.x/shapes/svg?seed=v1", Location: "Bandra, Mumbai", Rating: 4.6,
			MenuItems: []loopync.MenuItem{{ID: "m1", Name: "Cappuccino", Price: 180}},
		},
		{
			ID: "v2", Name: "Skyline Lounge", Description: "Rooftop bar",
			Avatar: "https://api.dicebear.com/7.x/shapes/svg?seed=v2", Location: "Indiranagar, Bengaluru", Rating: 4.4,
			MenuItems: []loopync.MenuItem{{ID: "m2", Name: "Mojito", Price: 320}},
		},
	}
	s.reels = []loopync.Reel{
		{ID: "r1", AuthorID: "u1", VideoURL: "https://cdn.loopync.test/r1.mp4", Thumb: "https://cdn.loopync.test/r1.jpg", Caption: "Dance vibes", Stats: map[string]int{"views": 1200, "likes": 300, "comments": 12}},
		{ID: "r2", AuthorID: "u5", VideoURL: "https://cdn.loopync.test/r2.mp4", Thumb: "https://cdn.loopync.test/r2.jpg", Caption: "Street food tour", Stats: map[string]int{"views": 800, "likes": 95, "comments": 4}},
	}
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.countHits)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/seed", s.handleSeed).Methods(http.MethodPost)

	api.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/auth/check-handle/{handle}", s.handleCheckHandle).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/auth/forgot-password", s.handleForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-reset-code", s.handleVerifyResetCode).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password", s.handleResetPassword).Methods(http.MethodPost)

	api.HandleFunc("/users/search", s.handleSearchUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}", s.handleGetUser).Methods(http.MethodGet)

	api.HandleFunc("/friend-requests", s.handleSendFriendRequest).Methods(http.MethodPost)
	api.HandleFunc("/friend-requests", s.handleListFriendRequests).Methods(http.MethodGet)
	api.HandleFunc("/friend-requests/{requestId}/accept", s.handleAcceptFriendRequest).Methods(http.MethodPost)
	api.HandleFunc("/friend-requests/{requestId}/reject", s.handleRejectFriendRequest).Methods(http.MethodPost)
	api.HandleFunc("/friend-requests/{requestId}/cancel", s.handleCancelFriendRequest).Methods(http.MethodPost)
	api.HandleFunc("/friends/list", s.handleListFriends).Methods(http.MethodGet)
	api.HandleFunc("/friends/{friendUserId}", s.handleRemoveFriend).Methods(http.MethodDelete)

	api.HandleFunc("/dm/threads", s.handleListThreads).Methods(http.MethodGet)
	api.HandleFunc("/dm/thread", s.handleOpenThread).Methods(http.MethodPost)
	api.HandleFunc("/dm/threads/{threadId}/messages", s.handleListMessages).Methods(http.MethodGet)
	api.HandleFunc("/dm/threads/{threadId}/messages", s.handleSendMessage).Methods(http.MethodPost)

	api.HandleFunc("/calls/initiate", s.handleInitiateCall).Methods(http.MethodPost)
	api.HandleFunc("/calls/history/{userId}", s.handleCallHistory).Methods(http.MethodGet)
	api.HandleFunc("/calls/{callId}/answer", s.handleAnswerCall).Methods(http.MethodPost)
	api.HandleFunc("/calls/{callId}/reject", s.handleRejectCall).Methods(http.MethodPost)
	api.HandleFunc("/calls/{callId}/end", s.handleEndCall).Methods(http.MethodPost)
	api.HandleFunc("/agora/token", s.handleAgoraToken).Methods(http.MethodGet)

	api.HandleFunc("/rooms", s.handleCreateRoom).Methods(http.MethodPost)
	api.HandleFunc("/rooms", s.handleListRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomId}", s.handleGetRoom).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomId}/join", s.handleJoinRoom).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{roomId}/leave", s.handleLeaveRoom).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{roomId}/raise-hand", s.handleRaiseHand).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{roomId}/invite-to-stage", s.handleInviteToStage).Methods(http.MethodPost)

	api.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", s.handleCreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postId}/like", s.handleLikePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postId}/repost", s.handleRepostPost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postId}/quote", s.handleQuotePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postId}/reply", s.handleReplyPost).Methods(http.MethodPost)

	api.HandleFunc("/venues", s.handleListVenues).Methods(http.MethodGet)
	api.HandleFunc("/venues/{venueId}", s.handleGetVenue).Methods(http.MethodGet)
	api.HandleFunc("/reels", s.handleListReels).Methods(http.MethodGet)

	if s.realtime {
		r.HandleFunc("/socket.io/", s.handleSocketIO)
	}
	return r
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				name = tpl
			}
		}
		s.mu.Lock()
		s.hits[r.Method+" "+name]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// queryParams возвращает обязательные query параметры или отвечает 422, как FastAPI.
func queryParams(w http.ResponseWriter, r *http.Request, names ...string) (map[string]string, bool) {
	values := make(map[string]string, len(names))
	var issues []validationIssue
	q := r.URL.Query()
	for _, name := range names {
		if !q.Has(name) {
			issues = append(issues, validationIssue{Loc: []string{"query", name}, Msg: "Field required", Type: "missing"})
			continue
		}
		values[name] = q.Get(name)
	}
	if len(issues) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
		return nil, false
	}
	return values, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []validationIssue{{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}},
		})
		return false
	}
	return true
}

func pairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0] + "|" + ids[1]
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

func without(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

package loopync_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/adapter/loopync/loopynctest"
)

func newClient(t *testing.T, baseURL string) *loopync.Client {
	t.Helper()
	c, err := loopync.NewClient(loopync.Options{BaseURL: baseURL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func login(t *testing.T, c *loopync.Client, email, password string) loopync.AuthResponse {
	t.Helper()
	resp, err := c.Login(context.Background(), email, password)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Snippet(200))
	auth, err := loopync.DecodeAs[loopync.AuthResponse](resp)
	require.NoError(t, err)
	c.SetToken(auth.Token)
	return *auth
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://host/api", "http://", "::bad"} {
		_, err := loopync.NewClient(loopync.Options{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c, err := loopync.NewClient(loopync.Options{BaseURL: srv.URL + "/api/", UserAgent: "loopcheck-test"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api", c.BaseURL())

	c.SetToken("tkn")
	resp, err := c.SendFriendRequest(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.NoError(t, resp.Err())

	assert.Equal(t, "Bearer tkn", got.Get("Authorization"))
	assert.Equal(t, "loopcheck-test", got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Empty(t, got.Get("Content-Type"), "запрос без тела")
	assert.Equal(t, "fromUserId=a&toUserId=b", gotQuery)
}

func TestClient_WithTokenKeepsOriginal(t *testing.T) {
	c := newClient(t, "http://localhost/api")
	c.SetToken("first")
	other := c.WithToken("second")
	assert.Equal(t, "first", c.Token())
	assert.Equal(t, "second", other.Token())
	assert.Equal(t, c.BaseURL(), other.BaseURL())
}

func TestResponse_Detail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "строка", body: `{"detail":"Room not found"}`, want: "Room not found"},
		{name: "ошибки валидации", body: `{"detail":[{"msg":"Field required"},{"msg":"Input should be a valid integer"}]}`, want: "Field required; Input should be a valid integer"},
		{name: "без detail", body: `Internal Server Error`, want: "Internal Server Error"},
		{name: "объект", body: `{"detail":{"x":1}}`, want: `{"x":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &loopync.Response{StatusCode: 400, Body: []byte(tt.body)}
			assert.Equal(t, tt.want, r.Detail())
		})
	}
}

func TestResponse_DecodeError(t *testing.T) {
	r := &loopync.Response{StatusCode: 200, Body: []byte("<html>"), Method: "GET", Path: "/posts"}
	_, err := loopync.DecodeAs[[]loopync.Post](r)
	require.Error(t, err)
	var apiErr *loopync.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, loopync.ErrDecode, apiErr.Code)
}

func TestResponse_Snippet(t *testing.T) {
	r := &loopync.Response{Body: []byte("  0123456789  ")}
	assert.Equal(t, "0123456789", r.Snippet(20))
	assert.Equal(t, "01234...", r.Snippet(5))
}

func TestResponse_SnippetKeepsUTF8(t *testing.T) {
	r := &loopync.Response{Body: []byte(`{"detail":"` + strings.Repeat("ошибка ", 10) + `"}`)}

	for n := 10; n <= 20; n++ {
		got := r.Snippet(n)
		assert.True(t, utf8.ValidString(got), "n=%d: %q", n, got)
		assert.LessOrEqual(t, len(got), n+len("..."))
	}
	assert.Equal(t, `{"detail":"...`, r.Snippet(12))
	assert.Equal(t, `{"detail":"о...`, r.Snippet(13))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/api"
	srv.Close()

	c := newClient(t, base)
	_, err := c.ListPosts(context.Background())
	require.Error(t, err)
	assert.True(t, loopync.IsTransport(err))
}

func TestClient_RateLimitCancelled(t *testing.T) {
	srv := loopynctest.NewServer(t)
	c, err := loopync.NewClient(loopync.Options{BaseURL: srv.URL(), RateLimit: 0.01, RateBurst: 1})
	require.NoError(t, err)

	_, err = c.ListVenues(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ListVenues(ctx)
	require.Error(t, err)
	var apiErr *loopync.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, loopync.ErrRateLimit, apiErr.Code)
}

func TestClient_AuthFlow(t *testing.T) {
	srv := loopynctest.NewServer(t)
	c := newClient(t, srv.URL())
	ctx := context.Background()

	resp, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = c.Login(ctx, loopynctest.DemoEmail, "wrong")
	require.NoError(t, err)
	assert.True(t, loopync.IsUnauthorized(resp.Err()))
	assert.Equal(t, "Invalid email or password", resp.Detail())

	auth := login(t, c, loopynctest.DemoEmail, loopynctest.DemoPassword)
	assert.Equal(t, loopynctest.DemoUserID, auth.User.ID)

	resp, err = c.Me(ctx)
	require.NoError(t, err)
	me, err := loopync.DecodeAs[loopync.User](resp)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, me.ID)

	resp, err = c.Signup(ctx, loopync.SignupRequest{Handle: "fresh_one", Name: "Fresh", Email: "fresh@loopync.test", Password: "secret123"})
	require.NoError(t, err)
	require.True(t, resp.OK(), resp.Snippet(200))

	resp, err = c.Signup(ctx, loopync.SignupRequest{Handle: "fresh_one", Name: "Fresh", Email: "other@loopync.test", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, loopync.IsAlready(resp.Err()))

	resp, err = c.CheckHandle(ctx, "fresh_one")
	require.NoError(t, err)
	avail, err := loopync.DecodeAs[loopync.HandleAvailability](resp)
	require.NoError(t, err)
	assert.False(t, avail.Available)

	resp, err = c.ForgotPassword(ctx, "fresh@loopync.test")
	require.NoError(t, err)
	code, err := loopync.DecodeAs[loopync.ResetCodeResponse](resp)
	require.NoError(t, err)
	require.Len(t, code.Code, 6)

	resp, err = c.VerifyResetCode(ctx, "fresh@loopync.test", "bad")
	require.NoError(t, err)
	assert.True(t, loopync.IsBadRequest(resp.Err()))

	resp, err = c.ResetPassword(ctx, "fresh@loopync.test", code.Code, "newsecret")
	require.NoError(t, err)
	require.True(t, resp.OK())
	login(t, c, "FRESH@loopync.test", "newsecret")
}

func TestClient_FriendsAndDM(t *testing.T) {
	srv := loopynctest.NewServer(t)
	c := newClient(t, srv.URL())
	ctx := context.Background()

	resp, err := c.OpenThread(ctx, loopynctest.DemoUserID, loopynctest.PeerUserID)
	require.NoError(t, err)
	assert.True(t, loopync.IsForbidden(resp.Err()))

	resp, err = c.SendFriendRequest(ctx, loopynctest.DemoUserID, loopynctest.PeerUserID)
	require.NoError(t, err)
	created, err := loopync.DecodeAs[loopync.FriendRequestCreated](resp)
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Status)

	resp, err = c.SendFriendRequest(ctx, loopynctest.DemoUserID, loopynctest.PeerUserID)
	require.NoError(t, err)
	assert.True(t, loopync.IsAlready(resp.Err()))

	resp, err = c.ListFriendRequests(ctx, loopynctest.PeerUserID)
	require.NoError(t, err)
	reqs, err := loopync.DecodeAs[[]loopync.FriendRequest](resp)
	require.NoError(t, err)
	require.Len(t, *reqs, 1)
	assert.Equal(t, loopynctest.DemoUserID, (*reqs)[0].FromUser.ID)

	resp, err = c.AcceptFriendRequest(ctx, created.RequestID)
	require.NoError(t, err)
	require.True(t, resp.OK())

	resp, err = c.AcceptFriendRequest(ctx, created.RequestID)
	require.NoError(t, err)
	assert.True(t, loopync.IsAlready(resp.Err()))

	resp, err = c.ListFriends(ctx, loopynctest.DemoUserID)
	require.NoError(t, err)
	page, err := loopync.DecodeAs[loopync.FriendsPage](resp)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, loopynctest.PeerUserID, page.Items[0].User.ID)

	resp, err = c.OpenThread(ctx, loopynctest.DemoUserID, loopynctest.PeerUserID)
	require.NoError(t, err)
	opened, err := loopync.DecodeAs[loopync.ThreadOpened](resp)
	require.NoError(t, err)
	assert.True(t, opened.Existing, "диалог создаётся при принятии заявки")

	resp, err = c.SendMessage(ctx, opened.ThreadID, loopynctest.DemoUserID, "привет")
	require.NoError(t, err)
	require.True(t, resp.OK())

	resp, err = c.ListMessages(ctx, opened.ThreadID, loopynctest.StrangerUserID)
	require.NoError(t, err)
	assert.True(t, loopync.IsForbidden(resp.Err()))

	resp, err = c.ListMessages(ctx, opened.ThreadID, loopynctest.PeerUserID)
	require.NoError(t, err)
	msgs, err := loopync.DecodeAs[loopync.MessagesPage](resp)
	require.NoError(t, err)
	require.Len(t, msgs.Items, 1)
	assert.Equal(t, "привет", *msgs.Items[0].Text)

	resp, err = c.RemoveFriend(ctx, loopynctest.DemoUserID, loopynctest.PeerUserID)
	require.NoError(t, err)
	require.True(t, resp.OK())
	assert.False(t, srv.AreFriends(loopynctest.DemoUserID, loopynctest.PeerUserID))

	resp, err = c.RemoveFriend(ctx, loopynctest.DemoUserID, loopynctest.PeerUserID)
	require.NoError(t, err)
	assert.True(t, loopync.IsNotFound(resp.Err()))
}

func TestClient_Calls(t *testing.T) {
	ctx := context.Background()

	t.Run("без Agora", func(t *testing.T) {
		srv := loopynctest.NewServer(t, loopynctest.WithoutAgora())
		srv.MakeFriends(loopynctest.DemoUserID, loopynctest.PeerUserID)
		c := newClient(t, srv.URL())

		resp, err := c.InitiateCall(ctx, loopynctest.DemoUserID, loopynctest.PeerUserID, loopync.CallTypeVideo)
		require.NoError(t, err)
		assert.True(t, loopync.IsServerError(resp.Err()))
		assert.Contains(t, resp.Detail(), "not configured")
	})

	t.Run("полный цикл", func(t *testing.T) {
		srv := loopynctest.NewServer(t)
		srv.MakeFriends(loopynctest.DemoUserID, loopynctest.PeerUserID)
		c := newClient(t, srv.URL())

		resp, err := c.InitiateCall(ctx, loopynctest.DemoUserID, loopynctest.StrangerUserID, loopync.CallTypeAudio)
		require.NoError(t, err)
		assert.True(t, loopync.IsForbidden(resp.Err()))

		resp, err = c.InitiateCall(ctx, loopynctest.DemoUserID, loopynctest.PeerUserID, loopync.CallTypeVideo)
		require.NoError(t, err)
		call, err := loopync.DecodeAs[loopync.CallInitiated](resp)
		require.NoError(t, err)
		assert.NotEmpty(t, call.CallerToken)
		assert.NotEqual(t, call.CallerUID, call.RecipientUID)

		resp, err = c.AnswerCall(ctx, call.CallID, loopynctest.DemoUserID)
		require.NoError(t, err)
		assert.True(t, loopync.IsForbidden(resp.Err()), "отвечает только получатель")

		resp, err = c.AnswerCall(ctx, call.CallID, loopynctest.PeerUserID)
		require.NoError(t, err)
		answered, err := loopync.DecodeAs[loopync.CallAnswered](resp)
		require.NoError(t, err)
		assert.Equal(t, "ongoing", answered.Status)

		resp, err = c.EndCall(ctx, call.CallID, loopynctest.DemoUserID)
		require.NoError(t, err)
		require.True(t, resp.OK())

		resp, err = c.CallHistory(ctx, loopynctest.DemoUserID)
		require.NoError(t, err)
		history, err := loopync.DecodeAs[[]loopync.Call](resp)
		require.NoError(t, err)
		require.Len(t, *history, 1)
		assert.Equal(t, "ended", (*history)[0].Status)

		resp, err = c.AgoraToken(ctx, "room-1", 42, loopync.AgoraRolePublisher)
		require.NoError(t, err)
		token, err := loopync.DecodeAs[loopync.AgoraToken](resp)
		require.NoError(t, err)
		assert.Equal(t, int64(42), token.UID)
		assert.Equal(t, loopynctest.AgoraAppID, token.AppID)
	})
}

func TestClient_RoomsAndPosts(t *testing.T) {
	srv := loopynctest.NewServer(t)
	c := newClient(t, srv.URL())
	ctx := context.Background()

	resp, err := c.CreateRoom(ctx, loopynctest.DemoUserID, loopync.RoomCreate{Name: "Проверка"})
	require.NoError(t, err)
	room, err := loopync.DecodeAs[loopync.Room](resp)
	require.NoError(t, err)
	assert.Equal(t, room.ID, room.AgoraChannel)

	resp, err = c.JoinRoom(ctx, room.ID, loopynctest.PeerUserID)
	require.NoError(t, err)
	joined, err := loopync.DecodeAs[loopync.RoomJoined](resp)
	require.NoError(t, err)
	assert.Equal(t, loopync.RoleAudience, joined.Participant.Role)

	resp, err = c.InviteToStage(ctx, room.ID, loopynctest.PeerUserID, loopynctest.DemoUserID)
	require.NoError(t, err)
	assert.True(t, loopync.IsForbidden(resp.Err()))

	resp, err = c.InviteToStage(ctx, room.ID, loopynctest.DemoUserID, loopynctest.PeerUserID)
	require.NoError(t, err)
	update, err := loopync.DecodeAs[loopync.ParticipantsUpdate](resp)
	require.NoError(t, err)
	p, ok := update.Find(loopynctest.PeerUserID)
	require.True(t, ok)
	assert.Equal(t, loopync.RoleSpeaker, p.Role)

	resp, err = c.GetRoom(ctx, "missing")
	require.NoError(t, err)
	assert.True(t, loopync.IsNotFound(resp.Err()))

	resp, err = c.LikePost(ctx, "p1", loopynctest.DemoUserID)
	require.NoError(t, err)
	like, err := loopync.DecodeAs[loopync.LikeResult](resp)
	require.NoError(t, err)
	assert.Equal(t, loopync.ActionLiked, like.Action)

	resp, err = c.LikePost(ctx, "p1", loopynctest.DemoUserID)
	require.NoError(t, err)
	like, err = loopync.DecodeAs[loopync.LikeResult](resp)
	require.NoError(t, err)
	assert.Equal(t, loopync.ActionUnliked, like.Action)

	resp, err = c.QuotePost(ctx, "missing", loopynctest.DemoUserID, "x")
	require.NoError(t, err)
	assert.True(t, loopync.IsNotFound(resp.Err()))
}

func TestClient_ValidationErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["query","userId"],"msg":"Field required","type":"missing"}]}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	resp, err := c.ListThreads(context.Background(), "")
	require.NoError(t, err)
	apiErr := resp.Err()
	require.Error(t, apiErr)
	assert.Contains(t, apiErr.Error(), "Field required")
	assert.False(t, loopync.IsBadRequest(apiErr))
}

package suites

import (
	"context"
	"net/http"
	"strings"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/schema"
)

// Friends — заявка демо-пользователя собеседнику и её принятие,
// затем отклонение и отзыв заявок к stranger.
// Повторный прогон против того же стенда проходит: 400 "already"
// на создании заявки считается успехом.
func Friends(opts Options) scenario.Suite {
	s := &friendsSuite{opts: opts}
	user := []string{scenario.KeyUserID}
	pair := []string{scenario.KeyUserID, scenario.KeyPeerUserID}
	return scenario.Suite{
		Name:        NameFriends,
		Description: "заявки в друзья и список друзей",
		Steps: []scenario.Step{
			{Name: "resolve_peer", Description: "поиск собеседника по handle", Requires: user, Run: s.resolvePeer},
			{Name: "send_request", Description: "заявка демо → собеседник", Requires: pair, Run: s.sendRequest},
			{Name: "list_requests", Description: "входящие заявки собеседника", Requires: pair, Run: s.listRequests},
			{Name: "accept_request", Description: "собеседник принимает заявку", Requires: []string{scenario.KeyRequestID}, Run: s.acceptRequest},
			{Name: "friends_list", Description: "собеседник в списке друзей", Requires: pair, Run: s.friendsList},
			{Name: "self_request", Description: "заявка самому себе даёт 400", Requires: user, Run: s.selfRequest},
			{Name: "reject_request", Description: "stranger отклоняет заявку демо", Requires: user, Run: s.rejectRequest},
			{Name: "cancel_request", Description: "демо отзывает заявку stranger", Requires: user, Run: s.cancelRequest},
		},
	}
}

// Статусы заявок в друзья.
const (
	requestPending   = "pending"
	requestDeclined  = "declined"
	requestCancelled = "cancelled"
)

type friendsSuite struct {
	opts Options
}

func (s *friendsSuite) resolvePeer(ctx context.Context, env *scenario.Env) scenario.Outcome {
	self := env.State.String(scenario.KeyUserID)

	if handle := strings.TrimPrefix(s.opts.PeerHandle, "@"); handle != "" {
		resp, err := s.opts.Client.SearchUsers(ctx, handle, 20)
		if out, ok := expectJSON(resp, err, schema.UserList); !ok {
			return out
		}
		var users []loopync.User
		if err := resp.Decode(&users); err != nil {
			return decodeFailed(err)
		}
		for _, u := range users {
			if strings.EqualFold(u.Handle, handle) && u.ID != self {
				env.State.Set(scenario.KeyPeerUserID, u.ID)
				return scenario.Pass("@%s → %s", u.Handle, u.ID)
			}
		}
		env.Logger.Debug("Собеседник не найден поиском, используется id из конфигурации",
			"handle", handle, "found", len(users))
	}

	if s.opts.PeerUserID == "" || s.opts.PeerUserID == self {
		return scenario.Fail("собеседник не найден: handle %q, id %q", s.opts.PeerHandle, s.opts.PeerUserID)
	}
	resp, err := s.opts.Client.GetUser(ctx, s.opts.PeerUserID)
	if out, ok := expectJSON(resp, err, schema.User); !ok {
		return out
	}
	env.State.Set(scenario.KeyPeerUserID, s.opts.PeerUserID)
	return scenario.Pass("id %s из конфигурации", s.opts.PeerUserID)
}

func (s *friendsSuite) sendRequest(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.SendFriendRequest(ctx,
		env.State.String(scenario.KeyUserID), env.State.String(scenario.KeyPeerUserID))
	if err != nil {
		return requestFailed(err)
	}
	if loopync.IsAlready(resp.Err()) {
		return scenario.Pass("идемпотентно: %s", resp.Detail())
	}
	if out, ok := expectJSON(resp, nil, schema.FriendRequestCreated); !ok {
		return out
	}
	created, err := loopync.DecodeAs[loopync.FriendRequestCreated](resp)
	if err != nil {
		return decodeFailed(err)
	}
	env.State.Set(scenario.KeyRequestID, created.RequestID)
	return scenario.Pass("заявка %s", created.RequestID)
}

func (s *friendsSuite) listRequests(ctx context.Context, env *scenario.Env) scenario.Outcome {
	self := env.State.String(scenario.KeyUserID)
	peer := env.State.String(scenario.KeyPeerUserID)

	resp, err := s.opts.Client.ListFriendRequests(ctx, peer)
	if out, ok := expectJSON(resp, err, schema.FriendRequests); !ok {
		return out
	}
	var requests []loopync.FriendRequest
	if err := resp.Decode(&requests); err != nil {
		return decodeFailed(err)
	}
	for _, req := range requests {
		if req.FromUserID == self && req.ToUserID == peer && req.Status == requestPending {
			env.State.Set(scenario.KeyRequestID, req.ID)
			return scenario.Pass("ожидающая заявка %s", req.ID)
		}
	}

	friends, err := friendsWith(ctx, s.opts.Client, self, peer)
	if err != nil {
		return requestFailed(err)
	}
	if friends {
		env.State.Set(scenario.KeyRequestID, nil)
		env.State.Set(scenario.KeyFriendship, true)
		return scenario.Pass("пользователи уже друзья")
	}
	return scenario.Fail("нет ожидающей заявки от %s к %s и пользователи не друзья", self, peer)
}

func (s *friendsSuite) acceptRequest(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.AcceptFriendRequest(ctx, env.State.String(scenario.KeyRequestID))
	if err != nil {
		return requestFailed(err)
	}
	if loopync.IsAlready(resp.Err()) {
		return scenario.Pass("идемпотентно: %s", resp.Detail())
	}
	if out, ok := expectJSON(resp, nil, ""); !ok {
		return out
	}
	env.State.Set(scenario.KeyFriendship, true)
	return scenario.Pass("заявка принята")
}

func (s *friendsSuite) friendsList(ctx context.Context, env *scenario.Env) scenario.Outcome {
	peer := env.State.String(scenario.KeyPeerUserID)
	resp, err := s.opts.Client.ListFriends(ctx, env.State.String(scenario.KeyUserID))
	if out, ok := expectJSON(resp, err, schema.FriendsPage); !ok {
		return out
	}
	page, err := loopync.DecodeAs[loopync.FriendsPage](resp)
	if err != nil {
		return decodeFailed(err)
	}
	for _, f := range page.Items {
		if f.User.ID == peer {
			env.State.Set(scenario.KeyFriendship, true)
			return scenario.Pass("%d друзей, собеседник в списке", len(page.Items))
		}
	}
	return scenario.Fail("собеседника %s нет среди %d друзей", peer, len(page.Items))
}

func (s *friendsSuite) selfRequest(ctx context.Context, env *scenario.Env) scenario.Outcome {
	self := env.State.String(scenario.KeyUserID)
	resp, err := s.opts.Client.SendFriendRequest(ctx, self, self)
	if out, ok := expectStatus(resp, err, http.StatusBadRequest); !ok {
		return out
	}
	return scenario.Pass("400 %s", resp.Detail())
}

func (s *friendsSuite) rejectRequest(ctx context.Context, env *scenario.Env) scenario.Outcome {
	self := env.State.String(scenario.KeyUserID)
	stranger, out, ok := s.stranger(ctx, self)
	if !ok {
		return out
	}
	id, out, ok := s.openRequest(ctx, self, stranger)
	if !ok {
		return out
	}
	resp, err := s.opts.Client.RejectFriendRequest(ctx, id)
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	return s.expectRequestStatus(ctx, stranger, id, requestDeclined)
}

func (s *friendsSuite) cancelRequest(ctx context.Context, env *scenario.Env) scenario.Outcome {
	self := env.State.String(scenario.KeyUserID)
	stranger, out, ok := s.stranger(ctx, self)
	if !ok {
		return out
	}
	id, out, ok := s.openRequest(ctx, self, stranger)
	if !ok {
		return out
	}
	resp, err := s.opts.Client.CancelFriendRequest(ctx, id)
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	return s.expectRequestStatus(ctx, self, id, requestCancelled)
}

// stranger возвращает id пользователя вне круга друзей демо.
// Дружба со stranger делает проверку неприменимой.
func (s *friendsSuite) stranger(ctx context.Context, self string) (string, scenario.Outcome, bool) {
	stranger := s.opts.StrangerUserID
	if stranger == "" || stranger == self {
		return "", scenario.Skip("stranger не задан"), false
	}
	friends, err := friendsWith(ctx, s.opts.Client, self, stranger)
	if err != nil {
		return "", requestFailed(err), false
	}
	if friends {
		return "", scenario.Skip("%s в друзьях, проверка неприменима", stranger), false
	}
	return stranger, scenario.Outcome{}, true
}

// openRequest создаёт заявку from → to или находит уже ожидающую.
func (s *friendsSuite) openRequest(ctx context.Context, from, to string) (string, scenario.Outcome, bool) {
	resp, err := s.opts.Client.SendFriendRequest(ctx, from, to)
	if err != nil {
		return "", requestFailed(err), false
	}
	if !loopync.IsAlready(resp.Err()) {
		if out, ok := expectJSON(resp, nil, schema.FriendRequestCreated); !ok {
			return "", out, false
		}
		created, err := loopync.DecodeAs[loopync.FriendRequestCreated](resp)
		if err != nil {
			return "", decodeFailed(err), false
		}
		return created.RequestID, scenario.Outcome{}, true
	}

	requests, out, ok := s.requestsOf(ctx, to)
	if !ok {
		return "", out, false
	}
	for _, req := range requests {
		if req.FromUserID == from && req.ToUserID == to && req.Status == requestPending {
			return req.ID, scenario.Outcome{}, true
		}
	}
	return "", scenario.Fail("стенд ответил %q, но ожидающей заявки %s → %s нет", resp.Detail(), from, to), false
}

func (s *friendsSuite) expectRequestStatus(ctx context.Context, userID, requestID, want string) scenario.Outcome {
	requests, out, ok := s.requestsOf(ctx, userID)
	if !ok {
		return out
	}
	for _, req := range requests {
		if req.ID != requestID {
			continue
		}
		if req.Status != want {
			return scenario.Fail("статус заявки %s %q, ожидался %q", requestID, req.Status, want)
		}
		return scenario.Pass("заявка %s: %s", requestID, req.Status)
	}
	return scenario.Fail("заявки %s нет среди %d заявок %s", requestID, len(requests), userID)
}

func (s *friendsSuite) requestsOf(ctx context.Context, userID string) ([]loopync.FriendRequest, scenario.Outcome, bool) {
	resp, err := s.opts.Client.ListFriendRequests(ctx, userID)
	if out, ok := expectJSON(resp, err, schema.FriendRequests); !ok {
		return nil, out, false
	}
	var requests []loopync.FriendRequest
	if err := resp.Decode(&requests); err != nil {
		return nil, decodeFailed(err), false
	}
	return requests, scenario.Outcome{}, true
}

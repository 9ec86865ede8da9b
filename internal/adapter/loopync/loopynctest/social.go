package loopynctest

import (
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
)

// Статусы заявок в друзья.
const (
	requestPending   = "pending"
	requestAccepted  = "accepted"
	requestDeclined  = "declined"
	requestCancelled = "cancelled"
)

func (s *Server) handleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "fromUserId", "toUserId")
	if !ok {
		return
	}
	from, to := params["fromUserId"], params["toUserId"]
	if from == to {
		writeDetail(w, http.StatusBadRequest, "Cannot send friend request to yourself")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, friends := s.friendships[pairKey(from, to)]; friends {
		writeDetail(w, http.StatusBadRequest, "Already friends")
		return
	}
	for _, id := range s.requestOrder {
		req := s.requests[id]
		if req.FromUserID == from && req.ToUserID == to && req.Status == requestPending {
			writeDetail(w, http.StatusBadRequest, "Friend request already sent")
			return
		}
	}
	req := &loopync.FriendRequest{
		ID:         uuid.NewString(),
		FromUserID: from,
		ToUserID:   to,
		Status:     requestPending,
		CreatedAt:  s.timestamp(),
	}
	s.requests[req.ID] = req
	s.requestOrder = append(s.requestOrder, req.ID)
	writeJSON(w, http.StatusOK, loopync.FriendRequestCreated{Success: true, RequestID: req.ID, Status: requestPending})
}

func (s *Server) handleListFriendRequests(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	userID := params["userId"]

	s.mu.Lock()
	defer s.mu.Unlock()
	incoming := []loopync.FriendRequest{}
	outgoing := []loopync.FriendRequest{}
	for _, id := range s.requestOrder {
		req := *s.requests[id]
		switch userID {
		case req.ToUserID:
			if rec, found := s.users[req.FromUserID]; found {
				u := rec.user
				req.FromUser = &u
			}
			incoming = append(incoming, req)
		case req.FromUserID:
			if rec, found := s.users[req.ToUserID]; found {
				u := rec.user
				req.ToUser = &u
			}
			outgoing = append(outgoing, req)
		}
	}
	writeJSON(w, http.StatusOK, append(incoming, outgoing...))
}

func (s *Server) handleAcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.pendingRequestLocked(w, mux.Vars(r)["requestId"], "Request already processed")
	if !ok {
		return
	}
	req.Status = requestAccepted
	s.befriendLocked(req.FromUserID, req.ToUserID)
	s.threadLocked(req.FromUserID, req.ToUserID)
	writeJSON(w, http.StatusOK, loopync.StatusResponse{Success: true, Status: requestAccepted})
}

func (s *Server) handleRejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.pendingRequestLocked(w, mux.Vars(r)["requestId"], "Request already processed")
	if !ok {
		return
	}
	req.Status = requestDeclined
	writeJSON(w, http.StatusOK, loopync.StatusResponse{Success: true, Status: requestDeclined})
}

func (s *Server) handleCancelFriendRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.pendingRequestLocked(w, mux.Vars(r)["requestId"], "Can only cancel pending requests")
	if !ok {
		return
	}
	req.Status = requestCancelled
	writeJSON(w, http.StatusOK, loopync.StatusResponse{Success: true, Status: requestCancelled})
}

func (s *Server) pendingRequestLocked(w http.ResponseWriter, id, processedDetail string) (*loopync.FriendRequest, bool) {
	req, found := s.requests[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "Friend request not found")
		return nil, false
	}
	if req.Status != requestPending {
		writeDetail(w, http.StatusBadRequest, processedDetail)
		return nil, false
	}
	return req, true
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	userID := params["userId"]

	s.mu.Lock()
	defer s.mu.Unlock()
	items := []loopync.Friend{}
	for _, id := range s.userOrder {
		if id == userID {
			continue
		}
		f, friends := s.friendships[pairKey(userID, id)]
		if !friends {
			continue
		}
		items = append(items, loopync.Friend{User: s.users[id].user, FriendedAt: f.createdAt})
	}
	writeJSON(w, http.StatusOK, loopync.FriendsPage{Items: items})
}

func (s *Server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unfriendLocked(params["userId"], mux.Vars(r)["friendUserId"]) {
		writeDetail(w, http.StatusNotFound, "Friendship not found")
		return
	}
	writeJSON(w, http.StatusOK, loopync.StatusResponse{Success: true})
}

// threadLocked возвращает диалог пары пользователей, создавая его при отсутствии.
func (s *Server) threadLocked(a, b string) (*dmThread, bool) {
	for _, id := range s.threadOrder {
		t := s.threads[id]
		if (t.user1 == a && t.user2 == b) || (t.user1 == b && t.user2 == a) {
			return t, true
		}
	}
	ids := []string{a, b}
	sort.Strings(ids)
	t := &dmThread{id: uuid.NewString(), user1: ids[0], user2: ids[1], createdAt: s.timestamp()}
	s.threads[t.id] = t
	s.threadOrder = append(s.threadOrder, t.id)
	return t, false
}

func (s *Server) findThreadLocked(a, b string) *dmThread {
	for _, id := range s.threadOrder {
		t := s.threads[id]
		if (t.user1 == a && t.user2 == b) || (t.user1 == b && t.user2 == a) {
			return t
		}
	}
	return nil
}

func (s *Server) handleOpenThread(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId", "peerUserId")
	if !ok {
		return
	}
	userID, peerID := params["userId"], params["peerUserId"]
	if userID == peerID {
		writeDetail(w, http.StatusBadRequest, "Cannot create thread with yourself")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.findThreadLocked(userID, peerID); t != nil {
		writeJSON(w, http.StatusOK, loopync.ThreadOpened{ThreadID: t.id, Existing: true})
		return
	}
	if _, friends := s.friendships[pairKey(userID, peerID)]; !friends {
		writeDetail(w, http.StatusForbidden, "Must be friends to start a conversation")
		return
	}
	t, _ := s.threadLocked(userID, peerID)
	writeJSON(w, http.StatusOK, loopync.ThreadOpened{ThreadID: t.id, Existing: false})
}

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	userID := params["userId"]

	s.mu.Lock()
	defer s.mu.Unlock()
	items := []loopync.Thread{}
	for _, id := range s.threadOrder {
		t := s.threads[id]
		if t.user1 != userID && t.user2 != userID {
			continue
		}
		peerID := t.user1
		if peerID == userID {
			peerID = t.user2
		}
		rec, found := s.users[peerID]
		if !found {
			continue
		}
		peer := rec.user
		item := loopync.Thread{ID: t.id, Peer: &peer, UpdatedAt: t.createdAt}
		if t.lastMessageAt != "" {
			item.UpdatedAt = t.lastMessageAt
		}
		msgs := s.messages[t.id]
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			item.LastMessage = &last
		}
		for _, m := range msgs {
			if m.SenderID != userID {
				item.UnreadCount++
			}
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].UpdatedAt > items[j].UpdatedAt })
	writeJSON(w, http.StatusOK, loopync.ThreadsPage{Items: items})
}

func (s *Server) participantThreadLocked(w http.ResponseWriter, threadID, userID string) (*dmThread, bool) {
	t, found := s.threads[threadID]
	if !found {
		writeDetail(w, http.StatusNotFound, "Thread not found")
		return nil, false
	}
	if userID != t.user1 && userID != t.user2 {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return nil, false
	}
	return t, true
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.participantThreadLocked(w, mux.Vars(r)["threadId"], params["userId"])
	if !ok {
		return
	}
	items := append([]loopync.Message{}, s.messages[t.id]...)
	writeJSON(w, http.StatusOK, loopync.MessagesPage{Items: items})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	var payload struct {
		Text     *string `json:"text"`
		MediaURL *string `json:"mediaUrl"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	userID := params["userId"]

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.participantThreadLocked(w, mux.Vars(r)["threadId"], userID)
	if !ok {
		return
	}
	if (payload.Text == nil || *payload.Text == "") && (payload.MediaURL == nil || *payload.MediaURL == "") {
		writeDetail(w, http.StatusBadRequest, "Message must have text or media")
		return
	}
	msg := loopync.Message{
		ID:        uuid.NewString(),
		ThreadID:  t.id,
		SenderID:  userID,
		Text:      payload.Text,
		MediaURL:  payload.MediaURL,
		CreatedAt: s.timestamp(),
	}
	s.messages[t.id] = append(s.messages[t.id], msg)
	t.lastMessageAt = msg.CreatedAt
	writeJSON(w, http.StatusOK, loopync.MessageSent{MessageID: msg.ID, Timestamp: msg.CreatedAt})
}

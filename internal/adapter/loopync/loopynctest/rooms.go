package loopynctest

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
)

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	var req loopync.RoomCreate
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []validationIssue{{Loc: []string{"body", "name"}, Msg: "Field required", Type: "missing"}},
		})
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	host, found := s.users[params["userId"]]
	if !found {
		writeDetail(w, http.StatusBadRequest, "User session expired. Please logout and login again.")
		return
	}
	id := uuid.NewString()
	room := &voiceRoom{
		Room: loopync.Room{
			ID:           id,
			Name:         req.Name,
			Description:  req.Description,
			Category:     req.Category,
			HostID:       host.user.ID,
			HostName:     host.user.Name,
			AgoraChannel: id,
			Moderators:   []string{host.user.ID},
			Participants: []loopync.Participant{{
				UserID:   host.user.ID,
				UserName: host.user.Name,
				Avatar:   host.user.Avatar,
				Role:     loopync.RoleHost,
				IsHost:   true,
				JoinedAt: s.timestamp(),
			}},
			Status:    "active",
			IsPrivate: req.IsPrivate,
			Tags:      req.Tags,
		},
		maxParticipants: 50,
		maxSpeakers:     20,
	}
	s.rooms[id] = room
	s.roomOrder = append(s.roomOrder, id)
	writeJSON(w, http.StatusOK, room.Room)
}

func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := []loopync.Room{}
	for i := len(s.roomOrder) - 1; i >= 0; i-- {
		room := s.rooms[s.roomOrder[i]]
		if room.Status == "active" {
			rooms = append(rooms, room.Room)
		}
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) roomLocked(w http.ResponseWriter, r *http.Request) (*voiceRoom, bool) {
	room, found := s.rooms[mux.Vars(r)["roomId"]]
	if !found {
		writeDetail(w, http.StatusNotFound, "Room not found")
		return nil, false
	}
	return room, true
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.roomLocked(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, room.Room)
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	userID := params["userId"]
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.roomLocked(w, r)
	if !ok {
		return
	}
	if room.Status != "active" {
		writeDetail(w, http.StatusBadRequest, "Room is not active")
		return
	}
	if _, in := room.Participant(userID); in {
		writeJSON(w, http.StatusOK, loopync.RoomJoined{Message: "Already in room", Room: &room.Room})
		return
	}
	if len(room.Participants) >= room.maxParticipants {
		writeDetail(w, http.StatusBadRequest, "Room is full")
		return
	}
	user, found := s.users[userID]
	if !found {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	isHost := userID == room.HostID
	isModerator := contains(room.Moderators, userID)
	role := loopync.RoleAudience
	switch {
	case isHost:
		role = loopync.RoleHost
	case isModerator:
		role = loopync.RoleModerator
	}
	p := loopync.Participant{
		UserID:   userID,
		UserName: user.user.Name,
		Avatar:   user.user.Avatar,
		Role:     role,
		IsHost:   isHost,
		IsMuted:  !(isHost || isModerator),
		JoinedAt: s.timestamp(),
	}
	room.Participants = append(room.Participants, p)
	snapshot := room.Room
	writeJSON(w, http.StatusOK, loopync.RoomJoined{Message: "Joined room", Room: &snapshot, Participant: &p})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	userID := params["userId"]
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.roomLocked(w, r)
	if !ok {
		return
	}
	remaining := make([]loopync.Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		if p.UserID != userID {
			remaining = append(remaining, p)
		}
	}
	room.Participants = remaining

	switch {
	case room.HostID == userID && len(remaining) > 0:
		room.HostID = remaining[0].UserID
		room.HostName = remaining[0].UserName
		writeJSON(w, http.StatusOK, loopync.RoomLeft{Message: "Left room, host transferred", NewHostID: room.HostID})
	case len(remaining) == 0:
		room.Status = "ended"
		writeJSON(w, http.StatusOK, loopync.RoomLeft{Message: "Room ended"})
	default:
		writeJSON(w, http.StatusOK, loopync.RoomLeft{Message: "Left room", ParticipantCount: len(remaining)})
	}
}

func (s *Server) handleRaiseHand(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.roomLocked(w, r)
	if !ok {
		return
	}
	message := "Hand lowered"
	for i := range room.Participants {
		if room.Participants[i].UserID == params["userId"] {
			room.Participants[i].RaisedHand = !room.Participants[i].RaisedHand
			if room.Participants[i].RaisedHand {
				message = "Hand raised"
			}
			break
		}
	}
	writeJSON(w, http.StatusOK, loopync.ParticipantsUpdate{Message: message, Participants: room.Participants})
}

func (s *Server) handleInviteToStage(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId", "targetUserId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.roomLocked(w, r)
	if !ok {
		return
	}
	userID := params["userId"]
	if userID != room.HostID && !contains(room.Moderators, userID) {
		writeDetail(w, http.StatusForbidden, "Only hosts and moderators can invite to stage")
		return
	}
	speakers := 0
	for _, p := range room.Participants {
		switch p.Role {
		case loopync.RoleHost, loopync.RoleModerator, loopync.RoleSpeaker:
			speakers++
		}
	}
	if speakers >= room.maxSpeakers {
		writeDetail(w, http.StatusBadRequest, "Stage is full")
		return
	}
	for i := range room.Participants {
		if room.Participants[i].UserID == params["targetUserId"] {
			room.Participants[i].Role = loopync.RoleSpeaker
			room.Participants[i].RaisedHand = false
			room.Participants[i].IsMuted = false
			break
		}
	}
	writeJSON(w, http.StatusOK, loopync.ParticipantsUpdate{Message: "User invited to stage", Participants: room.Participants})
}

package loopynctest

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
)

const agoraNotConfigured = "Agora credentials not configured"

// agoraUID повторяет преобразование id пользователя в числовой uid Agora.
func agoraUID(userID string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int64(h.Sum32() % 1_000_000_000)
}

func (s *Server) agoraToken(channel string, uid int64) string {
	return fmt.Sprintf("006%s-%s-%d-%d", AgoraAppID, channel, uid, s.now().Add(time.Hour).Unix())
}

func (s *Server) handleInitiateCall(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "callerId", "recipientId")
	if !ok {
		return
	}
	callType := r.URL.Query().Get("callType")
	if callType == "" {
		callType = loopync.CallTypeVideo
	}
	callerID, recipientID := params["callerId"], params["recipientId"]

	s.mu.Lock()
	defer s.mu.Unlock()
	caller, found := s.users[callerID]
	if !found {
		writeDetail(w, http.StatusNotFound, "Caller not found")
		return
	}
	if !contains(caller.user.Friends, recipientID) {
		writeDetail(w, http.StatusForbidden, "You can only call friends")
		return
	}
	if !s.agora {
		writeDetail(w, http.StatusInternalServerError, agoraNotConfigured)
		return
	}

	channel := "call-" + uuid.NewString()[:12]
	call := &loopync.Call{
		ID:          uuid.NewString(),
		CallerID:    callerID,
		RecipientID: recipientID,
		CallType:    callType,
		Status:      "ringing",
		ChannelName: channel,
		StartedAt:   s.timestamp(),
	}
	s.calls[call.ID] = call
	s.callOrder = append(s.callOrder, call.ID)

	callerUID, recipientUID := agoraUID(callerID), agoraUID(recipientID)
	writeJSON(w, http.StatusOK, loopync.CallInitiated{
		CallID:         call.ID,
		ChannelName:    channel,
		AppID:          AgoraAppID,
		CallerToken:    s.agoraToken(channel, callerUID),
		CallerUID:      callerUID,
		RecipientToken: s.agoraToken(channel, recipientUID),
		RecipientUID:   recipientUID,
		ExpiresIn:      3600,
	})
}

func (s *Server) handleAnswerCall(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	call, found := s.calls[mux.Vars(r)["callId"]]
	if !found {
		writeDetail(w, http.StatusNotFound, "Call not found")
		return
	}
	if params["userId"] != call.RecipientID {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return
	}
	call.Status = "ongoing"
	writeJSON(w, http.StatusOK, loopync.CallAnswered{Message: "Call answered", Status: call.Status})
}

func (s *Server) handleRejectCall(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if call, found := s.calls[mux.Vars(r)["callId"]]; found {
		call.Status = "rejected"
		call.EndedAt = s.timestamp()
	}
	writeJSON(w, http.StatusOK, loopync.StatusResponse{Success: true})
}

func (s *Server) handleEndCall(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	call, found := s.calls[mux.Vars(r)["callId"]]
	if !found {
		writeDetail(w, http.StatusNotFound, "Call not found")
		return
	}
	if userID := params["userId"]; userID != call.CallerID && userID != call.RecipientID {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return
	}
	started, err := time.Parse(time.RFC3339Nano, call.StartedAt)
	duration := 0
	if err == nil {
		duration = int(s.now().Sub(started).Seconds())
	}
	call.Status = "ended"
	call.EndedAt = s.timestamp()
	call.Duration = duration
	writeJSON(w, http.StatusOK, loopync.CallEnded{Message: "Call ended", Duration: duration})
}

func (s *Server) handleCallHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	s.mu.Lock()
	defer s.mu.Unlock()
	history := []loopync.Call{}
	for i := len(s.callOrder) - 1; i >= 0; i-- {
		call := s.calls[s.callOrder[i]]
		if call.CallerID == userID || call.RecipientID == userID {
			history = append(history, *call)
		}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleAgoraToken(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "channelName", "uid")
	if !ok {
		return
	}
	uid, err := strconv.ParseInt(params["uid"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []validationIssue{{Loc: []string{"query", "uid"}, Msg: "Input should be a valid integer", Type: "int_parsing"}},
		})
		return
	}
	if !s.agora {
		writeDetail(w, http.StatusInternalServerError, agoraNotConfigured)
		return
	}
	writeJSON(w, http.StatusOK, loopync.AgoraToken{
		Token:       s.agoraToken(params["channelName"], uid),
		AppID:       AgoraAppID,
		ChannelName: params["channelName"],
		UID:         uid,
		ExpiresIn:   3600,
	})
}

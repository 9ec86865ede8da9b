package loopynctest

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
)

func (s *Server) handleSeed(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.reset()
	result := loopync.SeedResult{
		Message: "Data seeded successfully",
		Users:   len(s.users),
		Posts:   len(s.posts),
		Reels:   len(s.reels),
		Venues:  len(s.venues),
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req loopync.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Handle = strings.TrimSpace(req.Handle)
	req.Password = strings.TrimSpace(req.Password)
	if req.Handle == "" || req.Name == "" || req.Password == "" || !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []validationIssue{{Loc: []string{"body"}, Msg: "value is not a valid signup payload", Type: "value_error"}},
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findUserByHandleLocked(req.Handle) != nil {
		writeDetail(w, http.StatusBadRequest,
			fmt.Sprintf("Username '@%s' is already taken. Please choose a different username.", req.Handle))
		return
	}
	if s.findUserByEmailLocked(req.Email) != nil {
		writeDetail(w, http.StatusBadRequest,
			fmt.Sprintf("Email '%s' is already registered. Please login instead.", req.Email))
		return
	}
	u := s.addUserLocked("", req.Handle, req.Name, req.Email, req.Password)
	u.Phone = req.Phone
	s.users[u.ID].user.Phone = req.Phone
	writeJSON(w, http.StatusOK, loopync.AuthResponse{Token: s.Token(u.ID), User: u})
}

func (s *Server) handleCheckHandle(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	s.mu.Lock()
	taken := s.findUserByHandleLocked(handle) != nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, loopync.HandleAvailability{Available: !taken, Handle: handle})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	rec := s.findUserByEmailLocked(req.Email)
	var user loopync.User
	ok := rec != nil && rec.password == strings.TrimSpace(req.Password)
	if ok {
		user = rec.user
	}
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, loopync.AuthResponse{Token: s.Token(user.ID), User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		writeDetail(w, http.StatusForbidden, "Not authenticated")
		return
	}
	userID, err := s.UserIDFromToken(token)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	user, ok := s.User(userID)
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findUserByEmailLocked(req.Email)
	if rec == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "If the email exists, a reset code will be sent",
		})
		return
	}
	rec.resetCode = fmt.Sprintf("%06d", rand.IntN(1_000_000))
	writeJSON(w, http.StatusOK, loopync.ResetCodeResponse{
		Success: true,
		Message: "If the email exists, a reset code will be sent",
		Code:    rec.resetCode,
	})
}

func (s *Server) handleVerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findUserByEmailLocked(req.Email)
	if rec == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if rec.resetCode == "" || rec.resetCode != req.Code {
		writeDetail(w, http.StatusBadRequest, "Invalid reset code")
		return
	}
	writeJSON(w, http.StatusOK, loopync.VerifyResetResponse{Success: true, Message: "Code verified", Token: req.Code})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findUserByEmailLocked(req.Email)
	if rec == nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if rec.resetCode == "" || rec.resetCode != req.Code {
		writeDetail(w, http.StatusBadRequest, "Invalid reset code")
		return
	}
	rec.password = req.NewPassword
	rec.resetCode = ""
	writeJSON(w, http.StatusOK, loopync.StatusResponse{Success: true, Message: "Password reset successfully"})
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "q")
	if !ok {
		return
	}
	q := strings.ToLower(strings.TrimSpace(params["q"]))
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	result := []loopync.User{}
	if len(q) < 2 {
		writeJSON(w, http.StatusOK, result)
		return
	}
	s.mu.Lock()
	for _, id := range s.userOrder {
		u := s.users[id].user
		if strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Handle), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			result = append(result, u)
			if len(result) == limit {
				break
			}
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.User(mux.Vars(r)["userId"])
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

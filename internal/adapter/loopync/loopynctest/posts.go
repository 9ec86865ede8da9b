package loopynctest

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
)

// withAuthorLocked возвращает копию поста с профилем автора.
func (s *Server) withAuthorLocked(p *loopync.Post) loopync.Post {
	out := *p
	if rec, found := s.users[p.AuthorID]; found {
		u := rec.user
		out.Author = &u
	}
	return out
}

func (s *Server) addPostLocked(authorID, text string, media *string, audience string, hashtags []string) *loopync.Post {
	if audience == "" {
		audience = "public"
	}
	if hashtags == nil {
		hashtags = []string{}
	}
	p := &loopync.Post{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		Text:       text,
		Media:      media,
		Audience:   audience,
		Hashtags:   hashtags,
		LikedBy:    []string{},
		RepostedBy: []string{},
		CreatedAt:  s.timestamp(),
	}
	s.posts[p.ID] = p
	s.postOrder = append(s.postOrder, p.ID)
	return p
}

func (s *Server) handleListPosts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := []loopync.Post{}
	for i := len(s.postOrder) - 1; i >= 0; i-- {
		posts = append(posts, s.withAuthorLocked(s.posts[s.postOrder[i]]))
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "authorId")
	if !ok {
		return
	}
	var req loopync.PostCreate
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.addPostLocked(params["authorId"], req.Text, req.Media, req.Audience, req.Hashtags)
	writeJSON(w, http.StatusOK, s.withAuthorLocked(p))
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.posts[mux.Vars(r)["postId"]]
	if !found {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	userID := params["userId"]
	action := loopync.ActionLiked
	if contains(p.LikedBy, userID) {
		p.LikedBy = without(p.LikedBy, userID)
		p.Stats.Likes--
		action = loopync.ActionUnliked
	} else {
		p.LikedBy = append(p.LikedBy, userID)
		p.Stats.Likes++
	}
	writeJSON(w, http.StatusOK, loopync.LikeResult{Action: action, Likes: p.Stats.Likes})
}

func (s *Server) handleRepostPost(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := s.posts[mux.Vars(r)["postId"]]
	if !found {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	userID := params["userId"]
	action := loopync.ActionReposted
	if contains(p.RepostedBy, userID) {
		p.RepostedBy = without(p.RepostedBy, userID)
		p.Stats.Reposts--
		action = loopync.ActionUnreposted
	} else {
		p.RepostedBy = append(p.RepostedBy, userID)
		p.Stats.Reposts++
	}
	writeJSON(w, http.StatusOK, loopync.RepostResult{Action: action, Reposts: p.Stats.Reposts})
}

func (s *Server) handleQuotePost(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "authorId", "text")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	original, found := s.posts[mux.Vars(r)["postId"]]
	if !found {
		writeDetail(w, http.StatusNotFound, "Original post not found")
		return
	}
	original.Stats.Quotes++
	p := s.addPostLocked(params["authorId"], params["text"], nil, "", nil)
	quoted := original.ID
	p.QuotedPostID = &quoted
	writeJSON(w, http.StatusOK, s.withAuthorLocked(p))
}

func (s *Server) handleReplyPost(w http.ResponseWriter, r *http.Request) {
	params, ok := queryParams(w, r, "authorId", "text")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	original, found := s.posts[mux.Vars(r)["postId"]]
	if !found {
		writeDetail(w, http.StatusNotFound, "Original post not found")
		return
	}
	original.Stats.Replies++
	var media *string
	if mediaURL := r.URL.Query().Get("mediaUrl"); mediaURL != "" {
		media = &mediaURL
	}
	p := s.addPostLocked(params["authorId"], params["text"], media, "", nil)
	replyTo := original.ID
	p.ReplyToPostID = &replyTo
	writeJSON(w, http.StatusOK, s.withAuthorLocked(p))
}

func (s *Server) handleListVenues(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.venues)
}

func (s *Server) handleGetVenue(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["venueId"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.venues {
		if v.ID == id {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Venue not found")
}

func (s *Server) handleListReels(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reels := make([]loopync.Reel, 0, len(s.reels))
	for _, reel := range s.reels {
		if rec, found := s.users[reel.AuthorID]; found {
			u := rec.user
			reel.Author = &u
		}
		reels = append(reels, reel)
	}
	writeJSON(w, http.StatusOK, reels)
}

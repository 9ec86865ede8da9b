package loopync

// User — профиль пользователя.
type User struct {
	ID         string   `json:"id"`
	Handle     string   `json:"handle"`
	Name       string   `json:"name"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	IsVerified bool     `json:"isVerified,omitempty"`
	Friends    []string `json:"friends,omitempty"`
	CreatedAt  string   `json:"createdAt,omitempty"`
}

// SignupRequest — тело POST /auth/signup.
type SignupRequest struct {
	Handle   string `json:"handle"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// AuthResponse — ответ signup и login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// HandleAvailability — ответ GET /auth/check-handle/{handle}.
type HandleAvailability struct {
	Available bool   `json:"available"`
	Handle    string `json:"handle"`
}

// ResetCodeResponse — ответ forgot-password. Code возвращается только preview-стендом.
type ResetCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// VerifyResetResponse — ответ verify-reset-code.
type VerifyResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// StatusResponse — общий ответ мутирующих операций.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

// FriendRequestCreated — ответ POST /friend-requests.
type FriendRequestCreated struct {
	Success   bool   `json:"success"`
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
}

// FriendRequest — входящая или исходящая заявка в друзья.
type FriendRequest struct {
	ID         string `json:"id"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Status     string `json:"status"`
	FromUser   *User  `json:"fromUser,omitempty"`
	ToUser     *User  `json:"toUser,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// Friend — элемент списка друзей.
type Friend struct {
	User       User   `json:"user"`
	FriendedAt string `json:"friendedAt"`
}

// FriendsPage — страница списка друзей.
type FriendsPage struct {
	Items      []Friend `json:"items"`
	NextCursor *string  `json:"nextCursor"`
}

// Message — сообщение личной переписки.
type Message struct {
	ID        string  `json:"id"`
	ThreadID  string  `json:"threadId"`
	SenderID  string  `json:"senderId"`
	Text      *string `json:"text"`
	MediaURL  *string `json:"mediaUrl,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// Thread — диалог в списке диалогов.
type Thread struct {
	ID          string   `json:"id"`
	Peer        *User    `json:"peer"`
	LastMessage *Message `json:"lastMessage"`
	UnreadCount int      `json:"unreadCount"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// ThreadsPage — страница диалогов.
type ThreadsPage struct {
	Items      []Thread `json:"items"`
	NextCursor *string  `json:"nextCursor"`
}

// ThreadOpened — ответ POST /dm/thread.
type ThreadOpened struct {
	ThreadID string `json:"threadId"`
	Existing bool   `json:"existing"`
}

// MessagesPage — страница сообщений диалога в хронологическом порядке.
type MessagesPage struct {
	Items      []Message `json:"items"`
	NextCursor *string   `json:"nextCursor"`
}

// MessageSent — ответ отправки сообщения.
type MessageSent struct {
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp"`
}

// CallInitiated — ответ POST /calls/initiate.
type CallInitiated struct {
	CallID         string `json:"callId"`
	ChannelName    string `json:"channelName"`
	AppID          string `json:"appId"`
	CallerToken    string `json:"callerToken"`
	CallerUID      int64  `json:"callerUid"`
	RecipientToken string `json:"recipientToken"`
	RecipientUID   int64  `json:"recipientUid"`
	ExpiresIn      int    `json:"expiresIn"`
}

// CallAnswered — ответ POST /calls/{id}/answer.
type CallAnswered struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// CallEnded — ответ POST /calls/{id}/end.
type CallEnded struct {
	Message  string `json:"message"`
	Duration int    `json:"duration"`
}

// Call — запись истории звонков.
type Call struct {
	ID          string `json:"id"`
	CallerID    string `json:"callerId"`
	RecipientID string `json:"recipientId"`
	CallType    string `json:"callType"`
	Status      string `json:"status"`
	ChannelName string `json:"channelName"`
	StartedAt   string `json:"startedAt"`
	EndedAt     string `json:"endedAt,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

// AgoraToken — ответ GET /agora/token.
type AgoraToken struct {
	Token       string `json:"token"`
	AppID       string `json:"appId"`
	ChannelName string `json:"channelName"`
	UID         int64  `json:"uid"`
	ExpiresIn   int    `json:"expiresIn"`
}

// RoomCreate — тело POST /rooms.
type RoomCreate struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	IsPrivate   bool     `json:"isPrivate"`
	Tags        []string `json:"tags"`
}

// Participant — участник комнаты.
type Participant struct {
	UserID     string `json:"userId"`
	UserName   string `json:"userName"`
	Avatar     string `json:"avatar,omitempty"`
	Role       string `json:"role"`
	IsHost     bool   `json:"isHost"`
	IsMuted    bool   `json:"isMuted"`
	RaisedHand bool   `json:"raisedHand"`
	JoinedAt   string `json:"joinedAt,omitempty"`
}

// Room — голосовая комната.
type Room struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	HostID       string        `json:"hostId"`
	HostName     string        `json:"hostName,omitempty"`
	AgoraChannel string        `json:"agoraChannel"`
	Moderators   []string      `json:"moderators"`
	Participants []Participant `json:"participants"`
	Status       string        `json:"status"`
	IsPrivate    bool          `json:"isPrivate"`
	Tags         []string      `json:"tags"`
}

// Participant возвращает участника по id пользователя.
func (r *Room) Participant(userID string) (Participant, bool) {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

// RoomJoined — ответ POST /rooms/{id}/join.
type RoomJoined struct {
	Message     string       `json:"message"`
	Room        *Room        `json:"room"`
	Participant *Participant `json:"participant,omitempty"`
}

// RoomLeft — ответ POST /rooms/{id}/leave.
type RoomLeft struct {
	Message          string `json:"message"`
	ParticipantCount int    `json:"participantCount,omitempty"`
	NewHostID        string `json:"newHostId,omitempty"`
}

// ParticipantsUpdate — ответ raise-hand и invite-to-stage.
type ParticipantsUpdate struct {
	Message      string        `json:"message"`
	Participants []Participant `json:"participants"`
}

// Find возвращает участника по id пользователя.
func (u *ParticipantsUpdate) Find(userID string) (Participant, bool) {
	room := Room{Participants: u.Participants}
	return room.Participant(userID)
}

// PostCreate — тело POST /posts.
type PostCreate struct {
	Text     string   `json:"text"`
	Media    *string  `json:"media"`
	Audience string   `json:"audience"`
	Hashtags []string `json:"hashtags"`
}

// PostStats — счётчики поста.
type PostStats struct {
	Likes   int `json:"likes"`
	Quotes  int `json:"quotes"`
	Reposts int `json:"reposts"`
	Replies int `json:"replies"`
}

// Post — пост ленты.
type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"authorId"`
	Text          string    `json:"text"`
	Media         *string   `json:"media"`
	Audience      string    `json:"audience"`
	Hashtags      []string  `json:"hashtags"`
	Stats         PostStats `json:"stats"`
	LikedBy       []string  `json:"likedBy"`
	RepostedBy    []string  `json:"repostedBy"`
	QuotedPostID  *string   `json:"quotedPostId"`
	ReplyToPostID *string   `json:"replyToPostId"`
	Author        *User     `json:"author,omitempty"`
	CreatedAt     string    `json:"createdAt"`
}

// LikeResult — ответ POST /posts/{id}/like.
type LikeResult struct {
	Action string `json:"action"`
	Likes  int    `json:"likes"`
}

// RepostResult — ответ POST /posts/{id}/repost.
type RepostResult struct {
	Action  string `json:"action"`
	Reposts int    `json:"reposts"`
}

// MenuItem — позиция меню заведения.
type MenuItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Venue — заведение.
type Venue struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Avatar      string     `json:"avatar"`
	Location    string     `json:"location"`
	Rating      float64    `json:"rating"`
	MenuItems   []MenuItem `json:"menuItems"`
}

// Reel — короткое видео.
type Reel struct {
	ID       string         `json:"id"`
	AuthorID string         `json:"authorId"`
	VideoURL string         `json:"videoUrl"`
	Thumb    string         `json:"thumb"`
	Caption  string         `json:"caption"`
	Stats    map[string]int `json:"stats"`
	Author   *User          `json:"author,omitempty"`
}

// SeedResult — ответ POST /seed.
type SeedResult struct {
	Message string `json:"message"`
	Users   int    `json:"users"`
	Posts   int    `json:"posts"`
	Reels   int    `json:"reels"`
	Venues  int    `json:"venues"`
}

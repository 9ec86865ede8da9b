package loopync

import "context"

// AuthAPI — регистрация, вход и сброс пароля.
type AuthAPI interface {
	Signup(ctx context.Context, req SignupRequest) (*Response, error)
	Login(ctx context.Context, email, password string) (*Response, error)
	Me(ctx context.Context) (*Response, error)
	CheckHandle(ctx context.Context, handle string) (*Response, error)
	ForgotPassword(ctx context.Context, email string) (*Response, error)
	VerifyResetCode(ctx context.Context, email, code string) (*Response, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) (*Response, error)
}

// UsersAPI — поиск и чтение профилей.
type UsersAPI interface {
	SearchUsers(ctx context.Context, query string, limit int) (*Response, error)
	GetUser(ctx context.Context, userID string) (*Response, error)
}

// FriendsAPI — заявки в друзья и список друзей.
type FriendsAPI interface {
	SendFriendRequest(ctx context.Context, fromUserID, toUserID string) (*Response, error)
	ListFriendRequests(ctx context.Context, userID string) (*Response, error)
	AcceptFriendRequest(ctx context.Context, requestID string) (*Response, error)
	RejectFriendRequest(ctx context.Context, requestID string) (*Response, error)
	CancelFriendRequest(ctx context.Context, requestID string) (*Response, error)
	ListFriends(ctx context.Context, userID string) (*Response, error)
	RemoveFriend(ctx context.Context, userID, friendUserID string) (*Response, error)
}

// DMAPI — личная переписка.
type DMAPI interface {
	OpenThread(ctx context.Context, userID, peerUserID string) (*Response, error)
	ListThreads(ctx context.Context, userID string) (*Response, error)
	SendMessage(ctx context.Context, threadID, userID, text string) (*Response, error)
	ListMessages(ctx context.Context, threadID, userID string) (*Response, error)
}

// CallsAPI — звонки и токены Agora.
type CallsAPI interface {
	InitiateCall(ctx context.Context, callerID, recipientID, callType string) (*Response, error)
	AnswerCall(ctx context.Context, callID, userID string) (*Response, error)
	RejectCall(ctx context.Context, callID string) (*Response, error)
	EndCall(ctx context.Context, callID, userID string) (*Response, error)
	CallHistory(ctx context.Context, userID string) (*Response, error)
	AgoraToken(ctx context.Context, channelName string, uid int64, role int) (*Response, error)
}

// RoomsAPI — голосовые комнаты.
type RoomsAPI interface {
	CreateRoom(ctx context.Context, hostID string, room RoomCreate) (*Response, error)
	ListRooms(ctx context.Context) (*Response, error)
	GetRoom(ctx context.Context, roomID string) (*Response, error)
	JoinRoom(ctx context.Context, roomID, userID string) (*Response, error)
	LeaveRoom(ctx context.Context, roomID, userID string) (*Response, error)
	RaiseHand(ctx context.Context, roomID, userID string) (*Response, error)
	InviteToStage(ctx context.Context, roomID, userID, targetUserID string) (*Response, error)
}

// PostsAPI — лента постов.
type PostsAPI interface {
	ListPosts(ctx context.Context) (*Response, error)
	CreatePost(ctx context.Context, authorID string, post PostCreate) (*Response, error)
	LikePost(ctx context.Context, postID, userID string) (*Response, error)
	RepostPost(ctx context.Context, postID, userID string) (*Response, error)
	QuotePost(ctx context.Context, postID, authorID, text string) (*Response, error)
	ReplyPost(ctx context.Context, postID, authorID, text string) (*Response, error)
}

// CatalogAPI — демо-данные, заведения и видео.
type CatalogAPI interface {
	Seed(ctx context.Context) (*Response, error)
	ListVenues(ctx context.Context) (*Response, error)
	GetVenue(ctx context.Context, venueID string) (*Response, error)
	ListReels(ctx context.Context) (*Response, error)
}

// API объединяет все группы операций стенда.
type API interface {
	AuthAPI
	UsersAPI
	FriendsAPI
	DMAPI
	CallsAPI
	RoomsAPI
	PostsAPI
	CatalogAPI
}

// Compile-time проверка реализации интерфейса.
var _ API = (*Client)(nil)

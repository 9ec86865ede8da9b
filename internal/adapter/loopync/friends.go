package loopync

import (
	"context"
	"net/url"
)

// SendFriendRequest отправляет заявку в друзья от fromUserID к toUserID.
func (c *Client) SendFriendRequest(ctx context.Context, fromUserID, toUserID string) (*Response, error) {
	return c.post(ctx, "/friend-requests", url.Values{
		"fromUserId": {fromUserID},
		"toUserId":   {toUserID},
	}, nil)
}

// ListFriendRequests возвращает входящие и исходящие заявки пользователя.
func (c *Client) ListFriendRequests(ctx context.Context, userID string) (*Response, error) {
	return c.get(ctx, "/friend-requests", url.Values{"userId": {userID}})
}

// AcceptFriendRequest принимает заявку. Сервер создаёт дружбу в обе стороны и диалог.
func (c *Client) AcceptFriendRequest(ctx context.Context, requestID string) (*Response, error) {
	return c.post(ctx, "/friend-requests/"+escape(requestID)+"/accept", nil, nil)
}

// RejectFriendRequest отклоняет заявку.
func (c *Client) RejectFriendRequest(ctx context.Context, requestID string) (*Response, error) {
	return c.post(ctx, "/friend-requests/"+escape(requestID)+"/reject", nil, nil)
}

// CancelFriendRequest отзывает ожидающую заявку.
func (c *Client) CancelFriendRequest(ctx context.Context, requestID string) (*Response, error) {
	return c.post(ctx, "/friend-requests/"+escape(requestID)+"/cancel", nil, nil)
}

// ListFriends возвращает первую страницу друзей пользователя.
func (c *Client) ListFriends(ctx context.Context, userID string) (*Response, error) {
	return c.get(ctx, "/friends/list", url.Values{"userId": {userID}})
}

// RemoveFriend удаляет дружбу между userID и friendUserID.
func (c *Client) RemoveFriend(ctx context.Context, userID, friendUserID string) (*Response, error) {
	return c.delete(ctx, "/friends/"+escape(friendUserID), url.Values{"userId": {userID}})
}

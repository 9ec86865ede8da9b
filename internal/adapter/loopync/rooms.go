package loopync

import (
	"context"
	"net/url"
)

// Роли участников комнаты.
const (
	RoleHost      = "host"
	RoleModerator = "moderator"
	RoleSpeaker   = "speaker"
	RoleAudience  = "audience"
)

// CreateRoom создаёт комнату, hostID становится ведущим.
func (c *Client) CreateRoom(ctx context.Context, hostID string, room RoomCreate) (*Response, error) {
	return c.post(ctx, "/rooms", url.Values{"userId": {hostID}}, room)
}

// ListRooms возвращает активные комнаты.
func (c *Client) ListRooms(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/rooms", nil)
}

// GetRoom возвращает комнату по id.
func (c *Client) GetRoom(ctx context.Context, roomID string) (*Response, error) {
	return c.get(ctx, "/rooms/"+escape(roomID), nil)
}

// JoinRoom добавляет пользователя в комнату слушателем.
func (c *Client) JoinRoom(ctx context.Context, roomID, userID string) (*Response, error) {
	return c.post(ctx, "/rooms/"+escape(roomID)+"/join", url.Values{"userId": {userID}}, nil)
}

// LeaveRoom выводит пользователя из комнаты.
func (c *Client) LeaveRoom(ctx context.Context, roomID, userID string) (*Response, error) {
	return c.post(ctx, "/rooms/"+escape(roomID)+"/leave", url.Values{"userId": {userID}}, nil)
}

// RaiseHand переключает поднятую руку участника.
func (c *Client) RaiseHand(ctx context.Context, roomID, userID string) (*Response, error) {
	return c.post(ctx, "/rooms/"+escape(roomID)+"/raise-hand", url.Values{"userId": {userID}}, nil)
}

// InviteToStage переводит участника в спикеры. Доступно ведущему и модераторам.
func (c *Client) InviteToStage(ctx context.Context, roomID, userID, targetUserID string) (*Response, error) {
	return c.post(ctx, "/rooms/"+escape(roomID)+"/invite-to-stage", url.Values{
		"userId":       {userID},
		"targetUserId": {targetUserID},
	}, nil)
}

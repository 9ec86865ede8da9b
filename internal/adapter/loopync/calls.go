package loopync

import (
	"context"
	"net/url"
	"strconv"
)

// Типы звонков.
const (
	CallTypeAudio = "audio"
	CallTypeVideo = "video"
)

// Роли Agora RTC.
const (
	AgoraRolePublisher  = 1
	AgoraRoleSubscriber = 2
)

// InitiateCall начинает звонок другу. 403 — не друзья,
// 500 "Agora credentials not configured" — на стенде не настроен Agora.
func (c *Client) InitiateCall(ctx context.Context, callerID, recipientID, callType string) (*Response, error) {
	return c.post(ctx, "/calls/initiate", url.Values{
		"callerId":    {callerID},
		"recipientId": {recipientID},
		"callType":    {callType},
	}, nil)
}

// AnswerCall отвечает на звонок от имени получателя.
func (c *Client) AnswerCall(ctx context.Context, callID, userID string) (*Response, error) {
	return c.post(ctx, "/calls/"+escape(callID)+"/answer", url.Values{"userId": {userID}}, nil)
}

// RejectCall отклоняет звонок.
func (c *Client) RejectCall(ctx context.Context, callID string) (*Response, error) {
	return c.post(ctx, "/calls/"+escape(callID)+"/reject", nil, nil)
}

// EndCall завершает звонок от имени участника.
func (c *Client) EndCall(ctx context.Context, callID, userID string) (*Response, error) {
	return c.post(ctx, "/calls/"+escape(callID)+"/end", url.Values{"userId": {userID}}, nil)
}

// CallHistory возвращает историю звонков пользователя, новые первыми.
func (c *Client) CallHistory(ctx context.Context, userID string) (*Response, error) {
	return c.get(ctx, "/calls/history/"+escape(userID), nil)
}

// AgoraToken запрашивает RTC токен для канала.
func (c *Client) AgoraToken(ctx context.Context, channelName string, uid int64, role int) (*Response, error) {
	return c.get(ctx, "/agora/token", url.Values{
		"channelName": {channelName},
		"uid":         {strconv.FormatInt(uid, 10)},
		"role":        {strconv.Itoa(role)},
	})
}

package loopync

import (
	"context"
	"net/url"
)

// OpenThread открывает (или возвращает существующий) диалог с другом.
// 403 — пользователи не друзья.
func (c *Client) OpenThread(ctx context.Context, userID, peerUserID string) (*Response, error) {
	return c.post(ctx, "/dm/thread", url.Values{
		"userId":     {userID},
		"peerUserId": {peerUserID},
	}, nil)
}

// ListThreads возвращает диалоги пользователя.
func (c *Client) ListThreads(ctx context.Context, userID string) (*Response, error) {
	return c.get(ctx, "/dm/threads", url.Values{"userId": {userID}})
}

// SendMessage отправляет текстовое сообщение в диалог.
func (c *Client) SendMessage(ctx context.Context, threadID, userID, text string) (*Response, error) {
	return c.post(ctx, "/dm/threads/"+escape(threadID)+"/messages",
		url.Values{"userId": {userID}},
		map[string]string{"text": text})
}

// ListMessages возвращает сообщения диалога.
func (c *Client) ListMessages(ctx context.Context, threadID, userID string) (*Response, error) {
	return c.get(ctx, "/dm/threads/"+escape(threadID)+"/messages", url.Values{"userId": {userID}})
}

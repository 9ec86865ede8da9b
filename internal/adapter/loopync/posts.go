package loopync

import (
	"context"
	"net/url"
)

// Результаты переключающих операций над постом.
const (
	ActionLiked      = "liked"
	ActionUnliked    = "unliked"
	ActionReposted   = "reposted"
	ActionUnreposted = "unreposted"
)

// ListPosts возвращает ленту постов с авторами.
func (c *Client) ListPosts(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/posts", nil)
}

// CreatePost публикует пост от имени authorID.
func (c *Client) CreatePost(ctx context.Context, authorID string, post PostCreate) (*Response, error) {
	if post.Audience == "" {
		post.Audience = "public"
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}
	return c.post(ctx, "/posts", url.Values{"authorId": {authorID}}, post)
}

// LikePost переключает лайк пользователя.
func (c *Client) LikePost(ctx context.Context, postID, userID string) (*Response, error) {
	return c.post(ctx, "/posts/"+escape(postID)+"/like", url.Values{"userId": {userID}}, nil)
}

// RepostPost переключает репост пользователя.
func (c *Client) RepostPost(ctx context.Context, postID, userID string) (*Response, error) {
	return c.post(ctx, "/posts/"+escape(postID)+"/repost", url.Values{"userId": {userID}}, nil)
}

// QuotePost публикует цитату поста.
func (c *Client) QuotePost(ctx context.Context, postID, authorID, text string) (*Response, error) {
	return c.post(ctx, "/posts/"+escape(postID)+"/quote", url.Values{
		"authorId": {authorID},
		"text":     {text},
	}, nil)
}

// ReplyPost публикует ответ на пост.
func (c *Client) ReplyPost(ctx context.Context, postID, authorID, text string) (*Response, error) {
	return c.post(ctx, "/posts/"+escape(postID)+"/reply", url.Values{
		"authorId": {authorID},
		"text":     {text},
	}, nil)
}

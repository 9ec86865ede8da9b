package loopync

import "context"

// Seed пересоздаёт демо-данные стенда. Удаляет всех пользователей и посты.
func (c *Client) Seed(ctx context.Context) (*Response, error) {
	return c.post(ctx, "/seed", nil, nil)
}

// ListVenues возвращает заведения.
func (c *Client) ListVenues(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/venues", nil)
}

// GetVenue возвращает заведение по id.
func (c *Client) GetVenue(ctx context.Context, venueID string) (*Response, error) {
	return c.get(ctx, "/venues/"+escape(venueID), nil)
}

// ListReels возвращает ленту коротких видео.
func (c *Client) ListReels(ctx context.Context) (*Response, error) {
	return c.get(ctx, "/reels", nil)
}

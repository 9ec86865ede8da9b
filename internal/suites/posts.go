package suites

import (
	"context"
	"net/http"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/schema"
)

// Posts — лента: публикация, лайк туда и обратно, репост, цитата и ответ.
func Posts(opts Options) scenario.Suite {
	s := &postsSuite{opts: opts}
	post := []string{scenario.KeyUserID, scenario.KeyPostID}
	return scenario.Suite{
		Name:        NamePosts,
		Description: "лента и действия с постами",
		Steps: []scenario.Step{
			{Name: "feed", Description: "лента постов с авторами", Run: s.feed},
			{Name: "create", Description: "публикация поста", Requires: []string{scenario.KeyUserID}, Run: s.create},
			{Name: "like", Description: "лайк поста", Requires: post, Run: s.like(loopync.ActionLiked)},
			{Name: "unlike", Description: "повторный лайк снимает его", Requires: post, Run: s.like(loopync.ActionUnliked)},
			{Name: "repost", Description: "репост поста", Requires: post, Run: s.repost},
			{Name: "quote", Description: "цитата поста", Requires: post, Run: s.quote},
			{Name: "reply", Description: "ответ на пост", Requires: post, Run: s.reply},
			{Name: "like_unknown", Description: "лайк несуществующего поста даёт 404", Requires: []string{scenario.KeyUserID}, Run: s.likeUnknown},
		},
	}
}

type postsSuite struct {
	opts Options
}

func (s *postsSuite) feed(ctx context.Context, _ *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.ListPosts(ctx)
	if out, ok := expectJSON(resp, err, schema.PostList); !ok {
		return out
	}
	var posts []loopync.Post
	if err := resp.Decode(&posts); err != nil {
		return decodeFailed(err)
	}
	return scenario.Pass("%d постов", len(posts))
}

func (s *postsSuite) create(ctx context.Context, env *scenario.Env) scenario.Outcome {
	text := "loopcheck post " + shortID()
	resp, err := s.opts.Client.CreatePost(ctx, env.State.String(scenario.KeyUserID), loopync.PostCreate{
		Text:     text,
		Hashtags: []string{"loopcheck"},
	})
	if out, ok := expectJSON(resp, err, schema.Post); !ok {
		return out
	}
	post, err := loopync.DecodeAs[loopync.Post](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if post.Text != text {
		return scenario.Fail("текст поста %q, ожидался %q", post.Text, text)
	}
	env.State.Set(scenario.KeyPostID, post.ID)
	return scenario.Pass("пост %s", post.ID)
}

// like возвращает шаг, ожидающий заданный результат переключения лайка.
func (s *postsSuite) like(want string) scenario.StepFunc {
	return func(ctx context.Context, env *scenario.Env) scenario.Outcome {
		resp, err := s.opts.Client.LikePost(ctx,
			env.State.String(scenario.KeyPostID), env.State.String(scenario.KeyUserID))
		if out, ok := expectJSON(resp, err, schema.LikeResult); !ok {
			return out
		}
		result, err := loopync.DecodeAs[loopync.LikeResult](resp)
		if err != nil {
			return decodeFailed(err)
		}
		if result.Action != want {
			return scenario.Fail("действие %q, ожидалось %q", result.Action, want)
		}
		return scenario.Pass("%s, лайков %d", result.Action, result.Likes)
	}
}

func (s *postsSuite) repost(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.RepostPost(ctx,
		env.State.String(scenario.KeyPostID), env.State.String(scenario.KeyUserID))
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	result, err := loopync.DecodeAs[loopync.RepostResult](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if result.Action != loopync.ActionReposted {
		return scenario.Fail("действие %q, ожидалось %q", result.Action, loopync.ActionReposted)
	}
	return scenario.Pass("репостов %d", result.Reposts)
}

func (s *postsSuite) quote(ctx context.Context, env *scenario.Env) scenario.Outcome {
	postID := env.State.String(scenario.KeyPostID)
	resp, err := s.opts.Client.QuotePost(ctx, postID, env.State.String(scenario.KeyUserID), "loopcheck quote")
	if out, ok := expectJSON(resp, err, schema.Post); !ok {
		return out
	}
	post, err := loopync.DecodeAs[loopync.Post](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if post.QuotedPostID == nil || *post.QuotedPostID != postID {
		return scenario.Fail("quotedPostId не указывает на %s", postID)
	}
	return scenario.Pass("цитата %s", post.ID)
}

func (s *postsSuite) reply(ctx context.Context, env *scenario.Env) scenario.Outcome {
	postID := env.State.String(scenario.KeyPostID)
	resp, err := s.opts.Client.ReplyPost(ctx, postID, env.State.String(scenario.KeyUserID), "loopcheck reply")
	if out, ok := expectJSON(resp, err, schema.Post); !ok {
		return out
	}
	post, err := loopync.DecodeAs[loopync.Post](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if post.ReplyToPostID == nil || *post.ReplyToPostID != postID {
		return scenario.Fail("replyToPostId не указывает на %s", postID)
	}
	return scenario.Pass("ответ %s", post.ID)
}

func (s *postsSuite) likeUnknown(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.LikePost(ctx, "loopcheck-missing-"+shortID(), env.State.String(scenario.KeyUserID))
	if out, ok := expectStatus(resp, err, http.StatusNotFound); !ok {
		return out
	}
	return scenario.Pass("404 %s", resp.Detail())
}

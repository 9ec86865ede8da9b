package suites

import (
	"context"
	"net/http"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/schema"
)

// DM — личная переписка с собеседником. Требует дружбы из набора friends.
func DM(opts Options) scenario.Suite {
	s := &dmSuite{opts: opts}
	thread := []string{scenario.KeyUserID, scenario.KeyThreadID}
	return scenario.Suite{
		Name:        NameDM,
		Description: "диалоги и сообщения",
		Steps: []scenario.Step{
			{Name: "open_thread", Description: "диалог с собеседником", Requires: []string{scenario.KeyUserID, scenario.KeyPeerUserID}, Run: s.openThread},
			{Name: "threads_list", Description: "диалог в списке", Requires: thread, Run: s.threadsList},
			{Name: "send_message", Description: "отправка сообщения", Requires: thread, Run: s.sendMessage},
			{Name: "messages_list", Description: "сообщение в истории диалога", Requires: append(thread, scenario.KeyMessageText), Run: s.messagesList},
			{Name: "open_thread_self", Description: "диалог с самим собой даёт 400", Requires: []string{scenario.KeyUserID}, Run: s.openThreadSelf},
			{Name: "open_thread_stranger", Description: "диалог с не-другом даёт 403", Requires: []string{scenario.KeyUserID}, Run: s.openThreadStranger},
		},
	}
}

type dmSuite struct {
	opts Options
}

func (s *dmSuite) openThread(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.OpenThread(ctx,
		env.State.String(scenario.KeyUserID), env.State.String(scenario.KeyPeerUserID))
	if err != nil {
		return requestFailed(err)
	}
	if resp.StatusCode == http.StatusForbidden {
		return scenario.Fail("диалог запрещён, пользователи должны дружить: %s", resp.Detail())
	}
	if out, ok := expectJSON(resp, nil, schema.ThreadOpened); !ok {
		return out
	}
	opened, err := loopync.DecodeAs[loopync.ThreadOpened](resp)
	if err != nil {
		return decodeFailed(err)
	}
	env.State.Set(scenario.KeyThreadID, opened.ThreadID)
	if opened.Existing {
		return scenario.Pass("существующий диалог %s", opened.ThreadID)
	}
	return scenario.Pass("новый диалог %s", opened.ThreadID)
}

func (s *dmSuite) threadsList(ctx context.Context, env *scenario.Env) scenario.Outcome {
	threadID := env.State.String(scenario.KeyThreadID)
	resp, err := s.opts.Client.ListThreads(ctx, env.State.String(scenario.KeyUserID))
	if out, ok := expectJSON(resp, err, schema.ThreadsPage); !ok {
		return out
	}
	page, err := loopync.DecodeAs[loopync.ThreadsPage](resp)
	if err != nil {
		return decodeFailed(err)
	}
	for _, t := range page.Items {
		if t.ID == threadID {
			return scenario.Pass("%d диалогов", len(page.Items))
		}
	}
	return scenario.Fail("диалога %s нет среди %d", threadID, len(page.Items))
}

func (s *dmSuite) sendMessage(ctx context.Context, env *scenario.Env) scenario.Outcome {
	text := "loopcheck ping " + shortID()
	resp, err := s.opts.Client.SendMessage(ctx,
		env.State.String(scenario.KeyThreadID), env.State.String(scenario.KeyUserID), text)
	if out, ok := expectJSON(resp, err, schema.MessageSent); !ok {
		return out
	}
	sent, err := loopync.DecodeAs[loopync.MessageSent](resp)
	if err != nil {
		return decodeFailed(err)
	}
	env.State.Set(scenario.KeyMessageText, text)
	return scenario.Pass("сообщение %s", sent.MessageID)
}

func (s *dmSuite) messagesList(ctx context.Context, env *scenario.Env) scenario.Outcome {
	text := env.State.String(scenario.KeyMessageText)
	resp, err := s.opts.Client.ListMessages(ctx,
		env.State.String(scenario.KeyThreadID), env.State.String(scenario.KeyUserID))
	if out, ok := expectJSON(resp, err, schema.MessagesPage); !ok {
		return out
	}
	page, err := loopync.DecodeAs[loopync.MessagesPage](resp)
	if err != nil {
		return decodeFailed(err)
	}
	for _, m := range page.Items {
		if m.Text != nil && *m.Text == text {
			return scenario.Pass("%d сообщений", len(page.Items))
		}
	}
	return scenario.Fail("отправленного сообщения нет среди %d", len(page.Items))
}

func (s *dmSuite) openThreadSelf(ctx context.Context, env *scenario.Env) scenario.Outcome {
	self := env.State.String(scenario.KeyUserID)
	resp, err := s.opts.Client.OpenThread(ctx, self, self)
	if out, ok := expectStatus(resp, err, http.StatusBadRequest); !ok {
		return out
	}
	return scenario.Pass("400 %s", resp.Detail())
}

func (s *dmSuite) openThreadStranger(ctx context.Context, env *scenario.Env) scenario.Outcome {
	self := env.State.String(scenario.KeyUserID)
	stranger := s.opts.StrangerUserID
	if stranger == "" || stranger == self {
		return scenario.Skip("stranger не задан")
	}
	friends, err := friendsWith(ctx, s.opts.Client, self, stranger)
	if err != nil {
		return requestFailed(err)
	}
	if friends {
		return scenario.Skip("%s в друзьях, проверка неприменима", stranger)
	}

	resp, err := s.opts.Client.OpenThread(ctx, self, stranger)
	if err != nil {
		return requestFailed(err)
	}
	if resp.StatusCode == http.StatusOK {
		if opened, derr := loopync.DecodeAs[loopync.ThreadOpened](resp); derr == nil && opened.Existing {
			return scenario.Skip("с %s уже есть диалог", stranger)
		}
		return scenario.Fail("диалог с не-другом %s создан", stranger)
	}
	if out, ok := expectStatus(resp, nil, http.StatusForbidden); !ok {
		return out
	}
	return scenario.Pass("403 %s", resp.Detail())
}

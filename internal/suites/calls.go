package suites

import (
	"context"
	"net/http"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/schema"
)

// Статусы, которыми стенд отвечает на принятие звонка.
var answeredStatuses = map[string]bool{"active": true, "ongoing": true}

const callRejected = "rejected"

// Calls — токен Agora и полный цикл видеозвонка собеседнику.
// Стенд без ключей Agora (500 "not configured") даёт пропуск, а не падение.
func Calls(opts Options) scenario.Suite {
	s := &callsSuite{opts: opts}
	call := []string{scenario.KeyUserID, scenario.KeyPeerUserID, scenario.KeyCallID}
	return scenario.Suite{
		Name:        NameCalls,
		Description: "звонки и токены Agora",
		Steps: []scenario.Step{
			{Name: "agora_token", Description: "токен для произвольного канала", Run: s.agoraToken},
			{Name: "initiate", Description: "видеозвонок собеседнику", Requires: []string{scenario.KeyUserID, scenario.KeyPeerUserID}, Run: s.initiate},
			{Name: "answer", Description: "собеседник принимает звонок", Requires: call, Run: s.answer},
			{Name: "end", Description: "завершение звонка", Requires: call, Run: s.end},
			{Name: "history", Description: "звонок в истории", Requires: call, Run: s.history},
			{Name: "reject", Description: "собеседник отклоняет второй звонок", Requires: []string{scenario.KeyUserID, scenario.KeyPeerUserID}, Run: s.reject},
			{Name: "call_stranger", Description: "звонок не-другу даёт 403", Requires: []string{scenario.KeyUserID}, Run: s.callStranger},
		},
	}
}

type callsSuite struct {
	opts Options
}

func (s *callsSuite) agoraToken(ctx context.Context, env *scenario.Env) scenario.Outcome {
	channel := "loopcheck-" + shortID()
	resp, err := s.opts.Client.AgoraToken(ctx, channel, 0, loopync.AgoraRolePublisher)
	if err != nil {
		return requestFailed(err)
	}
	if isNotConfigured(resp) {
		env.State.Set(scenario.KeyAgoraEnabled, false)
		return scenario.Skip("Agora не настроен на стенде")
	}
	if out, ok := expectJSON(resp, nil, schema.AgoraToken); !ok {
		return out
	}
	token, err := loopync.DecodeAs[loopync.AgoraToken](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if token.ChannelName != channel {
		return scenario.Fail("канал в ответе %q, ожидался %q", token.ChannelName, channel)
	}
	env.State.Set(scenario.KeyAgoraEnabled, true)
	return scenario.Pass("app %s, истекает через %dс", token.AppID, token.ExpiresIn)
}

func (s *callsSuite) initiate(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.InitiateCall(ctx,
		env.State.String(scenario.KeyUserID), env.State.String(scenario.KeyPeerUserID), loopync.CallTypeVideo)
	if err != nil {
		return requestFailed(err)
	}
	switch {
	case resp.StatusCode == http.StatusForbidden:
		return scenario.Fail("звонить можно только друзьям: %s", resp.Detail())
	case isNotConfigured(resp):
		return scenario.Skip("Agora не настроен на стенде")
	}
	if out, ok := expectJSON(resp, nil, schema.CallInitiated); !ok {
		return out
	}
	call, err := loopync.DecodeAs[loopync.CallInitiated](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if call.CallerUID == call.RecipientUID {
		return scenario.Fail("uid звонящего и получателя совпадают: %d", call.CallerUID)
	}
	if call.CallerToken == call.RecipientToken {
		return scenario.Fail("токены звонящего и получателя совпадают")
	}
	env.State.Set(scenario.KeyCallID, call.CallID)
	env.State.Set(scenario.KeyChannelName, call.ChannelName)
	return scenario.Pass("звонок %s, канал %s", call.CallID, call.ChannelName)
}

func (s *callsSuite) answer(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.AnswerCall(ctx,
		env.State.String(scenario.KeyCallID), env.State.String(scenario.KeyPeerUserID))
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	answered, err := loopync.DecodeAs[loopync.CallAnswered](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if !answeredStatuses[answered.Status] {
		return scenario.Fail("статус после ответа %q", answered.Status)
	}
	return scenario.Pass("статус %s", answered.Status)
}

func (s *callsSuite) end(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.EndCall(ctx,
		env.State.String(scenario.KeyCallID), env.State.String(scenario.KeyUserID))
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	ended, err := loopync.DecodeAs[loopync.CallEnded](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if ended.Duration < 0 {
		return scenario.Fail("отрицательная длительность %d", ended.Duration)
	}
	return scenario.Pass("длительность %dс", ended.Duration)
}

func (s *callsSuite) history(ctx context.Context, env *scenario.Env) scenario.Outcome {
	callID := env.State.String(scenario.KeyCallID)
	resp, err := s.opts.Client.CallHistory(ctx, env.State.String(scenario.KeyUserID))
	if out, ok := expectJSON(resp, err, schema.CallHistory); !ok {
		return out
	}
	var calls []loopync.Call
	if err := resp.Decode(&calls); err != nil {
		return decodeFailed(err)
	}
	for _, c := range calls {
		if c.ID == callID {
			return scenario.Pass("статус %s, всего %d", c.Status, len(calls))
		}
	}
	return scenario.Fail("звонка %s нет в истории из %d", callID, len(calls))
}

func (s *callsSuite) reject(ctx context.Context, env *scenario.Env) scenario.Outcome {
	self := env.State.String(scenario.KeyUserID)
	resp, err := s.opts.Client.InitiateCall(ctx, self, env.State.String(scenario.KeyPeerUserID), loopync.CallTypeAudio)
	if err != nil {
		return requestFailed(err)
	}
	switch {
	case resp.StatusCode == http.StatusForbidden:
		return scenario.Fail("звонить можно только друзьям: %s", resp.Detail())
	case isNotConfigured(resp):
		return scenario.Skip("Agora не настроен на стенде")
	}
	if out, ok := expectJSON(resp, nil, schema.CallInitiated); !ok {
		return out
	}
	call, err := loopync.DecodeAs[loopync.CallInitiated](resp)
	if err != nil {
		return decodeFailed(err)
	}

	resp, err = s.opts.Client.RejectCall(ctx, call.CallID)
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}

	resp, err = s.opts.Client.CallHistory(ctx, self)
	if out, ok := expectJSON(resp, err, schema.CallHistory); !ok {
		return out
	}
	var calls []loopync.Call
	if err := resp.Decode(&calls); err != nil {
		return decodeFailed(err)
	}
	for _, c := range calls {
		if c.ID != call.CallID {
			continue
		}
		if c.Status != callRejected {
			return scenario.Fail("статус звонка %s %q, ожидался %q", c.ID, c.Status, callRejected)
		}
		return scenario.Pass("звонок %s отклонён", c.ID)
	}
	return scenario.Fail("звонка %s нет в истории из %d", call.CallID, len(calls))
}

func (s *callsSuite) callStranger(ctx context.Context, env *scenario.Env) scenario.Outcome {
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

	resp, err := s.opts.Client.InitiateCall(ctx, self, stranger, loopync.CallTypeAudio)
	if err != nil {
		return requestFailed(err)
	}
	if resp.StatusCode == http.StatusOK {
		if call, derr := loopync.DecodeAs[loopync.CallInitiated](resp); derr == nil {
			if _, endErr := s.opts.Client.EndCall(ctx, call.CallID, self); endErr != nil {
				env.Logger.Warn("Не удалось завершить лишний звонок", "call_id", call.CallID, "error", endErr.Error())
			}
		}
		return scenario.Fail("звонок не-другу %s разрешён", stranger)
	}
	if out, ok := expectStatus(resp, nil, http.StatusForbidden); !ok {
		return out
	}
	return scenario.Pass("403 %s", resp.Detail())
}

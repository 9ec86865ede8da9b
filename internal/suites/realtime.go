package suites

import (
	"context"
	"time"

	"github.com/Kargones/loopcheck/internal/adapter/realtime"
	"github.com/Kargones/loopcheck/internal/scenario"
)

// Realtime — рукопожатие Socket.IO с токеном демо-пользователя.
func Realtime(opts Options) scenario.Suite {
	s := &realtimeSuite{opts: opts}
	return scenario.Suite{
		Name:        NameRealtime,
		Description: "Socket.IO подключение",
		Steps: []scenario.Step{
			{Name: "handshake", Description: "OPEN и CONNECT пространства имён /", Requires: []string{scenario.KeyToken}, Run: s.handshake},
		},
	}
}

type realtimeSuite struct {
	opts Options
}

func (s *realtimeSuite) handshake(ctx context.Context, env *scenario.Env) scenario.Outcome {
	if s.opts.Probe == nil {
		return scenario.Skip("адрес realtime не задан")
	}
	hs, err := s.opts.Probe.Check(ctx, env.State.String(scenario.KeyToken))
	switch {
	case realtime.IsNotFound(err):
		return scenario.Skip("Socket.IO не развёрнут на %s", s.opts.Probe.URL())
	case realtime.IsRejected(err):
		return scenario.Fail("сервер отклонил подключение с токеном: %v", err)
	case err != nil:
		return scenario.Fail("рукопожатие не выполнено: %v", err)
	}
	env.State.Set(scenario.KeyRealtimeSID, hs.SID)
	return scenario.Pass("sid %s, ping %s, за %s", hs.SID, hs.PingInterval, hs.Duration.Round(time.Millisecond))
}

package suites

import (
	"context"
	"net/http"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/scenario"
	"github.com/Kargones/loopcheck/internal/schema"
)

// Rooms — голосовая комната: создание хостом, вход собеседника, сцена, выход.
func Rooms(opts Options) scenario.Suite {
	s := &roomsSuite{opts: opts}
	room := []string{scenario.KeyUserID, scenario.KeyRoomID}
	withPeer := []string{scenario.KeyUserID, scenario.KeyRoomID, scenario.KeyPeerUserID}
	return scenario.Suite{
		Name:        NameRooms,
		Description: "голосовые комнаты",
		Steps: []scenario.Step{
			{Name: "create", Description: "демо создаёт комнату", Requires: []string{scenario.KeyUserID}, Run: s.create},
			{Name: "list", Description: "комната в списке активных", Requires: room, Run: s.list},
			{Name: "get", Description: "комната по id", Requires: room, Run: s.get},
			{Name: "join", Description: "собеседник входит слушателем", Requires: withPeer, Run: s.join},
			{Name: "raise_hand", Description: "собеседник поднимает руку", Requires: withPeer, Run: s.raiseHand},
			{Name: "invite_to_stage", Description: "хост приглашает на сцену", Requires: withPeer, Run: s.inviteToStage},
			{Name: "leave", Description: "собеседник выходит", Requires: withPeer, Run: s.leave},
			{Name: "close", Description: "хост выходит последним", Requires: room, Run: s.close},
			{Name: "get_unknown", Description: "несуществующая комната даёт 404", Run: s.getUnknown},
		},
	}
}

type roomsSuite struct {
	opts Options
}

func (s *roomsSuite) create(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.CreateRoom(ctx, env.State.String(scenario.KeyUserID), loopync.RoomCreate{
		Name:        "loopcheck " + shortID(),
		Description: "автоматическая проверка",
		Category:    "general",
		Tags:        []string{"loopcheck"},
	})
	if out, ok := expectJSON(resp, err, schema.Room); !ok {
		return out
	}
	room, err := loopync.DecodeAs[loopync.Room](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if _, isHost := room.Participant(env.State.String(scenario.KeyUserID)); !isHost {
		return scenario.Fail("создатель комнаты не среди участников")
	}
	env.State.Set(scenario.KeyRoomID, room.ID)
	return scenario.Pass("комната %s, канал %s", room.ID, room.AgoraChannel)
}

func (s *roomsSuite) list(ctx context.Context, env *scenario.Env) scenario.Outcome {
	roomID := env.State.String(scenario.KeyRoomID)
	resp, err := s.opts.Client.ListRooms(ctx)
	if out, ok := expectJSON(resp, err, schema.RoomList); !ok {
		return out
	}
	var rooms []loopync.Room
	if err := resp.Decode(&rooms); err != nil {
		return decodeFailed(err)
	}
	for _, r := range rooms {
		if r.ID == roomID {
			return scenario.Pass("%d активных комнат", len(rooms))
		}
	}
	return scenario.Fail("комнаты %s нет среди %d активных", roomID, len(rooms))
}

func (s *roomsSuite) get(ctx context.Context, env *scenario.Env) scenario.Outcome {
	roomID := env.State.String(scenario.KeyRoomID)
	resp, err := s.opts.Client.GetRoom(ctx, roomID)
	if out, ok := expectJSON(resp, err, schema.Room); !ok {
		return out
	}
	room, err := loopync.DecodeAs[loopync.Room](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if room.ID != roomID {
		return scenario.Fail("вернулась комната %s", room.ID)
	}
	if room.HostID != env.State.String(scenario.KeyUserID) {
		return scenario.Fail("хост %s, ожидался создатель", room.HostID)
	}
	return scenario.Pass("%d участников", len(room.Participants))
}

func (s *roomsSuite) join(ctx context.Context, env *scenario.Env) scenario.Outcome {
	peer := env.State.String(scenario.KeyPeerUserID)
	resp, err := s.opts.Client.JoinRoom(ctx, env.State.String(scenario.KeyRoomID), peer)
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	joined, err := loopync.DecodeAs[loopync.RoomJoined](resp)
	if err != nil {
		return decodeFailed(err)
	}
	if joined.Room == nil {
		return scenario.Fail("в ответе нет комнаты: %s", joined.Message)
	}
	p, in := joined.Room.Participant(peer)
	if !in {
		return scenario.Fail("собеседник не среди участников после входа")
	}
	return scenario.Pass("%s, роль %s", joined.Message, p.Role)
}

func (s *roomsSuite) raiseHand(ctx context.Context, env *scenario.Env) scenario.Outcome {
	peer := env.State.String(scenario.KeyPeerUserID)
	resp, err := s.opts.Client.RaiseHand(ctx, env.State.String(scenario.KeyRoomID), peer)
	if out, ok := expectJSON(resp, err, schema.ParticipantsUpdate); !ok {
		return out
	}
	update, err := loopync.DecodeAs[loopync.ParticipantsUpdate](resp)
	if err != nil {
		return decodeFailed(err)
	}
	p, in := update.Find(peer)
	if !in {
		return scenario.Fail("собеседник не среди участников")
	}
	if !p.RaisedHand {
		return scenario.Fail("рука не поднята: %s", update.Message)
	}
	return scenario.Pass("%s", update.Message)
}

func (s *roomsSuite) inviteToStage(ctx context.Context, env *scenario.Env) scenario.Outcome {
	peer := env.State.String(scenario.KeyPeerUserID)
	resp, err := s.opts.Client.InviteToStage(ctx,
		env.State.String(scenario.KeyRoomID), env.State.String(scenario.KeyUserID), peer)
	if out, ok := expectJSON(resp, err, schema.ParticipantsUpdate); !ok {
		return out
	}
	update, err := loopync.DecodeAs[loopync.ParticipantsUpdate](resp)
	if err != nil {
		return decodeFailed(err)
	}
	p, in := update.Find(peer)
	if !in || p.Role != loopync.RoleSpeaker {
		return scenario.Fail("собеседник не стал спикером: роль %q", p.Role)
	}
	return scenario.Pass("%s", update.Message)
}

func (s *roomsSuite) leave(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.LeaveRoom(ctx,
		env.State.String(scenario.KeyRoomID), env.State.String(scenario.KeyPeerUserID))
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	left, err := loopync.DecodeAs[loopync.RoomLeft](resp)
	if err != nil {
		return decodeFailed(err)
	}
	return scenario.Pass("%s", left.Message)
}

func (s *roomsSuite) close(ctx context.Context, env *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.LeaveRoom(ctx,
		env.State.String(scenario.KeyRoomID), env.State.String(scenario.KeyUserID))
	if out, ok := expectJSON(resp, err, ""); !ok {
		return out
	}
	left, err := loopync.DecodeAs[loopync.RoomLeft](resp)
	if err != nil {
		return decodeFailed(err)
	}
	return scenario.Pass("%s", left.Message)
}

func (s *roomsSuite) getUnknown(ctx context.Context, _ *scenario.Env) scenario.Outcome {
	resp, err := s.opts.Client.GetRoom(ctx, "loopcheck-missing-"+shortID())
	if out, ok := expectStatus(resp, err, http.StatusNotFound); !ok {
		return out
	}
	return scenario.Pass("404 %s", resp.Detail())
}

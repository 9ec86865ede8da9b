package suites

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Kargones/loopcheck/internal/adapter/loopync"
	"github.com/Kargones/loopcheck/internal/adapter/realtime"
	"github.com/Kargones/loopcheck/internal/config"
	"github.com/Kargones/loopcheck/internal/pkg/apperrors"
	"github.com/Kargones/loopcheck/internal/scenario"
)

// Имена наборов.
const (
	NameAuth     = "auth"
	NameFriends  = "friends"
	NameDM       = "dm"
	NameCalls    = "calls"
	NameRooms    = "rooms"
	NamePosts    = "posts"
	NameVenues   = "venues"
	NameRealtime = "realtime"
)

// Options — зависимости и учётные данные, общие для всех наборов.
type Options struct {
	Client *loopync.Client
	// Probe — проверка Socket.IO; nil пропускает набор realtime.
	Probe *realtime.Probe

	DemoEmail    string
	DemoPassword string
	// PeerHandle ищется через /users/search, PeerUserID — запасной вариант.
	PeerHandle     string
	PeerUserID     string
	StrangerUserID string
	// Seed вызывает POST /seed перед логином.
	Seed bool
}

// NewOptions собирает Options из конфигурации стенда.
func NewOptions(tc *config.TargetConfig, client *loopync.Client, probe *realtime.Probe) Options {
	return Options{
		Client:         client,
		Probe:          probe,
		DemoEmail:      tc.DemoEmail,
		DemoPassword:   tc.DemoPassword,
		PeerHandle:     tc.PeerHandle,
		PeerUserID:     tc.PeerUserID,
		StrangerUserID: tc.StrangerUserID,
		Seed:           tc.Seed,
	}
}

// Factory строит набор по опциям.
type Factory func(Options) scenario.Suite

type entry struct {
	name    string
	factory Factory
	depends []string
}

// registry задаёт порядок выполнения наборов.
var registry = []entry{
	{name: NameAuth, factory: Auth},
	{name: NameFriends, factory: Friends, depends: []string{NameAuth}},
	{name: NameDM, factory: DM, depends: []string{NameAuth, NameFriends}},
	{name: NameCalls, factory: Calls, depends: []string{NameAuth, NameFriends}},
	{name: NameRooms, factory: Rooms, depends: []string{NameAuth, NameFriends}},
	{name: NamePosts, factory: Posts, depends: []string{NameAuth}},
	{name: NameVenues, factory: Venues},
	{name: NameRealtime, factory: Realtime, depends: []string{NameAuth}},
}

// Names возвращает имена всех наборов в порядке выполнения.
func Names() []string {
	out := make([]string, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.name)
	}
	return out
}

// Dependencies возвращает наборы, которые должны выполниться до name.
func Dependencies(name string) []string {
	for _, e := range registry {
		if e.name == name {
			return slices.Clone(e.depends)
		}
	}
	return nil
}

// Build строит выбранные наборы вместе с их зависимостями в порядке реестра.
// Пустой список означает все наборы.
func Build(names []string, opts Options) ([]scenario.Suite, error) {
	selected := make(map[string]bool, len(registry))
	if len(names) == 0 {
		for _, e := range registry {
			selected[e.name] = true
		}
	}
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if !slices.Contains(Names(), name) {
			return nil, apperrors.NewAppError(apperrors.ErrSuiteUnknown,
				fmt.Sprintf("неизвестный набор %q, доступны: %s", raw, strings.Join(Names(), ", ")), nil)
		}
		selected[name] = true
		for _, dep := range Dependencies(name) {
			selected[dep] = true
		}
	}

	suites := make([]scenario.Suite, 0, len(selected))
	for _, e := range registry {
		if selected[e.name] {
			suites = append(suites, e.factory(opts))
		}
	}
	return suites, nil
}

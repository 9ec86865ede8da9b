// Package schema проверяет тела ответов Loopync API по встроенным JSON Schema.
//
// Схемы компилируются один раз при первом обращении и переиспользуются
// всеми сценариями. Имя схемы совпадает с именем файла в каталоге schemas/
// без расширения.
package schema

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Имена встроенных схем.
const (
	Auth                 = "auth"
	User                 = "user"
	UserList             = "user_list"
	FriendRequestCreated = "friend_request_created"
	FriendRequests       = "friend_requests"
	FriendsPage          = "friends_page"
	ThreadOpened         = "thread_opened"
	ThreadsPage          = "threads_page"
	MessageSent          = "message_sent"
	MessagesPage         = "messages_page"
	CallInitiated        = "call_initiated"
	CallHistory          = "call_history"
	AgoraToken           = "agora_token"
	Room                 = "room"
	RoomList             = "room_list"
	ParticipantsUpdate   = "participants_update"
	Post                 = "post"
	PostList             = "post_list"
	LikeResult           = "like_result"
	Venue                = "venue"
	VenueList            = "venue_list"
	ReelList             = "reel_list"
)

// baseURL — базовый адрес, под которым схемы регистрируются в компиляторе.
// Сеть не используется: все ресурсы загружаются из embed.FS.
const baseURL = "https://schemas.loopcheck.dev/"

var (
	// ErrUnknownSchema возвращается для имени, которого нет среди встроенных схем.
	ErrUnknownSchema = errors.New("неизвестная схема")
	// ErrInvalidJSON возвращается, если тело ответа не является JSON.
	ErrInvalidJSON = errors.New("тело ответа не является корректным JSON")
	// ErrMismatch возвращается, если тело не соответствует схеме.
	ErrMismatch = errors.New("ответ не соответствует схеме")
)

//go:embed schemas/*.json
var files embed.FS

// MismatchError описывает расхождение ответа со схемой.
type MismatchError struct {
	Schema string
	Detail string
	Cause  error
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMismatch.Error(), e.Schema, e.Detail)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrMismatch)
// и получать исходную *jsonschema.ValidationError через errors.As.
func (e *MismatchError) Unwrap() []error {
	return []error{ErrMismatch, e.Cause}
}

type registry struct {
	once    sync.Once
	err     error
	schemas map[string]*jsonschema.Schema
}

var defaultRegistry = &registry{}

func (r *registry) load() error {
	r.once.Do(func() {
		r.schemas, r.err = compileAll()
	})
	return r.err
}

func compileAll() (map[string]*jsonschema.Schema, error) {
	entries, err := files.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("чтение встроенных схем: %w", err)
	}

	c := jsonschema.NewCompiler()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		data, err := files.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("чтение схемы %s: %w", e.Name(), err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("разбор схемы %s: %w", e.Name(), err)
		}
		if err := c.AddResource(baseURL+e.Name(), doc); err != nil {
			return nil, fmt.Errorf("регистрация схемы %s: %w", e.Name(), err)
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}

	out := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		sch, err := c.Compile(baseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("компиляция схемы %s: %w", name, err)
		}
		out[name] = sch
	}
	return out, nil
}

// Names возвращает отсортированный список имён встроенных схем.
func Names() []string {
	entries, err := files.ReadDir("schemas")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(out)
	return out
}

// Validate проверяет тело ответа body по схеме name.
func Validate(name string, body []byte) error {
	if err := defaultRegistry.load(); err != nil {
		return err
	}
	sch, ok := defaultRegistry.schemas[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := sch.Validate(inst); err != nil {
		return &MismatchError{Schema: name, Detail: flatten(err), Cause: err}
	}
	return nil
}

// flatten сворачивает многострочное описание ошибки валидации в одну строку.
func flatten(err error) string {
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "-"))
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, "; ")
}

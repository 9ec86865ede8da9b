package schema

import (
	"errors"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemasCompile(t *testing.T) {
	require.NoError(t, defaultRegistry.load())
	for _, name := range Names() {
		assert.Contains(t, defaultRegistry.schemas, name)
	}
	assert.Contains(t, Names(), Auth)
	assert.Contains(t, Names(), ReelList)
}

func TestValidate_Auth(t *testing.T) {
	ok := []byte(`{"token":"aaa.bbb.ccc","user":{"id":"u1","handle":"demo","name":"Demo"}}`)
	require.NoError(t, Validate(Auth, ok))

	missingUserID := []byte(`{"token":"aaa.bbb.ccc","user":{"handle":"demo","name":"Demo"}}`)
	err := Validate(Auth, missingUserID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMismatch)

	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, Auth, mismatch.Schema)
	assert.NotContains(t, mismatch.Detail, "\n")

	var verr *jsonschema.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestValidate_TokenShape(t *testing.T) {
	err := Validate(Auth, []byte(`{"token":"not-a-jwt","user":{"id":"u1","handle":"h","name":"n"}}`))
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownSchema)
}

func TestValidate_InvalidJSON(t *testing.T) {
	err := Validate(User, []byte(`<html>`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestValidate_Table(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		body   string
		valid  bool
	}{
		{"friends page", FriendsPage, `{"items":[{"user":{"id":"u1","handle":"a","name":"A"},"friendedAt":"2024-01-01"}],"nextCursor":null}`, true},
		{"friends page без items", FriendsPage, `{"nextCursor":null}`, false},
		{"thread opened", ThreadOpened, `{"threadId":"t1","existing":false}`, true},
		{"thread opened пустой id", ThreadOpened, `{"threadId":"","existing":false}`, false},
		{"messages page", MessagesPage, `{"items":[{"id":"m1","threadId":"t1","senderId":"u1","text":null,"createdAt":"x"}],"nextCursor":null}`, true},
		{"threads page", ThreadsPage, `{"items":[{"id":"t1","peer":{"id":"u1","handle":"a","name":"A"},"lastMessage":null,"unreadCount":0}],"nextCursor":null}`, true},
		{"call initiated", CallInitiated, `{"callId":"c","channelName":"ch","appId":"app","callerToken":"t","callerUid":1,"recipientToken":"t","recipientUid":2}`, true},
		{"call initiated uid строкой", CallInitiated, `{"callId":"c","channelName":"ch","appId":"app","callerToken":"t","callerUid":"1","recipientToken":"t","recipientUid":2}`, false},
		{"agora token", AgoraToken, `{"token":"t","appId":"a","channelName":"c","uid":0}`, true},
		{"room", Room, `{"id":"r","name":"n","hostId":"h","agoraChannel":"c","participants":[{"userId":"h","role":"host"}],"status":"active"}`, true},
		{"room неизвестная роль", Room, `{"id":"r","name":"n","hostId":"h","agoraChannel":"c","participants":[{"userId":"h","role":"owner"}],"status":"active"}`, false},
		{"post list", PostList, `[{"id":"p","authorId":"u","text":"t","stats":{"likes":0},"author":{"id":"u","handle":"a","name":"A"}}]`, true},
		{"post list без автора", PostList, `[{"id":"p","authorId":"u","text":"t","stats":{"likes":0}}]`, false},
		{"like result", LikeResult, `{"action":"liked","likes":1}`, true},
		{"like result отрицательный", LikeResult, `{"action":"liked","likes":-1}`, false},
		{"venue list", VenueList, `[{"id":"v1","name":"Cafe","rating":4.5}]`, true},
		{"venue list рейтинг", VenueList, `[{"id":"v1","name":"Cafe","rating":7}]`, false},
		{"reel list", ReelList, `[{"id":"r","authorId":"u","videoUrl":"https://x"}]`, true},
		{"user list", UserList, `[]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema, []byte(tt.body))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMismatch)
			}
		})
	}
}

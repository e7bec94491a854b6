package push

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DDmsngr/deepdrift-backend/pkg/relay"
)

// --- Mocks ---

type mockMessagingClient struct {
	mock.Mock
}

func (m *mockMessagingClient) Send(ctx context.Context, message *messaging.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

type mockTokenSource struct {
	mock.Mock
}

func (m *mockTokenSource) PushToken(ctx context.Context, uid string) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

func (m *mockTokenSource) DeletePushToken(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

// --- Fixture ---

type testFixture struct {
	client   *mockMessagingClient
	tokens   *mockTokenSource
	notifier *FCMNotifier
}

func setup(t *testing.T) *testFixture {
	t.Helper()
	client := new(mockMessagingClient)
	tokens := new(mockTokenSource)
	notifier, err := NewFCMNotifier(client, tokens, zerolog.Nop())
	require.NoError(t, err)
	return &testFixture{client: client, tokens: tokens, notifier: notifier}
}

// --- Tests ---

func TestNewFCMNotifier_NilDeps(t *testing.T) {
	_, err := NewFCMNotifier(nil, new(mockTokenSource), zerolog.Nop())
	require.Error(t, err)
	_, err = NewFCMNotifier(new(mockMessagingClient), nil, zerolog.Nop())
	require.Error(t, err)
}

func TestNotify_SendsPush(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	fx.tokens.On("PushToken", ctx, "222222").Return("tok-1", nil)
	fx.client.On("Send", ctx, mock.MatchedBy(func(msg *messaging.Message) bool {
		return msg.Token == "tok-1" &&
			msg.Notification.Title == "DDChat: 111111" &&
			msg.Notification.Body == "New encrypted message" &&
			msg.Data["from_uid"] == "111111" &&
			msg.Data["type"] == relay.KindNewMessage &&
			msg.Android.Priority == "high" &&
			msg.APNS.Payload.Aps.ContentAvailable
	})).Return("msg-id", nil)

	err := fx.notifier.Notify(ctx, "222222", "111111", relay.KindNewMessage)
	require.NoError(t, err)
	fx.client.AssertExpectations(t)
}

func TestNotify_NeutralBodies(t *testing.T) {
	cases := []struct {
		kind  string
		title string
		body  string
	}{
		{relay.KindMessageDeleted, "Message deleted", "A message was deleted"},
		{relay.KindMessageEdited, "Message edited", "A message was edited"},
		{relay.KindMessageReaction, "New reaction", "New reaction on your message"},
	}

	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			fx := setup(t)
			ctx := context.Background()

			fx.tokens.On("PushToken", ctx, "222222").Return("tok-1", nil)
			fx.client.On("Send", ctx, mock.MatchedBy(func(msg *messaging.Message) bool {
				return msg.Notification.Title == tc.title && msg.Notification.Body == tc.body
			})).Return("msg-id", nil)

			require.NoError(t, fx.notifier.Notify(ctx, "222222", "111111", tc.kind))
			fx.client.AssertExpectations(t)
		})
	}
}

func TestNotify_NoToken(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	fx.tokens.On("PushToken", ctx, "222222").Return("", relay.ErrNotFound)

	err := fx.notifier.Notify(ctx, "222222", "111111", relay.KindNewMessage)
	require.NoError(t, err)
	fx.client.AssertNotCalled(t, "Send")
}

func TestNotify_StoreUnavailable(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	fx.tokens.On("PushToken", ctx, "222222").Return("", relay.ErrStoreUnavailable)

	err := fx.notifier.Notify(ctx, "222222", "111111", relay.KindNewMessage)
	require.NoError(t, err)
	fx.client.AssertNotCalled(t, "Send")
}

func TestNotify_SendFailure(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	fx.tokens.On("PushToken", ctx, "222222").Return("tok-1", nil)
	fx.client.On("Send", ctx, mock.Anything).Return("", errors.New("fcm down"))

	err := fx.notifier.Notify(ctx, "222222", "111111", relay.KindNewMessage)
	assert.Error(t, err)
	// A generic send failure must not retire the token.
	fx.tokens.AssertNotCalled(t, "DeletePushToken")
}

func TestNoop_Notify(t *testing.T) {
	n := NewNoop(zerolog.Nop())
	require.NoError(t, n.Notify(context.Background(), "222222", "111111", relay.KindNewMessage))
}

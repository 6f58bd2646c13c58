package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/realtime"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

type chatFixture struct {
	svc        *ChatService
	store      *fakeChatStore
	pusher     *recordingPusher
	dispatcher *recordingDispatcher
	alice      *domain.User
	bob        *domain.User
	carol      *domain.User
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	team := strPtr("t1")
	f := &chatFixture{
		alice:      newUser("alice", domain.UserTypeSalesStaff, strPtr("d1"), team),
		bob:        newUser("bob", domain.UserTypeSalesStaff, strPtr("d1"), team),
		carol:      newUser("carol", domain.UserTypeSalesStaff, strPtr("d1"), strPtr("t2")),
		pusher:     &recordingPusher{},
		dispatcher: newRecordingDispatcher(),
	}
	users := newFakeUserRepo(f.alice, f.bob, f.carol)
	f.store = newFakeChatStore(users)
	f.svc = NewChatService(ChatDependencies{
		RoomRepo:    f.store,
		MessageRepo: fakeMessages{f.store},
		UserRepo:    users,
		Pusher:      f.pusher,
		Dispatcher:  f.dispatcher,
		Logger:      zap.NewNop(),
	})
	return f
}

func TestFindOrCreateOneOnOneIsIdempotent(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, err := f.svc.FindOrCreateOneOnOne(ctx, f.alice, f.bob.ID)
	require.NoError(t, err)
	second, err := f.svc.FindOrCreateOneOnOne(ctx, f.alice, f.bob.ID)
	require.NoError(t, err)
	reverse, err := f.svc.FindOrCreateOneOnOne(ctx, f.bob, f.alice.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, reverse.ID)
	assert.False(t, first.IsGroup)
	assert.Len(t, f.store.rooms, 1)

	created := f.pusher.ofType(realtime.EventNewChatRoom)
	require.Len(t, created, 1)
	assert.Equal(t, f.bob.ID, created[0].UserID)
}

func TestFindOrCreateOneOnOneRejectsUnreachableTarget(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.FindOrCreateOneOnOne(context.Background(), f.alice, f.carol.ID)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)

	_, err = f.svc.FindOrCreateOneOnOne(context.Background(), f.alice, f.alice.ID)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestDeleteRoomRemovesEverythingAndNotifiesOnce(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	room, err := f.svc.FindOrCreateOneOnOne(ctx, f.alice, f.bob.ID)
	require.NoError(t, err)
	for _, text := range []string{"hi", "there"} {
		_, err := f.svc.SendMessage(ctx, f.alice, room.ID, MessageInput{Content: strPtr(text)})
		require.NoError(t, err)
	}
	require.Equal(t, 2, f.store.messageCount(room.ID))

	require.NoError(t, f.svc.DeleteRoom(ctx, f.alice, room.ID))

	assert.Zero(t, f.store.messageCount(room.ID))
	assert.Empty(t, f.store.members[room.ID])
	_, err = f.store.GetByID(ctx, room.ID)
	assert.True(t, apperrors.IsNotFound(err))

	deleted := f.pusher.ofType(realtime.EventChatRoomDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, f.bob.ID, deleted[0].UserID)
	assert.Equal(t, map[string]string{"roomId": room.ID}, deleted[0].Event.Payload)
}

func TestDeleteRoomRequiresMembership(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	room, err := f.svc.FindOrCreateOneOnOne(ctx, f.alice, f.bob.ID)
	require.NoError(t, err)

	err = f.svc.DeleteRoom(ctx, f.carol, room.ID)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestSendMessagePushesToMembersAndPublishes(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	room, err := f.svc.FindOrCreateOneOnOne(ctx, f.alice, f.bob.ID)
	require.NoError(t, err)

	msg, err := f.svc.SendMessage(ctx, f.alice, room.ID, MessageInput{Content: strPtr(" hello ")})
	require.NoError(t, err)
	assert.Equal(t, "hello", *msg.Content)
	assert.Equal(t, "name-alice", msg.SenderName)

	assert.Len(t, f.pusher.ofType(realtime.EventNewMessage), 2)
	sent := f.dispatcher.ofType(events.EventChatMessageSent)
	require.Len(t, sent, 1)
	assert.ElementsMatch(t, []string{"alice", "bob"}, sent[0].Payload.(events.ChatMessageSentPayload).MemberIDs)

	_, err = f.svc.SendMessage(ctx, f.alice, room.ID, MessageInput{Content: strPtr("  ")})
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
	_, err = f.svc.SendMessage(ctx, f.carol, room.ID, MessageInput{Content: strPtr("x")})
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCreateGroupRoomRequiresRole(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.CreateGroupRoom(context.Background(), f.alice, "team", []string{f.bob.ID})
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)

	leader := newUser("lead", domain.UserTypeTeamLeader, strPtr("d1"), strPtr("t1"))
	room, err := f.svc.CreateGroupRoom(context.Background(), leader, "team", []string{f.alice.ID, f.bob.ID, f.alice.ID})
	require.NoError(t, err)
	assert.True(t, room.IsGroup)
	assert.ElementsMatch(t, []string{"lead", "alice", "bob"}, f.store.members[room.ID])
	assert.Len(t, f.pusher.ofType(realtime.EventNewChatRoom), 2)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/observability"
	"github.com/spec-kit/sales-service/internal/realtime"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

type notificationFixture struct {
	svc        *NotificationService
	rows       *fakeNotificationRepo
	registry   *realtime.Registry
	dispatcher events.Dispatcher
}

func newNotificationFixture(t *testing.T, users ...*domain.User) *notificationFixture {
	t.Helper()
	registry := realtime.NewRegistry()
	f := &notificationFixture{
		rows:       &fakeNotificationRepo{},
		registry:   registry,
		dispatcher: events.NewInMemoryDispatcher(),
	}
	f.svc = NewNotificationService(NotificationDependencies{
		NotificationRepo: f.rows,
		UserRepo:         newFakeUserRepo(users...),
		Pusher:           realtime.NewLocalBus(registry, observability.NewMetrics(), zap.NewNop()),
		Dispatcher:       f.dispatcher,
		Metrics:          observability.NewMetrics(),
		Logger:           zap.NewNop(),
	})
	f.svc.RegisterHandlers()
	return f
}

func TestNotifyPersistsWithoutConnections(t *testing.T) {
	f := newNotificationFixture(t)
	require.Zero(t, f.registry.Len())

	rows, err := f.svc.Notify(context.Background(), domain.NotificationNewComment, "hello", nil, []string{"u1", "u2", "u1", ""})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, []string{"u1", "u2"}, f.rows.recipients())
}

func TestNotifyContinuesPastFailedInsert(t *testing.T) {
	f := newNotificationFixture(t)
	f.rows.fail = map[string]bool{"u1": true}

	rows, err := f.svc.Notify(context.Background(), domain.NotificationNewComment, "hello", nil, []string{"u1", "u2"})
	require.Error(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u2", rows[0].RecipientID)
}

func TestCustomerStatusFanOut(t *testing.T) {
	admin := newUser("admin", domain.UserTypeAdminStaff, nil, nil)
	actor := newUser("actor", domain.UserTypeAdminStaff, nil, nil)
	f := newNotificationFixture(t, admin, actor)

	err := f.dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventCustomerStatusChanged,
		ActorID: actor.ID,
		Payload: events.CustomerStatusChangedPayload{
			CustomerID:   "c1",
			CustomerName: "kim",
			RegistrantID: "staff",
			ManagerID:    strPtr("leader"),
			OldStatus:    domain.CustomerStatusRegistered,
			NewStatus:    domain.CustomerStatusVisited,
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"staff", "leader", "admin"}, f.rows.recipients())
}

func TestCustomerCreatedRecipients(t *testing.T) {
	got := customerCreatedAdminRecipients("creator", strPtr("mgr"), []string{"a1", "mgr", "creator", "a2"})
	assert.Equal(t, []string{"a1", "a2"}, got)
	assert.Equal(t, []string{"a1"}, customerCreatedAdminRecipients("creator", nil, []string{"a1", "creator"}))
}

func TestCustomerStatusRecipientsExcludeActor(t *testing.T) {
	got := customerStatusRecipients("staff", "staff", strPtr("mgr"), []string{"admin", "mgr"})
	assert.Equal(t, []string{"mgr", "admin"}, got)
}

func TestCommentOnOwnPostIsSilent(t *testing.T) {
	f := newNotificationFixture(t)
	err := f.dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventCommentAdded,
		ActorID: "author",
		Payload: events.CommentAddedPayload{PostID: "p1", PostAuthorID: "author", AuthorName: "a"},
	})
	require.NoError(t, err)
	assert.Empty(t, f.rows.recipients())
}

func TestChatMessageNotifiesEveryoneButSender(t *testing.T) {
	f := newNotificationFixture(t)
	err := f.dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventChatMessageSent,
		ActorID: "alice",
		Payload: events.ChatMessageSentPayload{RoomID: "r1", SenderName: "alice", MemberIDs: []string{"alice", "bob", "carol"}},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, f.rows.recipients())
}

func TestMarkReadHidesOtherUsersRows(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()
	rows, err := f.svc.Notify(ctx, domain.NotificationNewComment, "hello", nil, []string{"owner"})
	require.NoError(t, err)

	_, err = f.svc.MarkRead(ctx, &domain.User{ID: "intruder"}, rows[0].ID)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)

	n, err := f.svc.MarkRead(ctx, &domain.User{ID: "owner"}, rows[0].ID)
	require.NoError(t, err)
	assert.True(t, n.IsRead)
}

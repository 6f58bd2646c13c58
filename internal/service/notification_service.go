package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/observability"
	"github.com/spec-kit/sales-service/internal/realtime"
	"github.com/spec-kit/sales-service/internal/repository"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

var (
	pendingApproverTypes = []domain.UserType{domain.UserTypeAdminStaff, domain.UserTypeMiddleManager, domain.UserTypeGeneralHQManager}
	adminStaffTypes      = []domain.UserType{domain.UserTypeAdminStaff}
)

var userStatusLabels = map[domain.UserStatus]string{
	domain.UserStatusApproved:  "승인",
	domain.UserStatusPending:   "대기",
	domain.UserStatusRejected:  "거부",
	domain.UserStatusSuspended: "정지",
}

// NotificationService turns domain events into persisted notifications and
// best-effort realtime pushes.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	pusher        realtime.Pusher
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Pusher           realtime.Pusher
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		pusher:        deps.Pusher,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventUserCreated, n.handleUserCreated)
	n.dispatcher.Subscribe(events.EventUserStatusChanged, n.handleUserStatusChanged)
	n.dispatcher.Subscribe(events.EventUserOrgAssigned, n.handleUserOrgAssigned)
	n.dispatcher.Subscribe(events.EventCustomerCreated, n.handleCustomerCreated)
	n.dispatcher.Subscribe(events.EventCustomerStatusChanged, n.handleCustomerStatusChanged)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
	n.dispatcher.Subscribe(events.EventChatMessageSent, n.handleChatMessageSent)
}

// Notify persists one notification per recipient and then pushes each
// persisted row. Persisting never depends on the push; a failed insert for one
// recipient is logged and the rest still proceed.
func (n *NotificationService) Notify(ctx context.Context, kind domain.NotificationType, message string, link *string, recipients []string) ([]domain.Notification, error) {
	var (
		persisted []domain.Notification
		errs      []error
	)
	for _, recipientID := range recipientSet("", recipients...) {
		row := domain.Notification{RecipientID: recipientID, Type: kind, Message: message, Link: link}
		if err := n.notifications.Create(ctx, &row); err != nil {
			n.logger.Error("notification persist failed",
				zap.String("recipient_id", recipientID),
				zap.String("type", string(kind)),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		n.metrics.RecordNotification(string(kind))
		persisted = append(persisted, row)
	}
	for _, row := range persisted {
		n.pusher.Push(ctx, row.RecipientID, realtime.Event{Type: realtime.EventNewNotification, Payload: row})
	}
	return persisted, errors.Join(errs...)
}

func (n *NotificationService) usersOfType(ctx context.Context, types []domain.UserType) ([]string, error) {
	users, err := n.users.Find(ctx, repository.UserQuery{Types: types})
	if err != nil {
		return nil, err
	}
	return userIDs(users), nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	admins, err := n.usersOfType(ctx, pendingApproverTypes)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("새로운 사용자 %s님이 가입 승인을 기다립니다.", p.Name)
	if p.OrganizationRequest != nil && *p.OrganizationRequest != "" {
		message = fmt.Sprintf("%s 소속 요청: %s", message, *p.OrganizationRequest)
	}
	_, err = n.Notify(ctx, domain.NotificationNewUserPending, message, link("/admin/users"), admins)
	return err
}

func (n *NotificationService) handleUserCreated(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.UserCreatedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	admins, err := n.usersOfType(ctx, adminStaffTypes)
	if err != nil {
		return err
	}
	message := fmt.Sprintf("새로운 사용자 %s님이 가입했습니다.", p.Name)
	_, err = n.Notify(ctx, domain.NotificationNewUser, message, link("/admin/users"), recipientSet(event.ActorID, admins...))
	return err
}

func (n *NotificationService) handleUserStatusChanged(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.UserStatusChangedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	label, found := userStatusLabels[p.NewStatus]
	if !found {
		label = string(p.NewStatus)
	}
	message := fmt.Sprintf("회원님의 계정 상태가 '%s'(으)로 변경되었습니다.", label)
	_, err := n.Notify(ctx, domain.NotificationUserStatusUpdate, message, link("/my-page"), []string{p.UserID})
	return err
}

func (n *NotificationService) handleUserOrgAssigned(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.UserOrgAssignedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	_, err := n.Notify(ctx, domain.NotificationUserProfileUpdate, "관리자에 의해 회원님의 소속이 변경되었습니다.", link("/my-page"), []string{p.UserID})
	return err
}

func (n *NotificationService) handleCustomerCreated(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.CustomerCreatedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	var errs []error
	if p.ManagerID != nil && *p.ManagerID != event.ActorID {
		message := fmt.Sprintf("%s님이 신규 고객 %s님을 등록했습니다.", p.CreatorName, p.CustomerName)
		if _, err := n.Notify(ctx, domain.NotificationNewCustomer, message, link("/customers/"+p.CustomerID), []string{*p.ManagerID}); err != nil {
			errs = append(errs, err)
		}
	}

	admins, err := n.usersOfType(ctx, pendingApproverTypes)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	recipients := customerCreatedAdminRecipients(event.ActorID, p.ManagerID, admins)
	message := fmt.Sprintf("신규 고객 %s님이 등록되었습니다. (등록자: %s)", p.CustomerName, p.CreatorName)
	if _, err := n.Notify(ctx, domain.NotificationNewCustomer, message, link("/customers/"+p.CustomerID+"/edit"), recipients); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// customerCreatedAdminRecipients is every top manager except the creator and
// the creator's manager, who gets a personal message instead.
func customerCreatedAdminRecipients(creatorID string, managerID *string, admins []string) []string {
	out := recipientSet(creatorID, admins...)
	if managerID == nil {
		return out
	}
	return recipientSet(*managerID, out...)
}

func (n *NotificationService) handleCustomerStatusChanged(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.CustomerStatusChangedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	admins, err := n.usersOfType(ctx, adminStaffTypes)
	if err != nil {
		return err
	}
	actorName := event.ActorID
	if actor, err := n.users.GetByID(ctx, event.ActorID); err == nil {
		actorName = actor.Name
	}
	recipients := customerStatusRecipients(event.ActorID, p.RegistrantID, p.ManagerID, admins)
	message := fmt.Sprintf("%s님이 고객 %s님의 상태를 '%s'(으)로 변경했습니다.", actorName, p.CustomerName, p.NewStatus.Label())
	_, err = n.Notify(ctx, domain.NotificationCustomerStatusUpdate, message, link("/customers/"+p.CustomerID+"/edit"), recipients)
	return err
}

// customerStatusRecipients is {registrant, registrant's manager, admins} minus the actor.
func customerStatusRecipients(actorID, registrantID string, managerID *string, admins []string) []string {
	ids := append([]string{registrantID, deref(managerID)}, admins...)
	return recipientSet(actorID, ids...)
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	recipients := recipientSet(event.ActorID, p.PostAuthorID)
	if len(recipients) == 0 {
		return nil
	}
	message := fmt.Sprintf("%s님이 회원님의 게시글에 댓글을 남겼습니다.", p.AuthorName)
	_, err := n.Notify(ctx, domain.NotificationNewComment, message, link("/?postId="+p.PostID), recipients)
	return err
}

func (n *NotificationService) handleChatMessageSent(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.ChatMessageSentPayload)
	if !ok {
		return errUnexpectedPayload(event)
	}
	roomName := p.RoomName
	if roomName == "" {
		roomName = "대화"
	}
	message := fmt.Sprintf("[%s] %s님으로부터 새 메시지", roomName, p.SenderName)
	_, err := n.Notify(ctx, domain.NotificationNewChatMessage, message, link("/chat?roomId="+p.RoomID), recipientSet(event.ActorID, p.MemberIDs...))
	return err
}

// List returns the actor's notifications newest first, optionally only those after since.
func (n *NotificationService) List(ctx context.Context, actor *domain.User, since *time.Time) ([]domain.Notification, error) {
	return n.notifications.ListByRecipient(ctx, actor.ID, since, 0)
}

// MarkRead marks one of the actor's notifications read. Other users' rows look missing.
func (n *NotificationService) MarkRead(ctx context.Context, actor *domain.User, id string) (*domain.Notification, error) {
	row, err := n.notifications.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("알림을 찾을 수 없습니다.", nil)
		}
		return nil, err
	}
	if row.RecipientID != actor.ID {
		return nil, apperrors.NewNotFound("알림을 찾을 수 없습니다.", nil)
	}
	if err := n.notifications.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	row.IsRead = true
	return row, nil
}

// MarkAllRead marks every unread notification of the actor.
func (n *NotificationService) MarkAllRead(ctx context.Context, actor *domain.User) (int64, error) {
	return n.notifications.MarkAllRead(ctx, actor.ID)
}

func link(s string) *string {
	return &s
}

func errUnexpectedPayload(event events.Event) error {
	return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
}

// publish sends event and logs handler failures. Side effects of an event
// never fail the mutation that raised it.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

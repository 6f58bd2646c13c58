package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/auth"
	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/realtime"
	"github.com/spec-kit/sales-service/internal/repository"
	"github.com/spec-kit/sales-service/internal/storage"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

const (
	messageHistoryLimit   = 100
	msgRoomNotFound       = "채팅방을 찾을 수 없습니다."
	msgNotRoomMember      = "채팅방에 참여하고 있지 않습니다."
	msgChatTargetDenied   = "대화할 수 없는 사용자입니다."
	msgMessageNotFound    = "메시지를 찾을 수 없습니다."
	msgEmptyChatMessage   = "메시지 내용 또는 파일이 필요합니다."
	msgGroupChatDenied    = "그룹 채팅방을 만들 권한이 없습니다."
	msgCannotChatWithSelf = "자기 자신과는 대화할 수 없습니다."
)

// ChatService implements rooms, messages and hierarchy-shaped chat targeting.
type ChatService struct {
	rooms      repository.ChatRoomRepository
	messages   repository.ChatMessageRepository
	users      repository.UserRepository
	pusher     realtime.Pusher
	dispatcher events.Dispatcher
	storage    storage.Storage
	logger     *zap.Logger
}

// ChatDependencies bundles collaborators for the chat service.
type ChatDependencies struct {
	RoomRepo    repository.ChatRoomRepository
	MessageRepo repository.ChatMessageRepository
	UserRepo    repository.UserRepository
	Pusher      realtime.Pusher
	Dispatcher  events.Dispatcher
	Storage     storage.Storage
	Logger      *zap.Logger
}

// MessageInput is a chat message; either text or an uploaded file.
type MessageInput struct {
	Content  *string
	FileURL  *string
	FileType *string
	FileName *string
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	return &ChatService{
		rooms:      deps.RoomRepo,
		messages:   deps.MessageRepo,
		users:      deps.UserRepo,
		pusher:     deps.Pusher,
		dispatcher: deps.Dispatcher,
		storage:    deps.Storage,
		logger:     deps.Logger,
	}
}

// Targets lists the users actor may start a conversation with.
func (s *ChatService) Targets(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	q, ok := chatTargetQuery(actor)
	if !ok {
		return []domain.User{}, nil
	}
	return s.users.Find(ctx, q)
}

// Subordinates lists the people actor leads.
func (s *ChatService) Subordinates(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	exclude := actor.ID
	q := repository.UserQuery{ExcludeID: &exclude}
	switch actor.UserType {
	case domain.UserTypeTeamLeader:
		if actor.TeamID == nil {
			return []domain.User{}, nil
		}
		q.TeamID = actor.TeamID
	case domain.UserTypeDepartmentManager:
		if actor.DepartmentID == nil {
			return []domain.User{}, nil
		}
		q.DepartmentID = actor.DepartmentID
	case domain.UserTypeAdminStaff:
	default:
		return []domain.User{}, nil
	}
	return s.users.Find(ctx, q)
}

// CreateGroupRoom opens a named room. The creator is always a member.
func (s *ChatService) CreateGroupRoom(ctx context.Context, actor *domain.User, name string, memberIDs []string) (*domain.ChatRoomView, error) {
	if !auth.HasRole(actor.UserType, auth.GroupChatRoles) {
		return nil, apperrors.NewForbidden(msgGroupChatDenied)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("채팅방 이름은 필수입니다.", nil)
	}
	members := recipientSet("", append([]string{actor.ID}, memberIDs...)...)
	if len(members) < 2 {
		return nil, apperrors.NewValidationError("참여자를 한 명 이상 선택해주세요.", nil)
	}

	room := &domain.ChatRoom{Name: &name, IsGroup: true}
	if err := s.rooms.CreateWithMembers(ctx, room, members); err != nil {
		return nil, err
	}
	view, err := s.rooms.GetByID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range recipientSet(actor.ID, members...) {
		s.pusher.Push(ctx, id, realtime.Event{Type: realtime.EventNewChatRoom, Payload: view})
	}
	return view, nil
}

// FindOrCreateOneOnOne returns the direct room between actor and target,
// creating it when missing. Creating requires target to be a chat target of
// actor; an existing room is returned regardless.
func (s *ChatService) FindOrCreateOneOnOne(ctx context.Context, actor *domain.User, targetID string) (*domain.ChatRoomView, error) {
	if targetID == actor.ID {
		return nil, apperrors.NewValidationError(msgCannotChatWithSelf, nil)
	}
	existing, err := s.rooms.FindOneOnOne(ctx, actor.ID, targetID)
	if err == nil {
		return existing, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, notFoundAs(err, msgUserNotFound)
	}
	if !IsChatTarget(actor, target) {
		return nil, apperrors.NewForbidden(msgChatTargetDenied)
	}

	room := &domain.ChatRoom{IsGroup: false}
	if err := s.rooms.CreateWithMembers(ctx, room, []string{actor.ID, target.ID}); err != nil {
		return nil, err
	}
	view, err := s.rooms.GetByID(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	s.pusher.Push(ctx, target.ID, realtime.Event{Type: realtime.EventNewChatRoom, Payload: view})
	return view, nil
}

// Rooms lists the rooms actor belongs to, most recently active first.
func (s *ChatService) Rooms(ctx context.Context, actor *domain.User) ([]domain.ChatRoomView, error) {
	return s.rooms.ListForUser(ctx, actor.ID)
}

func (s *ChatService) requireMember(ctx context.Context, roomID, userID string) error {
	ok, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbidden(msgNotRoomMember)
	}
	return nil
}

// Messages returns the latest messages of a room, oldest first.
func (s *ChatService) Messages(ctx context.Context, actor *domain.User, roomID string) ([]domain.ChatMessage, error) {
	if err := s.requireMember(ctx, roomID, actor.ID); err != nil {
		return nil, err
	}
	return s.messages.ListRecent(ctx, roomID, messageHistoryLimit)
}

// SendMessage stores a message, pushes it to every member and leaves a
// notification for everyone but the sender.
func (s *ChatService) SendMessage(ctx context.Context, actor *domain.User, roomID string, input MessageInput) (*domain.ChatMessage, error) {
	content := trimmedOrNil(input.Content)
	if content == nil && input.FileURL == nil {
		return nil, apperrors.NewValidationError(msgEmptyChatMessage, nil)
	}
	if err := s.requireMember(ctx, roomID, actor.ID); err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, notFoundAs(err, msgRoomNotFound)
	}

	msg := &domain.ChatMessage{
		RoomID:   roomID,
		SenderID: actor.ID,
		Content:  content,
		FileURL:  input.FileURL,
		FileType: input.FileType,
		FileName: input.FileName,
	}
	if err := s.messages.CreateAndTouchRoom(ctx, msg); err != nil {
		return nil, err
	}

	memberIDs := room.MemberIDs()
	for _, id := range memberIDs {
		s.pusher.Push(ctx, id, realtime.Event{Type: realtime.EventNewMessage, Payload: msg})
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventChatMessageSent,
		ActorID: actor.ID,
		Payload: events.ChatMessageSentPayload{
			RoomID:     roomID,
			RoomName:   deref(room.Name),
			MessageID:  msg.ID,
			SenderName: msg.SenderName,
			MemberIDs:  memberIDs,
		},
	})
	return msg, nil
}

// DeleteRoom removes a room with its messages and memberships and tells
// each other member once.
func (s *ChatService) DeleteRoom(ctx context.Context, actor *domain.User, roomID string) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return notFoundAs(err, msgRoomNotFound)
	}
	isMember := false
	for _, m := range room.Members {
		if m.UserID == actor.ID {
			isMember = true
			break
		}
	}
	if !isMember {
		return apperrors.NewForbidden(msgNotRoomMember)
	}

	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return notFoundAs(err, msgRoomNotFound)
	}
	payload := map[string]string{"roomId": roomID}
	for _, id := range recipientSet(actor.ID, room.MemberIDs()...) {
		s.pusher.Push(ctx, id, realtime.Event{Type: realtime.EventChatRoomDeleted, Payload: payload})
	}
	return nil
}

// DeleteMessage lets a sender retract their own message.
func (s *ChatService) DeleteMessage(ctx context.Context, actor *domain.User, messageID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return notFoundAs(err, msgMessageNotFound)
	}
	if msg.SenderID != actor.ID {
		return apperrors.NewForbidden("본인이 보낸 메시지만 삭제할 수 있습니다.")
	}
	return notFoundAs(s.messages.Delete(ctx, messageID), msgMessageNotFound)
}

// Upload stores a chat attachment and returns where it can be fetched.
func (s *ChatService) Upload(ctx context.Context, up *Upload) (*StoredFile, error) {
	if up == nil || up.Body == nil {
		return nil, apperrors.NewValidationError("파일이 필요합니다.", nil)
	}
	return saveUpload(ctx, s.storage, up)
}

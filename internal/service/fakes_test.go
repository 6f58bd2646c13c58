package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/realtime"
	"github.com/spec-kit/sales-service/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByLoginID(_ context.Context, loginID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserID == loginID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ExistsByLoginIDOrEmail(_ context.Context, loginID string, email *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserID == loginID || (email != nil && u.Email != nil && *u.Email == *email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ListSummaries(context.Context, repository.UserListFilter) ([]domain.UserSummary, error) {
	return nil, nil
}

func (r *fakeUserRepo) Find(_ context.Context, q repository.UserQuery) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if q.ExcludeID != nil && u.ID == *q.ExcludeID {
			continue
		}
		if q.DepartmentID != nil && !sameID(q.DepartmentID, u.DepartmentID) {
			continue
		}
		if q.TeamID != nil && !sameID(q.TeamID, u.TeamID) {
			continue
		}
		if q.LevelBelow != nil && u.OrganizationLevel >= *q.LevelBelow {
			continue
		}
		if len(q.Types) > 0 {
			match := false
			for _, t := range q.Types {
				if u.UserType == t {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *u)
	}
	return out, nil
}

type fakeCustomerRepo struct {
	mu        sync.Mutex
	users     *fakeUserRepo
	customers map[string]*domain.Customer
	updates   int
}

func newFakeCustomerRepo(users *fakeUserRepo) *fakeCustomerRepo {
	return &fakeCustomerRepo{users: users, customers: map[string]*domain.Customer{}}
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.updates++
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) withRegistrant(c *domain.Customer) domain.CustomerWithRegistrant {
	out := domain.CustomerWithRegistrant{Customer: *c}
	if u, err := r.users.GetByID(context.Background(), c.RegisteredByID); err == nil {
		out.RegisteredBy = domain.Registrant{
			ID:           u.ID,
			Name:         u.Name,
			UserType:     u.UserType,
			DepartmentID: u.DepartmentID,
			TeamID:       u.TeamID,
			ManagerID:    u.ManagerID,
		}
	}
	return out
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.CustomerWithRegistrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := r.withRegistrant(c)
	return &out, nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) List(_ context.Context, f repository.CustomerFilter) ([]domain.CustomerWithRegistrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.CustomerWithRegistrant{}
	for _, c := range r.customers {
		row := r.withRegistrant(c)
		reg := row.RegisteredBy
		switch {
		case f.RegisteredByID != nil && reg.ID != *f.RegisteredByID:
			continue
		case f.RegistrantDepartmentID != nil && !sameID(f.RegistrantDepartmentID, reg.DepartmentID):
			continue
		case f.RegistrantTeamID != nil && !sameID(f.RegistrantTeamID, reg.TeamID):
			continue
		case f.Status != nil && c.Status != *f.Status:
			continue
		case f.Potential != nil && (c.Potential == nil || *c.Potential != *f.Potential):
			continue
		case f.Source != nil && (c.Source == nil || !strings.Contains(strings.ToLower(*c.Source), strings.ToLower(*f.Source))):
			continue
		case f.RegistrantName != nil && !strings.Contains(reg.Name, *f.RegistrantName):
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	batches [][]domain.ActivityLog
}

func (r *fakeActivityRepo) CreateBatch(_ context.Context, entries []domain.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, entries)
	return nil
}

func (r *fakeActivityRepo) ListByEntity(_ context.Context, entityType, entityID string) ([]domain.ActivityLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ActivityLog
	for _, b := range r.batches {
		for _, e := range b {
			if e.EntityType == entityType && e.EntityID == entityID {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) rows() []domain.ActivityLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ActivityLog
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

type fakeChatStore struct {
	mu       sync.Mutex
	users    *fakeUserRepo
	rooms    map[string]*domain.ChatRoom
	members  map[string][]string
	messages map[string]*domain.ChatMessage
}

func newFakeChatStore(users *fakeUserRepo) *fakeChatStore {
	return &fakeChatStore{
		users:    users,
		rooms:    map[string]*domain.ChatRoom{},
		members:  map[string][]string{},
		messages: map[string]*domain.ChatMessage{},
	}
}

func (s *fakeChatStore) CreateWithMembers(_ context.Context, room *domain.ChatRoom, memberIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room.ID = uuid.NewString()
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt
	cp := *room
	s.rooms[room.ID] = &cp
	s.members[room.ID] = append([]string(nil), memberIDs...)
	return nil
}

func (s *fakeChatStore) view(id string) *domain.ChatRoomView {
	room := s.rooms[id]
	v := &domain.ChatRoomView{ChatRoom: *room, Members: []domain.ChatMember{}}
	for _, uid := range s.members[id] {
		m := domain.ChatMember{UserID: uid}
		if u, err := s.users.GetByID(context.Background(), uid); err == nil {
			m.Name, m.UserType = u.Name, u.UserType
		}
		v.Members = append(v.Members, m)
	}
	for _, msg := range s.messages {
		if msg.RoomID == id {
			v.MessageCount++
		}
	}
	return v
}

func (s *fakeChatStore) GetByID(_ context.Context, id string) (*domain.ChatRoomView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return nil, pgx.ErrNoRows
	}
	return s.view(id), nil
}

func (s *fakeChatStore) FindOneOnOne(_ context.Context, a, b string) (*domain.ChatRoomView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, room := range s.rooms {
		m := s.members[id]
		if room.IsGroup || len(m) != 2 {
			continue
		}
		if (m[0] == a && m[1] == b) || (m[0] == b && m[1] == a) {
			return s.view(id), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeChatStore) ListForUser(_ context.Context, userID string) ([]domain.ChatRoomView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ChatRoomView
	for id := range s.rooms {
		for _, m := range s.members[id] {
			if m == userID {
				out = append(out, *s.view(id))
			}
		}
	}
	return out, nil
}

func (s *fakeChatStore) IsMember(_ context.Context, roomID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members[roomID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeChatStore) Delete(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return pgx.ErrNoRows
	}
	for id, msg := range s.messages {
		if msg.RoomID == roomID {
			delete(s.messages, id)
		}
	}
	delete(s.members, roomID)
	delete(s.rooms, roomID)
	return nil
}

// fakeMessages shares state with the room store so room deletion cascades.
type fakeMessages struct{ *fakeChatStore }

func (s fakeMessages) CreateAndTouchRoom(_ context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[msg.RoomID]
	if !ok {
		return pgx.ErrNoRows
	}
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()
	if u, err := s.users.GetByID(context.Background(), msg.SenderID); err == nil {
		msg.SenderName = u.Name
	}
	room.UpdatedAt = msg.CreatedAt
	cp := *msg
	s.messages[msg.ID] = &cp
	return nil
}

func (s fakeMessages) ListRecent(_ context.Context, roomID string, _ int) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ChatMessage
	for _, msg := range s.messages {
		if msg.RoomID == roomID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (s fakeMessages) GetByID(_ context.Context, id string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *msg
	return &cp, nil
}

func (s fakeMessages) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.messages, id)
	return nil
}

func (s *fakeChatStore) messageCount(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, msg := range s.messages {
		if msg.RoomID == roomID {
			n++
		}
	}
	return n
}

var errInsertFailed = errors.New("insert failed")

type fakeNotificationRepo struct {
	mu   sync.Mutex
	rows []domain.Notification
	fail map[string]bool
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[n.RecipientID] {
		return errInsertFailed
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	r.rows = append(r.rows, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID string, _ *time.Time, _ int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.rows {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.ID == id {
			cp := n
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.rows {
		if r.rows[i].RecipientID == recipientID && !r.rows[i].IsRead {
			r.rows[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rows))
	for _, n := range r.rows {
		out = append(out, n.RecipientID)
	}
	return out
}

type pushed struct {
	UserID string
	Event  realtime.Event
}

type recordingPusher struct {
	mu     sync.Mutex
	pushes []pushed
}

func (p *recordingPusher) Push(_ context.Context, userID string, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushed{UserID: userID, Event: event})
}

func (p *recordingPusher) ofType(eventType string) []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pushed
	for _, e := range p.pushes {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type recordingDispatcher struct {
	events.Dispatcher
	mu        sync.Mutex
	published []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{Dispatcher: events.NewInMemoryDispatcher()}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.published = append(d.published, event)
	d.mu.Unlock()
	return d.Dispatcher.Publish(ctx, event)
}

func (d *recordingDispatcher) ofType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.published {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func strPtr(s string) *string { return &s }

func newUser(id string, t domain.UserType, dept, team *string) *domain.User {
	return &domain.User{
		ID:                id,
		UserID:            "login-" + id,
		Name:              "name-" + id,
		Status:            domain.UserStatusApproved,
		UserType:          t,
		OrganizationLevel: t.OrganizationLevel(),
		DepartmentID:      dept,
		TeamID:            team,
	}
}

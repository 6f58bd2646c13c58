package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-service/internal/domain"
)

// ChatRoomRepository persists rooms and their memberships.
type ChatRoomRepository interface {
	CreateWithMembers(ctx context.Context, room *domain.ChatRoom, memberIDs []string) error
	GetByID(ctx context.Context, id string) (*domain.ChatRoomView, error)
	// FindOneOnOne returns pgx.ErrNoRows when the pair has no direct room.
	FindOneOnOne(ctx context.Context, userA, userB string) (*domain.ChatRoomView, error)
	ListForUser(ctx context.Context, userID string) ([]domain.ChatRoomView, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
	Delete(ctx context.Context, roomID string) error
}

type chatRoomRepository struct {
	pool *pgxpool.Pool
}

// NewChatRoomRepository constructs repository.
func NewChatRoomRepository(pool *pgxpool.Pool) ChatRoomRepository {
	return &chatRoomRepository{pool: pool}
}

func (r *chatRoomRepository) CreateWithMembers(ctx context.Context, room *domain.ChatRoom, memberIDs []string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertRoom = `
            INSERT INTO chat_rooms (name, is_group)
            VALUES ($1,$2)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertRoom, room.Name, room.IsGroup).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return err
		}
		const insertMember = `INSERT INTO chat_room_members (room_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`
		batch := &pgx.Batch{}
		for _, id := range memberIDs {
			batch.Queue(insertMember, room.ID, id)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

const roomSelect = `
        SELECT r.id, r.name, r.is_group, r.created_at, r.updated_at,
               (SELECT COUNT(*) FROM chat_messages m WHERE m.room_id = r.id)
        FROM chat_rooms r`

func (r *chatRoomRepository) GetByID(ctx context.Context, id string) (*domain.ChatRoomView, error) {
	rooms, err := r.queryRooms(ctx, roomSelect+` WHERE r.id=$1`, id)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &rooms[0], nil
}

func (r *chatRoomRepository) FindOneOnOne(ctx context.Context, userA, userB string) (*domain.ChatRoomView, error) {
	query := roomSelect + `
        WHERE r.is_group = FALSE
          AND (SELECT COUNT(*) FROM chat_room_members m WHERE m.room_id = r.id) = 2
          AND EXISTS (SELECT 1 FROM chat_room_members m WHERE m.room_id = r.id AND m.user_id = $1)
          AND EXISTS (SELECT 1 FROM chat_room_members m WHERE m.room_id = r.id AND m.user_id = $2)
        ORDER BY r.created_at
        LIMIT 1`
	rooms, err := r.queryRooms(ctx, query, userA, userB)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &rooms[0], nil
}

func (r *chatRoomRepository) ListForUser(ctx context.Context, userID string) ([]domain.ChatRoomView, error) {
	query := roomSelect + `
        WHERE EXISTS (SELECT 1 FROM chat_room_members m WHERE m.room_id = r.id AND m.user_id = $1)
        ORDER BY r.updated_at DESC`
	return r.queryRooms(ctx, query, userID)
}

func (r *chatRoomRepository) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM chat_room_members WHERE room_id=$1 AND user_id=$2)`
	var ok bool
	err := r.pool.QueryRow(ctx, query, roomID, userID).Scan(&ok)
	return ok, err
}

// Delete removes messages, memberships and the room in one transaction.
func (r *chatRoomRepository) Delete(ctx context.Context, roomID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chat_messages WHERE room_id=$1`, roomID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM chat_room_members WHERE room_id=$1`, roomID); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM chat_rooms WHERE id=$1`, roomID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func (r *chatRoomRepository) queryRooms(ctx context.Context, query string, args ...any) ([]domain.ChatRoomView, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ChatRoomView{}
	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		var v domain.ChatRoomView
		if err := rows.Scan(&v.ID, &v.Name, &v.IsGroup, &v.CreatedAt, &v.UpdatedAt, &v.MessageCount); err != nil {
			return nil, err
		}
		v.Members = []domain.ChatMember{}
		index[v.ID] = len(result)
		ids = append(ids, v.ID)
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	const membersQuery = `
        SELECT m.room_id, u.id, u.name, u.user_type
        FROM chat_room_members m
        JOIN users u ON u.id = m.user_id
        WHERE m.room_id = ANY($1)
        ORDER BY m.joined_at, u.name`
	memberRows, err := r.pool.Query(ctx, membersQuery, ids)
	if err != nil {
		return nil, err
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var roomID string
		var m domain.ChatMember
		if err := memberRows.Scan(&roomID, &m.UserID, &m.Name, &m.UserType); err != nil {
			return nil, err
		}
		if i, ok := index[roomID]; ok {
			result[i].Members = append(result[i].Members, m)
		}
	}
	return result, memberRows.Err()
}

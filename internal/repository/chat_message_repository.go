package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-service/internal/domain"
)

// ChatMessageRepository persists chat messages.
type ChatMessageRepository interface {
	// CreateAndTouchRoom inserts the message and bumps the room's updated_at together.
	CreateAndTouchRoom(ctx context.Context, msg *domain.ChatMessage) error
	ListRecent(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error)
	GetByID(ctx context.Context, id string) (*domain.ChatMessage, error)
	Delete(ctx context.Context, id string) error
}

type chatMessageRepository struct {
	pool *pgxpool.Pool
}

// NewChatMessageRepository constructs repository.
func NewChatMessageRepository(pool *pgxpool.Pool) ChatMessageRepository {
	return &chatMessageRepository{pool: pool}
}

func (r *chatMessageRepository) CreateAndTouchRoom(ctx context.Context, msg *domain.ChatMessage) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insert = `
            WITH inserted AS (
                INSERT INTO chat_messages (room_id, sender_id, content, file_url, file_type, file_name)
                VALUES ($1,$2,$3,$4,$5,$6)
                RETURNING id, created_at, sender_id
            )
            SELECT i.id, i.created_at, u.name FROM inserted i JOIN users u ON u.id = i.sender_id`
		if err := tx.QueryRow(ctx, insert,
			msg.RoomID,
			msg.SenderID,
			msg.Content,
			msg.FileURL,
			msg.FileType,
			msg.FileName,
		).Scan(&msg.ID, &msg.CreatedAt, &msg.SenderName); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE chat_rooms SET updated_at=NOW() WHERE id=$1`, msg.RoomID)
		return err
	})
}

const messageSelect = `
        SELECT m.id, m.room_id, m.sender_id, u.name, m.content, m.file_url, m.file_type, m.file_name, m.created_at
        FROM chat_messages m
        JOIN users u ON u.id = m.sender_id`

func scanMessage(row rowScanner) (domain.ChatMessage, error) {
	var m domain.ChatMessage
	err := row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.SenderName, &m.Content, &m.FileURL, &m.FileType, &m.FileName, &m.CreatedAt)
	return m, err
}

// ListRecent returns the latest limit messages, oldest first.
func (r *chatMessageRepository) ListRecent(ctx context.Context, roomID string, limit int) ([]domain.ChatMessage, error) {
	query := `SELECT * FROM (` + messageSelect + `
        WHERE m.room_id=$1
        ORDER BY m.created_at DESC
        LIMIT $2) recent
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ChatMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *chatMessageRepository) GetByID(ctx context.Context, id string) (*domain.ChatMessage, error) {
	m, err := scanMessage(r.pool.QueryRow(ctx, messageSelect+` WHERE m.id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *chatMessageRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM chat_messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-service/internal/domain"
)

// PostRepository persists bulletin board posts and their comments.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	Delete(ctx context.Context, id string) error
	CreateComment(ctx context.Context, comment *domain.Comment) error
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository constructs repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        WITH inserted AS (
            INSERT INTO posts (title, content, file_url, file_type, author_id)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id, created_at, updated_at, author_id
        )
        SELECT i.id, i.created_at, i.updated_at, u.name FROM inserted i JOIN users u ON u.id = i.author_id`
	post.Comments = []domain.Comment{}
	return r.pool.QueryRow(ctx, query,
		post.Title,
		post.Content,
		post.FileURL,
		post.FileType,
		post.AuthorID,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt, &post.AuthorName)
}

const postSelect = `
        SELECT p.id, p.title, p.content, p.file_url, p.file_type, p.author_id, u.name, p.created_at, p.updated_at
        FROM posts p
        JOIN users u ON u.id = p.author_id`

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	posts, err := r.queryPosts(ctx, postSelect+` WHERE p.id=$1`, id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &posts[0], nil
}

func (r *postRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.queryPosts(ctx, postSelect+` ORDER BY p.created_at DESC`)
}

// Delete removes the post together with its comments.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id=$1`, id); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func (r *postRepository) CreateComment(ctx context.Context, comment *domain.Comment) error {
	const query = `
        WITH inserted AS (
            INSERT INTO comments (post_id, author_id, content)
            VALUES ($1,$2,$3)
            RETURNING id, created_at, author_id
        )
        SELECT i.id, i.created_at, u.name FROM inserted i JOIN users u ON u.id = i.author_id`
	return r.pool.QueryRow(ctx, query,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.AuthorName)
}

func (r *postRepository) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Post{}
	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.FileURL, &p.FileType, &p.AuthorID, &p.AuthorName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Comments = []domain.Comment{}
		index[p.ID] = len(result)
		ids = append(ids, p.ID)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	const commentsQuery = `
        SELECT c.id, c.post_id, c.author_id, u.name, c.content, c.created_at
        FROM comments c
        JOIN users u ON u.id = c.author_id
        WHERE c.post_id = ANY($1)
        ORDER BY c.created_at ASC`
	commentRows, err := r.pool.Query(ctx, commentsQuery, ids)
	if err != nil {
		return nil, err
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var c domain.Comment
		if err := commentRows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[c.PostID]; ok {
			result[i].Comments = append(result[i].Comments, c)
			result[i].CommentCount++
		}
	}
	return result, commentRows.Err()
}

package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/repository"
	"github.com/spec-kit/sales-service/internal/storage"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

const msgPostNotFound = "게시글을 찾을 수 없습니다."

// PostService runs the bulletin board.
type PostService struct {
	posts      repository.PostRepository
	storage    storage.Storage
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PostDependencies bundles collaborators for the post service.
type PostDependencies struct {
	PostRepo   repository.PostRepository
	Storage    storage.Storage
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// PostCreateInput is a new post with an optional attachment.
type PostCreateInput struct {
	Title   string
	Content string
	File    *Upload
}

// NewPostService constructs the service.
func NewPostService(deps PostDependencies) *PostService {
	return &PostService{posts: deps.PostRepo, storage: deps.Storage, dispatcher: deps.Dispatcher, logger: deps.Logger}
}

func (s *PostService) List(ctx context.Context) ([]domain.Post, error) {
	return s.posts.List(ctx)
}

func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgPostNotFound)
	}
	return post, nil
}

// Create publishes a post authored by actor.
func (s *PostService) Create(ctx context.Context, actor *domain.User, input PostCreateInput) (*domain.Post, error) {
	title, content := strings.TrimSpace(input.Title), strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("제목과 내용은 필수입니다.", nil)
	}
	post := &domain.Post{Title: title, Content: content, AuthorID: actor.ID}
	if input.File != nil {
		stored, err := saveUpload(ctx, s.storage, input.File)
		if err != nil {
			return nil, err
		}
		post.FileURL, post.FileType = &stored.URL, &stored.Type
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post with its comments. The attachment is removed best effort.
func (s *PostService) Delete(ctx context.Context, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return notFoundAs(err, msgPostNotFound)
	}
	if post.FileURL != nil {
		if err := s.storage.Delete(ctx, *post.FileURL); err != nil {
			s.logger.Warn("post attachment removal failed", zap.String("post_id", id), zap.Error(err))
		}
	}
	return nil
}

// AddComment comments on a post and notifies its author unless they wrote it.
func (s *PostService) AddComment(ctx context.Context, actor *domain.User, postID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("댓글 내용을 입력해주세요.", nil)
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := &domain.Comment{PostID: postID, AuthorID: actor.ID, Content: content}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventCommentAdded,
		ActorID: actor.ID,
		Payload: events.CommentAddedPayload{
			PostID:       post.ID,
			PostTitle:    post.Title,
			PostAuthorID: post.AuthorID,
			AuthorName:   comment.AuthorName,
		},
	})
	return comment, nil
}

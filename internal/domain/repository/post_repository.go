package repository

import (
	"context"
	"errors"

	"github.com/loopline-app/loopline-api/internal/domain/entity"
)

var ErrPostNotFound = errors.New("post not found")

// PostRepository persists post aggregates. Mutations of embedded collections
// (comments, replies, likes) must be applied atomically per post: concurrent
// mutations of the same post may not lose each other's writes, and the
// at-most-one-like-per-user invariant must hold under races.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	AddComment(ctx context.Context, postID, commentID string, user entity.UserSnapshot, content string) error
	AddReply(ctx context.Context, postID, commentID string, user entity.UserSnapshot, content string) error
	AddLike(ctx context.Context, postID string, user entity.UserSnapshot) error
	RemoveLike(ctx context.Context, postID, userID string) error
	IncrementViews(ctx context.Context, postID string) (int64, error)
	ListAll(ctx context.Context) ([]entity.PostView, error)
	ListByAuthor(ctx context.Context, authorID string) ([]entity.PostView, error)
}

package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-api/internal/domain/entity"
	repo "github.com/loopline-app/loopline-api/internal/domain/repository"
)

// FeedService owns the social graph: posts and their embedded comments,
// replies and likes. Every mutation snapshots the acting user's display
// fields from the identity store at call time; the snapshot is frozen into
// the aggregate and never refreshed afterwards.
type FeedService struct {
	Posts  repo.PostRepository
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewFeedService(posts repo.PostRepository, users repo.UserRepository, logger *logrus.Logger) *FeedService {
	return &FeedService{Posts: posts, Users: users, Logger: logger}
}

type CreatePostInput struct {
	Content string
	Images  []entity.Image
}

// CreatePost creates a post with empty comments and likes. Images may be an
// empty list but the field itself is required at the API boundary.
func (s *FeedService) CreatePost(ctx context.Context, authorID string, in CreatePostInput) (*entity.Post, error) {
	if _, err := s.Users.GetByID(ctx, authorID); err != nil {
		return nil, ErrUserNotFound
	}
	p := entity.NewPost(authorID, in.Content, in.Images)
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"post_id": p.ID, "author_id": authorID}).Info("post created")
	}
	return p, nil
}

// AddComment appends a comment to the post, returning its generated id.
// Comment ids are unique within the parent post only.
func (s *FeedService) AddComment(ctx context.Context, postID, userID, content string) (string, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	commentID := uuid.NewString()
	if err := s.Posts.AddComment(ctx, postID, commentID, snap, content); err != nil {
		return "", err
	}
	return commentID, nil
}

// AddReply appends a reply to the addressed comment. Replies cannot be
// replied to; the tree stops at depth two.
func (s *FeedService) AddReply(ctx context.Context, postID, commentID, userID, content string) error {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return err
	}
	return s.Posts.AddReply(ctx, postID, commentID, snap, content)
}

// Like records at most one like per (post, user) pair.
func (s *FeedService) Like(ctx context.Context, postID, userID string) error {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return err
	}
	return s.Posts.AddLike(ctx, postID, snap)
}

func (s *FeedService) Unlike(ctx context.Context, postID, userID string) error {
	return s.Posts.RemoveLike(ctx, postID, userID)
}

// RecordView bumps the post's view counter. Counts requests, not unique
// viewers.
func (s *FeedService) RecordView(ctx context.Context, postID string) (int64, error) {
	return s.Posts.IncrementViews(ctx, postID)
}

// Feed returns every post with live author display fields, newest first.
func (s *FeedService) Feed(ctx context.Context) ([]entity.PostView, error) {
	return s.Posts.ListAll(ctx)
}

// MyPosts is the feed filtered to the caller's own posts.
func (s *FeedService) MyPosts(ctx context.Context, userID string) ([]entity.PostView, error) {
	return s.Posts.ListByAuthor(ctx, userID)
}

// Snapshot fetches the acting user's current display fields.
func (s *FeedService) Snapshot(ctx context.Context, userID string) (entity.UserSnapshot, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return entity.UserSnapshot{}, ErrUserNotFound
	}
	return u.Snapshot(), nil
}

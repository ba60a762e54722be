package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopline-app/loopline-api/internal/domain/entity"
	"github.com/loopline-app/loopline-api/internal/domain/repository"
)

func newFeedFixture(t *testing.T) (*FeedService, *memUserRepo, *memPostRepo) {
	t.Helper()
	users := newMemUserRepo()
	posts := newMemPostRepo(users)
	return NewFeedService(posts, users, nil), users, posts
}

func seedUser(t *testing.T, users *memUserRepo, first, last string) *entity.User {
	t.Helper()
	u := &entity.User{
		Email:         first + "@example.com",
		Password:      "hash",
		FirstName:     first,
		LastName:      last,
		ProfilePic:    first + ".png",
		EmailVerified: true,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestCreatePost(t *testing.T) {
	svc, users, _ := newFeedFixture(t)
	ctx := context.Background()
	author := seedUser(t, users, "Ada", "Lovelace")

	p, err := svc.CreatePost(ctx, author.ID, CreatePostInput{Content: "hello world"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, author.ID, p.AuthorID)
	assert.Empty(t, p.Comments)
	assert.Empty(t, p.Likes)
	assert.NotNil(t, p.Images)
}

func TestCreatePostUnknownAuthor(t *testing.T) {
	svc, _, _ := newFeedFixture(t)

	_, err := svc.CreatePost(context.Background(), "ghost", CreatePostInput{Content: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddCommentSnapshotsUserAtCallTime(t *testing.T) {
	svc, users, posts := newFeedFixture(t)
	ctx := context.Background()
	author := seedUser(t, users, "Ada", "Lovelace")
	commenter := seedUser(t, users, "Grace", "Hopper")

	p, err := svc.CreatePost(ctx, author.ID, CreatePostInput{Content: "post"})
	require.NoError(t, err)

	commentID, err := svc.AddComment(ctx, p.ID, commenter.ID, "nice post")
	require.NoError(t, err)
	assert.NotEmpty(t, commentID)

	// Rename the commenter after the fact
	commenter.FirstName = "Renamed"
	require.NoError(t, users.Update(ctx, commenter))

	stored, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, commentID, stored.Comments[0].ID)
	assert.Equal(t, "Grace", stored.Comments[0].User.FirstName)
	assert.Equal(t, "nice post", stored.Comments[0].Content)
}

func TestAddCommentUnknownPost(t *testing.T) {
	svc, users, _ := newFeedFixture(t)
	u := seedUser(t, users, "Ada", "Lovelace")

	_, err := svc.AddComment(context.Background(), "missing", u.ID, "hi")
	assert.ErrorIs(t, err, repository.ErrPostNotFound)
}

func TestAddReply(t *testing.T) {
	svc, users, posts := newFeedFixture(t)
	ctx := context.Background()
	author := seedUser(t, users, "Ada", "Lovelace")

	p, err := svc.CreatePost(ctx, author.ID, CreatePostInput{Content: "post"})
	require.NoError(t, err)
	commentID, err := svc.AddComment(ctx, p.ID, author.ID, "top level")
	require.NoError(t, err)

	require.NoError(t, svc.AddReply(ctx, p.ID, commentID, author.ID, "nested"))

	stored, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments[0].Replies, 1)
	assert.Equal(t, "nested", stored.Comments[0].Replies[0].Content)

	err = svc.AddReply(ctx, p.ID, "bogus", author.ID, "nested")
	assert.ErrorIs(t, err, entity.ErrCommentNotFound)
}

func TestLikeOncePerUser(t *testing.T) {
	svc, users, posts := newFeedFixture(t)
	ctx := context.Background()
	author := seedUser(t, users, "Ada", "Lovelace")
	fan := seedUser(t, users, "Grace", "Hopper")

	p, err := svc.CreatePost(ctx, author.ID, CreatePostInput{Content: "post"})
	require.NoError(t, err)

	require.NoError(t, svc.Like(ctx, p.ID, fan.ID))
	assert.ErrorIs(t, svc.Like(ctx, p.ID, fan.ID), entity.ErrAlreadyLiked)

	stored, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Likes, 1)
}

func TestUnlike(t *testing.T) {
	svc, users, _ := newFeedFixture(t)
	ctx := context.Background()
	author := seedUser(t, users, "Ada", "Lovelace")
	fan := seedUser(t, users, "Grace", "Hopper")

	p, err := svc.CreatePost(ctx, author.ID, CreatePostInput{Content: "post"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Unlike(ctx, p.ID, fan.ID), entity.ErrNotLiked)
	require.NoError(t, svc.Like(ctx, p.ID, fan.ID))
	require.NoError(t, svc.Unlike(ctx, p.ID, fan.ID))
	require.NoError(t, svc.Like(ctx, p.ID, fan.ID))
}

func TestRecordView(t *testing.T) {
	svc, users, _ := newFeedFixture(t)
	ctx := context.Background()
	author := seedUser(t, users, "Ada", "Lovelace")

	p, err := svc.CreatePost(ctx, author.ID, CreatePostInput{Content: "post"})
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		got, err := svc.RecordView(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = svc.RecordView(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrPostNotFound)
}

func TestFeedNewestFirstWithLiveAuthor(t *testing.T) {
	svc, users, posts := newFeedFixture(t)
	ctx := context.Background()
	author := seedUser(t, users, "Ada", "Lovelace")

	older, err := svc.CreatePost(ctx, author.ID, CreatePostInput{Content: "older"})
	require.NoError(t, err)
	// Force distinct timestamps regardless of clock granularity
	posts.posts[older.ID].CreatedAt = time.Now().Add(-time.Minute)

	newer, err := svc.CreatePost(ctx, author.ID, CreatePostInput{Content: "newer"})
	require.NoError(t, err)

	// Rename the author; the feed joins live display fields
	author.FirstName = "Augusta"
	require.NoError(t, users.Update(ctx, author))

	feed, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, newer.ID, feed[0].ID)
	assert.Equal(t, older.ID, feed[1].ID)
	assert.Equal(t, "Augusta", feed[0].Author.FirstName)
	assert.Equal(t, "Augusta", feed[1].Author.FirstName)
}

func TestMyPosts(t *testing.T) {
	svc, users, _ := newFeedFixture(t)
	ctx := context.Background()
	ada := seedUser(t, users, "Ada", "Lovelace")
	grace := seedUser(t, users, "Grace", "Hopper")

	_, err := svc.CreatePost(ctx, ada.ID, CreatePostInput{Content: "mine"})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, grace.ID, CreatePostInput{Content: "theirs"})
	require.NoError(t, err)

	mine, err := svc.MyPosts(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0].Content)
}

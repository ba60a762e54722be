package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(id string) UserSnapshot {
	return UserSnapshot{ID: id, FirstName: "First" + id, LastName: "Last" + id, ProfilePic: "pic-" + id}
}

func TestNewPostHasEmptyCollections(t *testing.T) {
	p := NewPost("author-1", "hello", nil)

	assert.Equal(t, "author-1", p.AuthorID)
	assert.Equal(t, "hello", p.Content)
	assert.NotNil(t, p.Images)
	assert.NotNil(t, p.Comments)
	assert.NotNil(t, p.Likes)
	assert.Empty(t, p.Comments)
	assert.Empty(t, p.Likes)
	assert.Zero(t, p.ViewCount)
	assert.False(t, p.CreatedAt.IsZero())

	// nil images must serialize as [] not null
	b, err := json.Marshal(p.Images)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestAddCommentKeepsArrivalOrder(t *testing.T) {
	p := NewPost("author-1", "post", nil)

	first := p.AddComment("c1", snap("u1"), "first")
	second := p.AddComment("c2", snap("u2"), "second")

	require.Len(t, p.Comments, 2)
	assert.Equal(t, first.ID, p.Comments[0].ID)
	assert.Equal(t, second.ID, p.Comments[1].ID)
	assert.Equal(t, "first", p.Comments[0].Content)
	assert.Equal(t, "second", p.Comments[1].Content)
	assert.NotNil(t, p.Comments[0].Replies)
	assert.Empty(t, p.Comments[0].Replies)
}

func TestAddCommentFreezesSnapshot(t *testing.T) {
	p := NewPost("author-1", "post", nil)
	user := snap("u1")
	p.AddComment("c1", user, "hi")

	// Mutating the caller's copy afterwards must not affect the embedded one
	user.FirstName = "Renamed"
	assert.Equal(t, "Firstu1", p.Comments[0].User.FirstName)
}

func TestAddReply(t *testing.T) {
	p := NewPost("author-1", "post", nil)
	p.AddComment("c1", snap("u1"), "parent")

	require.NoError(t, p.AddReply("c1", snap("u2"), "child"))
	require.Len(t, p.Comments[0].Replies, 1)
	assert.Equal(t, "child", p.Comments[0].Replies[0].Content)
	assert.Equal(t, "u2", p.Comments[0].Replies[0].User.ID)

	err := p.AddReply("missing", snap("u2"), "child")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestAddReplyOrderWithinComment(t *testing.T) {
	p := NewPost("author-1", "post", nil)
	p.AddComment("c1", snap("u1"), "parent")

	require.NoError(t, p.AddReply("c1", snap("u2"), "one"))
	require.NoError(t, p.AddReply("c1", snap("u3"), "two"))

	require.Len(t, p.Comments[0].Replies, 2)
	assert.Equal(t, "one", p.Comments[0].Replies[0].Content)
	assert.Equal(t, "two", p.Comments[0].Replies[1].Content)
}

func TestAddLikeIsIdempotentPerUser(t *testing.T) {
	p := NewPost("author-1", "post", nil)

	require.NoError(t, p.AddLike(snap("u1")))
	require.Len(t, p.Likes, 1)

	err := p.AddLike(snap("u1"))
	assert.ErrorIs(t, err, ErrAlreadyLiked)
	assert.Len(t, p.Likes, 1)

	require.NoError(t, p.AddLike(snap("u2")))
	assert.Len(t, p.Likes, 2)
}

func TestRemoveLike(t *testing.T) {
	p := NewPost("author-1", "post", nil)
	require.NoError(t, p.AddLike(snap("u1")))
	require.NoError(t, p.AddLike(snap("u2")))

	require.NoError(t, p.RemoveLike("u1"))
	require.Len(t, p.Likes, 1)
	assert.Equal(t, "u2", p.Likes[0].User.ID)

	err := p.RemoveLike("u1")
	assert.ErrorIs(t, err, ErrNotLiked)
}

func TestLikeUnlikeLikeCycle(t *testing.T) {
	p := NewPost("author-1", "post", nil)

	require.NoError(t, p.AddLike(snap("u1")))
	require.NoError(t, p.RemoveLike("u1"))
	require.NoError(t, p.AddLike(snap("u1")))
	assert.Len(t, p.Likes, 1)
}

func TestFindComment(t *testing.T) {
	p := NewPost("author-1", "post", nil)
	p.AddComment("c1", snap("u1"), "hello")

	c, ok := p.FindComment("c1")
	require.True(t, ok)
	assert.Equal(t, "hello", c.Content)

	_, ok = p.FindComment("nope")
	assert.False(t, ok)
}

func TestUserSnapshotImmutableAfterRename(t *testing.T) {
	u := &User{ID: "u1", FirstName: "Ada", LastName: "Lovelace", ProfilePic: "old.png"}
	p := NewPost("author-1", "post", nil)
	p.AddComment("c1", u.Snapshot(), "before rename")
	require.NoError(t, p.AddLike(u.Snapshot()))

	u.FirstName = "Augusta"
	u.ProfilePic = "new.png"

	assert.Equal(t, "Ada", p.Comments[0].User.FirstName)
	assert.Equal(t, "old.png", p.Comments[0].User.ProfilePic)
	assert.Equal(t, "Ada", p.Likes[0].User.FirstName)
}

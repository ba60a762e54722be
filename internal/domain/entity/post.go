package entity

import (
	"errors"
	"time"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrAlreadyLiked    = errors.New("post already liked")
	ErrNotLiked        = errors.New("post not liked")
)

// UserSnapshot is a denormalized copy of a user's display fields, captured
// at the moment of the action that embeds it.
type UserSnapshot struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ProfilePic string `json:"profile_pic"`
}

// Image is a stored-object reference attached to a post.
type Image struct {
	URL string `json:"url"`
}

// Reply is embedded in exactly one Comment. Replies cannot themselves hold
// replies; the comment tree has a fixed depth of two.
type Reply struct {
	User      UserSnapshot `json:"user"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
}

// Comment is embedded in exactly one Post. ID is unique within its parent
// post only.
type Comment struct {
	ID        string       `json:"id"`
	User      UserSnapshot `json:"user"`
	Content   string       `json:"content"`
	Replies   []Reply      `json:"replies"`
	CreatedAt time.Time    `json:"created_at"`
}

// Like is embedded in exactly one Post; at most one per (post, user) pair.
type Like struct {
	User UserSnapshot `json:"user"`
}

// Post is the aggregate root of the social graph. Comments, replies and
// likes live inside the post document and are persisted with it as a single
// unit. Embedded snapshots are immutable; only the top-level author fields
// are live-joined at read time.
type Post struct {
	ID        string
	AuthorID  string
	Content   string
	Images    []Image
	Comments  []Comment
	Likes     []Like
	ViewCount int64
	CreatedAt time.Time
}

// NewPost builds a post with empty embedded collections and a zero view
// count. Images may be empty but never nil so it serializes as [].
func NewPost(authorID, content string, images []Image) *Post {
	if images == nil {
		images = []Image{}
	}
	return &Post{
		AuthorID:  authorID,
		Content:   content,
		Images:    images,
		Comments:  []Comment{},
		Likes:     []Like{},
		CreatedAt: time.Now().UTC(),
	}
}

// AddComment appends a comment with the given id and snapshot. Comments keep
// arrival order; no reordering happens later.
func (p *Post) AddComment(id string, user UserSnapshot, content string) Comment {
	c := Comment{
		ID:        id,
		User:      user,
		Content:   content,
		Replies:   []Reply{},
		CreatedAt: time.Now().UTC(),
	}
	p.Comments = append(p.Comments, c)
	return c
}

// AddReply appends a reply to the addressed comment. Returns
// ErrCommentNotFound when commentID does not exist within this post.
func (p *Post) AddReply(commentID string, user UserSnapshot, content string) error {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments[i].Replies = append(p.Comments[i].Replies, Reply{
				User:      user,
				Content:   content,
				CreatedAt: time.Now().UTC(),
			})
			return nil
		}
	}
	return ErrCommentNotFound
}

// AddLike appends a like unless the user already has one. The linear scan is
// fine for the small embedded arrays we expect.
func (p *Post) AddLike(user UserSnapshot) error {
	if p.likedBy(user.ID) >= 0 {
		return ErrAlreadyLiked
	}
	p.Likes = append(p.Likes, Like{User: user})
	return nil
}

// RemoveLike removes the user's like, or reports ErrNotLiked.
func (p *Post) RemoveLike(userID string) error {
	i := p.likedBy(userID)
	if i < 0 {
		return ErrNotLiked
	}
	p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
	return nil
}

func (p *Post) likedBy(userID string) int {
	for i := range p.Likes {
		if p.Likes[i].User.ID == userID {
			return i
		}
	}
	return -1
}

// FindComment returns the comment with the given id, if present.
func (p *Post) FindComment(commentID string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

package entity

import "time"

// PostView is the feed projection of a post: the stored aggregate joined
// with the author's current display fields. Embedded comment/reply/like
// snapshots are returned as stored; only Author is live.
type PostView struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Images    []Image   `json:"images"`
	Comments  []Comment `json:"comments"`
	Likes     []Like    `json:"likes"`
	ViewCount int64     `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`

	Author UserSnapshot `json:"author"`
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loopline-app/loopline-api/internal/domain/entity"
	"github.com/loopline-app/loopline-api/internal/domain/repository"
)

// PostRepository stores each post as a single row with its images, comments
// and likes as JSONB arrays, so the aggregate is read and written as one
// unit. Embedded-collection mutations lock the row with SELECT ... FOR
// UPDATE, which serializes concurrent writers per post and keeps the
// at-most-one-like-per-user check race-free.
type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (author_id, content, images, comments, likes)
		VALUES ($1, $2, $3, '[]', '[]')
		RETURNING id, created_at
	`, p.AuthorID, p.Content, images)
	return row.Scan(&p.ID, &p.CreatedAt)
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, author_id, content, images, comments, likes, view_count, created_at
		FROM posts
		WHERE id = $1
	`, id)
	return scanPost(row)
}

// AddComment appends a comment with the given id to the post's comment
// array, preserving arrival order.
func (r *PostRepository) AddComment(ctx context.Context, postID, commentID string, user entity.UserSnapshot, content string) error {
	return r.mutate(ctx, postID, func(p *entity.Post) error {
		p.AddComment(commentID, user, content)
		return nil
	})
}

func (r *PostRepository) AddReply(ctx context.Context, postID, commentID string, user entity.UserSnapshot, content string) error {
	return r.mutate(ctx, postID, func(p *entity.Post) error {
		return p.AddReply(commentID, user, content)
	})
}

func (r *PostRepository) AddLike(ctx context.Context, postID string, user entity.UserSnapshot) error {
	return r.mutate(ctx, postID, func(p *entity.Post) error {
		return p.AddLike(user)
	})
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	return r.mutate(ctx, postID, func(p *entity.Post) error {
		return p.RemoveLike(userID)
	})
}

// IncrementViews bumps the view counter atomically and returns the new value.
func (r *PostRepository) IncrementViews(ctx context.Context, postID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		UPDATE posts SET view_count = view_count + 1 WHERE id = $1
		RETURNING view_count
	`, postID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrPostNotFound
	}
	return n, err
}

const feedQuery = `
	SELECT p.id, p.content, p.images, p.comments, p.likes, p.view_count, p.created_at,
	       u.id, u.first_name, u.last_name, u.profile_pic
	FROM posts p
	JOIN users u ON u.id = p.author_id`

// ListAll returns every post joined with the author's current display
// fields, newest first. No pagination; the feed is unbounded.
func (r *PostRepository) ListAll(ctx context.Context) ([]entity.PostView, error) {
	rows, err := r.pool.Query(ctx, feedQuery+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectViews(rows)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]entity.PostView, error) {
	rows, err := r.pool.Query(ctx, feedQuery+` WHERE p.author_id = $1 ORDER BY p.created_at DESC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectViews(rows)
}

// mutate runs fn against the locked aggregate and writes the embedded
// collections back in the same transaction. Domain errors from fn roll the
// transaction back without writing.
func (r *PostRepository) mutate(ctx context.Context, postID string, fn func(*entity.Post) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		SELECT id, author_id, content, images, comments, likes, view_count, created_at
		FROM posts
		WHERE id = $1
		FOR UPDATE
	`, postID)
	p, err := scanPost(row)
	if err != nil {
		return err
	}

	if err := fn(p); err != nil {
		return err
	}

	comments, err := json.Marshal(p.Comments)
	if err != nil {
		return err
	}
	likes, err := json.Marshal(p.Likes)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE posts SET comments = $1, likes = $2 WHERE id = $3
	`, comments, likes, postID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	var images, comments, likes []byte
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Content, &images, &comments, &likes,
		&p.ViewCount, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrPostNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(comments, &p.Comments); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(likes, &p.Likes); err != nil {
		return nil, err
	}
	return p, nil
}

func collectViews(rows pgx.Rows) ([]entity.PostView, error) {
	out := []entity.PostView{}
	for rows.Next() {
		var v entity.PostView
		var images, comments, likes []byte
		if err := rows.Scan(&v.ID, &v.Content, &images, &comments, &likes,
			&v.ViewCount, &v.CreatedAt,
			&v.Author.ID, &v.Author.FirstName, &v.Author.LastName, &v.Author.ProfilePic); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(images, &v.Images); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(comments, &v.Comments); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(likes, &v.Likes); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

var _ repository.PostRepository = (*PostRepository)(nil)

package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loopline-app/loopline-api/internal/domain/entity"
	"github.com/loopline-app/loopline-api/internal/domain/repository"
)

// memUserRepo is an in-memory repository.UserRepository for service tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User // by id
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.users {
		if ex.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) GetByResetToken(_ context.Context, token string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != "" && u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *u
	cp.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) SetVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.EmailVerified = true
	u.VerificationOTP = ""
	return nil
}

func (r *memUserRepo) SetVerificationOTP(_ context.Context, id, otp string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.VerificationOTP = otp
	return nil
}

func (r *memUserRepo) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ResetToken = token
	u.ResetExpires = expires
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Password = passwordHash
	u.ResetToken = ""
	u.ResetExpires = time.Time{}
	return nil
}

// memPostRepo is an in-memory repository.PostRepository. It reuses the entity
// mutation methods so the invariants under test match production behavior,
// and joins author fields from the user repo at read time.
type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]*entity.Post
	users *memUserRepo
}

func newMemPostRepo(users *memUserRepo) *memPostRepo {
	return &memPostRepo{posts: map[string]*entity.Post{}, users: users}
}

func (r *memPostRepo) Create(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPostRepo) mutate(postID string, fn func(*entity.Post) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return repository.ErrPostNotFound
	}
	return fn(p)
}

func (r *memPostRepo) AddComment(_ context.Context, postID, commentID string, user entity.UserSnapshot, content string) error {
	return r.mutate(postID, func(p *entity.Post) error {
		p.AddComment(commentID, user, content)
		return nil
	})
}

func (r *memPostRepo) AddReply(_ context.Context, postID, commentID string, user entity.UserSnapshot, content string) error {
	return r.mutate(postID, func(p *entity.Post) error {
		return p.AddReply(commentID, user, content)
	})
}

func (r *memPostRepo) AddLike(_ context.Context, postID string, user entity.UserSnapshot) error {
	return r.mutate(postID, func(p *entity.Post) error {
		return p.AddLike(user)
	})
}

func (r *memPostRepo) RemoveLike(_ context.Context, postID, userID string) error {
	return r.mutate(postID, func(p *entity.Post) error {
		return p.RemoveLike(userID)
	})
}

func (r *memPostRepo) IncrementViews(_ context.Context, postID string) (int64, error) {
	var count int64
	err := r.mutate(postID, func(p *entity.Post) error {
		p.ViewCount++
		count = p.ViewCount
		return nil
	})
	return count, err
}

func (r *memPostRepo) ListAll(ctx context.Context) ([]entity.PostView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.PostView, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, r.view(ctx, p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memPostRepo) ListByAuthor(ctx context.Context, authorID string) ([]entity.PostView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.PostView{}
	for _, p := range r.posts {
		if p.AuthorID == authorID {
			out = append(out, r.view(ctx, p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memPostRepo) view(ctx context.Context, p *entity.Post) entity.PostView {
	author := entity.UserSnapshot{ID: p.AuthorID}
	if r.users != nil {
		if u, err := r.users.GetByID(ctx, p.AuthorID); err == nil {
			author = u.Snapshot()
		}
	}
	return entity.PostView{
		ID:        p.ID,
		Content:   p.Content,
		Images:    p.Images,
		Comments:  p.Comments,
		Likes:     p.Likes,
		ViewCount: p.ViewCount,
		CreatedAt: p.CreatedAt,
		Author:    author,
	}
}

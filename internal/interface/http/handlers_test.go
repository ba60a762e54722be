package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/loopline-app/loopline-api/internal/domain/entity"
	"github.com/loopline-app/loopline-api/internal/domain/repository"
	"github.com/loopline-app/loopline-api/internal/interface/middleware"
	"github.com/loopline-app/loopline-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// stubUserRepo backs handler tests with a fixed set of users.
type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newStubUserRepo(users ...*entity.User) *stubUserRepo {
	r := &stubUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.users {
		if ex.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
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

func (r *stubUserRepo) GetByResetToken(_ context.Context, token string) (*entity.User, error) {
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

func (r *stubUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) SetVerified(_ context.Context, id string) error {
	return r.apply(id, func(u *entity.User) {
		u.EmailVerified = true
		u.VerificationOTP = ""
	})
}

func (r *stubUserRepo) SetVerificationOTP(_ context.Context, id, otp string) error {
	return r.apply(id, func(u *entity.User) { u.VerificationOTP = otp })
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	return r.apply(id, func(u *entity.User) {
		u.ResetToken = token
		u.ResetExpires = expires
	})
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.apply(id, func(u *entity.User) {
		u.Password = passwordHash
		u.ResetToken = ""
		u.ResetExpires = time.Time{}
	})
}

func (r *stubUserRepo) apply(id string, fn func(*entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(u)
	return nil
}

// stubPostRepo keeps post aggregates in memory and applies mutations through
// the entity methods, mirroring the transactional repository.
type stubPostRepo struct {
	mu    sync.Mutex
	posts map[string]*entity.Post
	users *stubUserRepo
}

func newStubPostRepo(users *stubUserRepo) *stubPostRepo {
	return &stubPostRepo{posts: map[string]*entity.Post{}, users: users}
}

func (r *stubPostRepo) Create(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *stubPostRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrPostNotFound
}

func (r *stubPostRepo) mutate(postID string, fn func(*entity.Post) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return repository.ErrPostNotFound
	}
	return fn(p)
}

func (r *stubPostRepo) AddComment(_ context.Context, postID, commentID string, user entity.UserSnapshot, content string) error {
	return r.mutate(postID, func(p *entity.Post) error {
		p.AddComment(commentID, user, content)
		return nil
	})
}

func (r *stubPostRepo) AddReply(_ context.Context, postID, commentID string, user entity.UserSnapshot, content string) error {
	return r.mutate(postID, func(p *entity.Post) error { return p.AddReply(commentID, user, content) })
}

func (r *stubPostRepo) AddLike(_ context.Context, postID string, user entity.UserSnapshot) error {
	return r.mutate(postID, func(p *entity.Post) error { return p.AddLike(user) })
}

func (r *stubPostRepo) RemoveLike(_ context.Context, postID, userID string) error {
	return r.mutate(postID, func(p *entity.Post) error { return p.RemoveLike(userID) })
}

func (r *stubPostRepo) IncrementViews(_ context.Context, postID string) (int64, error) {
	var n int64
	err := r.mutate(postID, func(p *entity.Post) error {
		p.ViewCount++
		n = p.ViewCount
		return nil
	})
	return n, err
}

func (r *stubPostRepo) ListAll(ctx context.Context) ([]entity.PostView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.PostView, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, r.view(ctx, p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubPostRepo) ListByAuthor(ctx context.Context, authorID string) ([]entity.PostView, error) {
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

func (r *stubPostRepo) view(ctx context.Context, p *entity.Post) entity.PostView {
	author := entity.UserSnapshot{ID: p.AuthorID}
	if u, err := r.users.GetByID(ctx, p.AuthorID); err == nil {
		author = u.Snapshot()
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

// forceUser stands in for the session middleware in handler tests.
func forceUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserIDKey, userID)
		c.Next()
	}
}

var (
	_ repository.UserRepository = (*stubUserRepo)(nil)
	_ repository.PostRepository = (*stubPostRepo)(nil)
)

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/loopline-app/loopline-api/internal/domain/entity"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	SetVerified(ctx context.Context, id string) error
	SetVerificationOTP(ctx context.Context, id, otp string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-api/config"
	"github.com/loopline-app/loopline-api/internal/domain/entity"
	repo "github.com/loopline-app/loopline-api/internal/domain/repository"
	"github.com/loopline-app/loopline-api/pkg/helpers"
	"github.com/loopline-app/loopline-api/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrInvalidOTP         = errors.New("invalid verification code")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// UserService implements the identity side of the API: registration with
// email verification, login with access/refresh tokens, password reset and
// profile editing. It also feeds the Elasticsearch user index.
type UserService struct {
	Repo         repo.UserRepository
	JWT          *helpers.JWTManager
	Redis        *redis.Client
	Logger       *logrus.Logger
	Pub          *helpers.RabbitPublisher
	Cfg          *config.Config
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(r repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, cfg *config.Config, es *elasticsearch.Client, esUsersIndex string) *UserService {
	return &UserService{
		Repo:         r,
		JWT:          jwt,
		Redis:        rdb,
		Logger:       logger,
		Pub:          pub,
		Cfg:          cfg,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type RegisterInput struct {
	Email             string
	Password          string
	FirstName         string
	LastName          string
	About             string
	ProfilePic        string
	ProfileBackground string
}

// Register creates an unverified account and enqueues the verification
// email carrying a 6-digit OTP.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	otp, err := helpers.GenOTPCode()
	if err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:             strings.ToLower(in.Email),
		Password:          hash,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		About:             in.About,
		ProfilePic:        in.ProfilePic,
		ProfileBackground: in.ProfileBackground,
		VerificationOTP:   otp,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.enqueueVerifyEmail(ctx, u, otp)
	_ = s.indexUser(ctx, u)
	return u, nil
}

// Authenticate validates email/password. Unverified accounts cannot log in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":     u.ID,
			"email":       u.Email,
			"first_name":  u.FirstName,
			"last_name":   u.LastName,
			"profile_pic": u.ProfilePic,
			"sid":         sid,
			"logged_in":   true,
			"created_at":  nowRFC3339(),
		}
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

type LoginResponse struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ProfilePic string `json:"profile_pic"`
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	resp := &LoginResponse{UserID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, ProfilePic: u.ProfilePic}
	return resp, pair, nil
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	// Current session id must match the token's sid
	if s.Redis != nil {
		key := sessionKey(u.ID)
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, u.ID, nil
}

// VerifyEmail matches the OTP sent at signup and flips the verified flag.
func (s *UserService) VerifyEmail(ctx context.Context, email, otp string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if u.EmailVerified {
		return ErrAlreadyVerified
	}
	if u.VerificationOTP == "" || u.VerificationOTP != otp {
		return ErrInvalidOTP
	}
	return s.Repo.SetVerified(ctx, u.ID)
}

// ResendVerification re-issues the OTP email, generating a fresh code if
// none is pending.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if u.EmailVerified {
		return ErrAlreadyVerified
	}
	otp := u.VerificationOTP
	if otp == "" {
		otp, err = helpers.GenOTPCode()
		if err != nil {
			return err
		}
		if err := s.Repo.SetVerificationOTP(ctx, u.ID, otp); err != nil {
			return err
		}
	}
	s.enqueueVerifyEmail(ctx, u, otp)
	return nil
}

// ForgotPassword stores a one-hour reset token on the user row and enqueues
// the reset email.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	token := uuid.NewString()
	expires := time.Now().Add(s.resetTTL())
	if err := s.Repo.SetResetToken(ctx, u.ID, token, expires); err != nil {
		return err
	}

	link := s.Cfg.ResetPasswordURL + "?token=" + token
	s.enqueueEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateResetPassword,
		Data: map[string]any{
			"Name":     u.FirstName,
			"ResetURL": link,
			"Expires":  expires.UTC().Format(time.RFC3339),
		},
	})
	return nil
}

// ResetPassword consumes an unexpired reset token and replaces the hash.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	u, err := s.Repo.GetByResetToken(ctx, token)
	if err != nil || u == nil {
		return ErrInvalidResetToken
	}
	if u.ResetExpires.IsZero() || time.Now().After(u.ResetExpires) {
		return ErrInvalidResetToken
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, u.ID, hash)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type UpdateProfileInput struct {
	FirstName         string
	LastName          string
	About             string
	ProfilePic        string
	ProfileBackground string
}

// UpdateProfile edits display fields. Posts' embedded snapshots keep the old
// values; only the live-joined post author fields pick the change up.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if in.FirstName != "" {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}
	if in.About != "" {
		u.About = in.About
	}
	if in.ProfilePic != "" {
		u.ProfilePic = in.ProfilePic
	}
	if in.ProfileBackground != "" {
		u.ProfileBackground = in.ProfileBackground
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"first_name":  u.FirstName,
			"last_name":   u.LastName,
			"profile_pic": u.ProfilePic,
			"updated_at":  nowRFC3339(),
		})
		if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	_ = s.indexUser(ctx, u)
	return u, nil
}

// Snapshot returns the caller's display fields for embedding into posts,
// comments, replies and likes at mutation time.
func (s *UserService) Snapshot(ctx context.Context, userID string) (entity.UserSnapshot, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return entity.UserSnapshot{}, ErrUserNotFound
	}
	return u.Snapshot(), nil
}

func (s *UserService) resetTTL() time.Duration {
	if s.Cfg != nil && s.Cfg.ResetTokenTTL > 0 {
		return s.Cfg.ResetTokenTTL
	}
	return time.Hour
}

func (s *UserService) enqueueVerifyEmail(ctx context.Context, u *entity.User, otp string) {
	s.enqueueEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateVerifyEmail,
		Data: map[string]any{
			"Name": u.FirstName,
			"Code": otp,
		},
	})
}

func (s *UserService) enqueueEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Pub == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", job.To).Warn("failed to enqueue email job")
	}
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"profile_pic": u.ProfilePic,
		"created_at":  u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// SearchUsers performs a simple multi_match search on email and names.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

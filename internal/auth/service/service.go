// Package service implements registration, login, and identity resolution.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/willian-mayer/listify/internal/auth/models"
	"github.com/willian-mayer/listify/internal/auth/password"
	"github.com/willian-mayer/listify/internal/platform/metrics"
	"github.com/willian-mayer/listify/pkg/email"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
	"github.com/willian-mayer/listify/pkg/requestcontext"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

// UserStore persists accounts. Implementations return sentinel errors;
// translation to domain errors happens here.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// TokenIssuer signs access tokens for a subject claim.
type TokenIssuer interface {
	Issue(subject string, expiresIn time.Duration) (string, error)
}

// Service orchestrates the account lifecycle.
type Service struct {
	users    UserStore
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service. tokenTTL is the lifetime of issued access tokens.
func New(users UserStore, tokens TokenIssuer, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail lowercases and trims an email address. Applied on every
// write and lookup so differently-cased registrations collapse into one
// account.
func NormalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Register creates an account. A blank display name is derived from the
// email's local part. Duplicate emails surface as CodeConflict.
func (s *Service) Register(ctx context.Context, name, emailAddr, plaintext string) (*models.User, error) {
	emailAddr = NormalizeEmail(emailAddr)
	name = strings.TrimSpace(name)
	if name == "" {
		name = email.DeriveNameFromEmail(emailAddr)
	}

	hashed, err := password.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		Name:           name,
		Email:          emailAddr,
		HashedPassword: hashed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}

// errBadCredentials is the single failure shape for login. Both an unknown
// email and a wrong password produce it, so login cannot enumerate accounts.
var errBadCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, emailAddr, plaintext string) (string, *models.User, error) {
	emailAddr = NormalizeEmail(emailAddr)

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordLoginFailure(ctx)
			return "", nil, errBadCredentials
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if !password.Verify(plaintext, user.HashedPassword) {
		s.recordLoginFailure(ctx)
		return "", nil, errBadCredentials
	}

	token, err := s.tokens.Issue(user.Email, s.tokenTTL)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return token, user, nil
}

// ResolveIdentity maps a verified token subject to a user ID. An unknown
// subject is indistinguishable from an invalid token by design.
func (s *Service) ResolveIdentity(ctx context.Context, emailAddr string) (int64, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired credentials")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve identity")
	}
	return user.ID, nil
}

// GetUser returns the account for an authenticated user ID.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) recordLoginFailure(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.LoginFailures.Inc()
	}
	s.logger.WarnContext(ctx, "login failed",
		"request_id", requestcontext.RequestID(ctx),
	)
}

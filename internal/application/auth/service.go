package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/foodshare/foodshare-api/internal/domain"
	"github.com/foodshare/foodshare-api/internal/pkg/id"
)

// Store is the persistence surface the service needs from the users table.
type Store interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenSigner issues the bearer token returned on register and login.
type TokenSigner interface {
	Sign(userID string) (string, error)
}

// Mailer sends the welcome email after a successful registration.
type Mailer interface {
	SendWelcome(u *domain.User) error
}

// Session is the response body of register and login.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*Session, error)
	Login(ctx context.Context, req domain.LoginRequest) (*Session, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	store  Store
	signer TokenSigner
	mailer Mailer
}

func NewService(store Store, signer TokenSigner, mailer Mailer) Service {
	return &service{store: store, signer: signer, mailer: mailer}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Put(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.signer.Sign(u.UserID)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	if s.mailer != nil {
		// Welcome mail is best effort; registration already succeeded.
		go func(u domain.User) {
			if err := s.mailer.SendWelcome(&u); err != nil {
				slog.Warn("welcome email failed", "user_id", u.UserID, "err", err)
			}
		}(*u)
	}

	return &Session{Token: token, User: u}, nil
}

// Login verifies credentials. Unknown email and wrong password report the
// same error so the response does not reveal which one was wrong.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrBadRequest)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrBadRequest)
	}
	token, err := s.signer.Sign(u.UserID)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &Session{Token: token, User: u}, nil
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.Get(ctx, userID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tickevo.app/backend/common/id"
	"tickevo.app/backend/common/token"
	"tickevo.app/backend/internal/model"
	"tickevo.app/backend/internal/store"
)

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type AuthService interface {
	Signup(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Authenticate resolves a raw session token to a user id.
	Authenticate(ctx context.Context, rawToken string) (int64, error)
	Profile(ctx context.Context, userID int64) (*model.User, error)
}

type authService struct {
	deps     Deps
	issuer   *token.Issuer
	hashCost int
}

// NewAuthService builds the identity gateway. hashCost 0 selects bcrypt.DefaultCost.
func NewAuthService(deps Deps, issuer *token.Issuer, hashCost int) AuthService {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &authService{
		deps:     deps.withDefaults(),
		issuer:   issuer,
		hashCost: hashCost,
	}
}

func (s *authService) Signup(ctx context.Context, username, password string) (*model.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", ErrInvalidInput)
		}
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	user := &model.User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: string(hash),
		Badges:       []string{},
		CreatedAt:    s.deps.Now(),
	}

	err = s.deps.TxRunner.WithTx(ctx, func(stores StoreProvider) error {
		if _, err := stores.Users().GetByUsername(ctx, username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return stores.Users().Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	slog.InfoContext(ctx, "user signed up", "user_id", user.ID, "username", username)
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	user, err := s.deps.Stores.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.InfoContext(ctx, "login rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	raw, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &LoginResult{Token: raw, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) Authenticate(ctx context.Context, rawToken string) (int64, error) {
	if rawToken == "" {
		return 0, ErrMissingToken
	}
	userID, err := s.issuer.Verify(rawToken)
	if err != nil {
		slog.DebugContext(ctx, "token rejected", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return userID, nil
}

func (s *authService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	user, err := s.deps.Stores.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

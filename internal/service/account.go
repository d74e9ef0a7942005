package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hearthealth/hearthealth/internal/auth"
	"github.com/hearthealth/hearthealth/internal/metrics"
	"github.com/hearthealth/hearthealth/internal/model"
	"github.com/hearthealth/hearthealth/internal/repository"
)

// Account errors.
var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUsernameTooLong    = errors.New("username is too long")
	ErrPasswordTooLong    = errors.New("password is too long")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// maxPasswordLength bounds the work a single login can cause.
const maxPasswordLength = 1024

// Credentials is a username/password pair.
type Credentials struct {
	Username string
	Password string
}

var (
	usernameRule = fmt.Sprintf("required,max=%d", model.MaxUsernameLength)
	passwordRule = fmt.Sprintf("required,max=%d", maxPasswordLength)
)

// AccountService handles registration, login and account removal.
type AccountService struct {
	users    UserStore
	tokens   *auth.Tokens
	validate *validator.Validate
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore, tokens *auth.Tokens, recorder metrics.Recorder, logger *slog.Logger) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		metrics:  recorder,
		logger:   logger.With("component", "account_service"),
	}
}

// Register creates a user with a hashed password.
func (s *AccountService) Register(ctx context.Context, creds Credentials) (*model.User, error) {
	if err := s.validateCredentials(creds); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           newID(),
		Username:     creds.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.metrics.IncRegistration()
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *AccountService) Login(ctx context.Context, creds Credentials) (string, error) {
	if creds.Username == "" || creds.Password == "" {
		s.metrics.IncLogin(metrics.OutcomeFailure)
		return "", ErrMissingCredentials
	}
	if len(creds.Password) > maxPasswordLength {
		s.metrics.IncLogin(metrics.OutcomeFailure)
		return "", ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.VerifyDummy(creds.Password)
			s.metrics.IncLogin(metrics.OutcomeFailure)
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	ok, err := auth.VerifyPassword(creds.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash unreadable", "user_id", user.ID, "error", err)
		s.metrics.IncLogin(metrics.OutcomeFailure)
		return "", ErrInvalidCredentials
	}
	if !ok {
		s.metrics.IncLogin(metrics.OutcomeFailure)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	s.metrics.IncLogin(metrics.OutcomeSuccess)
	return token, nil
}

// Delete removes a user and, by cascade, their prediction history.
func (s *AccountService) Delete(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

func (s *AccountService) validateCredentials(creds Credentials) error {
	usernameErr := s.validate.Var(creds.Username, usernameRule)
	passwordErr := s.validate.Var(creds.Password, passwordRule)

	switch {
	case failedTag(usernameErr, "required"), failedTag(passwordErr, "required"):
		return ErrMissingCredentials
	case usernameErr != nil:
		return ErrUsernameTooLong
	case passwordErr != nil:
		return ErrPasswordTooLong
	}
	return nil
}

func failedTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

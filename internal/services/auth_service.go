package services

import (
	"context"
	"errors"
	"strings"

	"github.com/emersion/go-message/mail"
	"gorm.io/gorm"

	"github.com/yukikurage/collab-api/internal/auth"
	"github.com/yukikurage/collab-api/internal/constants"
	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/repository"
)

var (
	ErrEmailTaken           = apierrors.New(apierrors.ErrConflict, "User already exists")
	ErrInvalidCredentials   = apierrors.New(apierrors.ErrAuthentication, "Invalid email or password")
	ErrWrongPassword        = apierrors.New(apierrors.ErrAuthentication, "Current password is incorrect")
	ErrPasswordTooShort     = apierrors.Validation("password must be at least 6 characters")
	ErrNameRequired         = apierrors.Validation("name is required")
	ErrInvalidEmail         = apierrors.Validation("a valid email is required")
	ErrUserNotFound         = apierrors.New(apierrors.ErrNotFound, "User not found")
	ErrFailedToHashPassword = apierrors.New(apierrors.ErrStorage, "failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a user and issues a token for it. The first user of an
// empty store becomes admin; everyone else starts as team_member.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", ErrNameRequired
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apierrors.Storage("failed to check email", err)
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, "", apierrors.Storage("failed to count users", err)
	}
	role := models.RoleTeamMember
	if total == 0 {
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", apierrors.Storage("failed to create user", err)
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, "", apierrors.Storage("failed to issue token", err)
	}
	return user, token, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user with a fresh token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", apierrors.Storage("failed to find user", err)
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, "", apierrors.Storage("failed to issue token", err)
	}
	return user, token, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apierrors.Storage("failed to find user", err)
	}
	return user, nil
}

// ListUsers returns every user for member pickers.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, apierrors.Storage("failed to list users", err)
	}
	return users, nil
}

// ChangePassword replaces the user's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return ErrWrongPassword
	}
	if len(next) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return ErrFailedToHashPassword
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return apierrors.Storage("failed to update password", err)
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

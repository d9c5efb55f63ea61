package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cppla/wellbeing/models"
	"github.com/cppla/wellbeing/repository"
	"github.com/cppla/wellbeing/utils"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AuthService owns local accounts. Tokens are issued by the caller.
type AuthService struct {
	users      repository.UserRepository
	demoDomain string
	validate   *validator.Validate
}

func NewAuthService(users repository.UserRepository, demoDomain string) *AuthService {
	return &AuthService{
		users:      users,
		demoDomain: strings.ToLower(demoDomain),
		validate:   validator.New(),
	}
}

// Register creates a regular account. Validation failures come back as
// validator.ValidationErrors.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if s.demoDomain != "" && strings.HasSuffix(in.Email, "@"+s.demoDomain) {
		return nil, ErrReservedEmail
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks a login. Unknown emails and wrong passwords look the
// same to the caller. Demo accounts cannot log in with a password.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.IsDemo || !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	return user, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"campus_essentials/internal/repository"
	"campus_essentials/models"
	apperr "campus_essentials/pkg/errors"
	"campus_essentials/utils"

	"github.com/go-playground/validator/v10"
)

const userSearchLimit = 10

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72,bcrypt"`
	Hostel   string `json:"hostel" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=20"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users    UserRepository
	tokens   *utils.TokenManager
	validate *validator.Validate
	log      *slog.Logger
}

func NewAuthService(users UserRepository, tokens *utils.TokenManager, log *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, validate: newValidator(), log: log}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	hash, err := utils.HashPassword(ctx, in.Password)
	if err != nil {
		return nil, apperr.FromContext("could not hash password", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Hostel:   strings.TrimSpace(in.Hostel),
		Phone:    strings.TrimSpace(in.Phone),
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrEmailTaken
		}
		return nil, storeError(err, apperr.ErrUserNotFound, "could not create user")
	}

	s.log.Info("user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login fails with the same error for an unknown email and a wrong
// password. Unknown emails still pay for one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}

	var hash string
	user, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		hash = user.Password
	case errors.Is(err, repository.ErrNotFound):
		user = nil
	default:
		return nil, storeError(err, apperr.ErrInvalidCredentials, "could not load user")
	}

	ok, err := utils.CheckPasswordHash(ctx, in.Password, hash)
	if err != nil {
		return nil, apperr.FromContext("could not verify password", err)
	}
	if !ok || user == nil {
		return nil, apperr.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, apperr.ErrUserNotFound, "could not load user")
	}
	return user, nil
}

func (s *AuthService) SearchUsers(ctx context.Context, callerID uint, q string) ([]models.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.InvalidArg("query parameter 'q' is required")
	}
	users, err := s.users.Search(ctx, q, callerID, userSearchLimit)
	if err != nil {
		return nil, storeError(err, apperr.ErrUserNotFound, "could not search users")
	}
	return users, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(err, apperr.ErrUserNotFound, "could not list users")
	}
	return users, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Role, user.Email)
	if err != nil {
		return nil, apperr.Internal("could not issue token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

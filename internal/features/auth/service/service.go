package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"trading-portal-backend/internal/common/config"
	"trading-portal-backend/internal/common/validation"
	"trading-portal-backend/internal/features/auth/models"
	"trading-portal-backend/internal/features/auth/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("an account with this email already exists")
	// Единое сообщение: не раскрываем, существует ли email
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
)

type AuthService interface {
	Register(ctx context.Context, input *models.RegisterRequest) (*models.UserResponse, string, error)
	SignIn(ctx context.Context, input *models.SigninRequest) (*models.UserResponse, string, error)
	SignInWithGoogle(ctx context.Context, credential string) (*models.UserResponse, string, error)
	SignOut(ctx context.Context, token string) error
	ResolveSession(ctx context.Context, token string) (*models.User, error)
	UpdateName(ctx context.Context, userID, name string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	google   GoogleVerifier
	config   *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	google GoogleVerifier,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		google:   google,
		config:   cfg,
	}
}

func (s *authService) Register(ctx context.Context, input *models.RegisterRequest) (*models.UserResponse, string, error) {
	email := validation.NormalizeEmail(input.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, "", err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
		Country:      strings.TrimSpace(input.Country),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return toUserResponse(user), token, nil
}

func (s *authService) SignIn(ctx context.Context, input *models.SigninRequest) (*models.UserResponse, string, error) {
	email := validation.NormalizeEmail(input.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		// Пользователь создан через Google и локального пароля не имеет
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return toUserResponse(user), token, nil
}

func (s *authService) SignInWithGoogle(ctx context.Context, credential string) (*models.UserResponse, string, error) {
	googleUser, err := s.google.Verify(ctx, credential)
	if err != nil {
		return nil, "", err
	}

	email := validation.NormalizeEmail(googleUser.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		// Связываем существующий локальный аккаунт с внешней identity
		if user.GoogleID == "" {
			user.GoogleID = googleUser.Sub
			if err := s.users.Update(ctx, user); err != nil {
				return nil, "", err
			}
		}
	} else {
		name := strings.TrimSpace(googleUser.FirstName + " " + googleUser.LastName)
		user = &models.User{
			ID:        uuid.New().String(),
			Email:     email,
			GoogleID:  googleUser.Sub,
			Name:      name,
			CreatedAt: time.Now(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, "", err
		}
	}

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return toUserResponse(user), token, nil
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *authService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

func (s *authService) UpdateName(ctx context.Context, userID, name string) error {
	if err := validation.ValidateName(name); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	user.Name = strings.TrimSpace(name)
	return s.users.Update(ctx, user)
}

func (s *authService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

func (s *authService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return ErrUserNotFound
	}

	return s.users.Delete(ctx, id)
}

func (s *authService) startSession(ctx context.Context, userID string) (string, error) {
	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.sessions.Create(ctx, session, s.config.Session.TTL); err != nil {
		return "", err
	}

	return session.Token, nil
}

func toUserResponse(user *models.User) *models.UserResponse {
	return &models.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Country:   user.Country,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

const minPasswordLength = 8

// ErrInvalidCredentials возвращается при неверной паре логин/пароль
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)

// TokenIssuer выдает и отзывает токены доступа (реализуется auth.JWTService)
type TokenIssuer interface {
	GenerateToken(user *entity.User) (string, time.Time, error)
	InvalidateTokensForUser(ctx context.Context, userID uint) error
}

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult - пользователь и выданный ему токен
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// AuthService предоставляет методы регистрации, входа и выхода
type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if tokens == nil {
		return nil, fmt.Errorf("TokenIssuer is required for AuthService")
	}
	return &AuthService{userRepo: userRepo, tokens: tokens}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает пользователя. Права staff выдаются только вне API.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)

	if input.Username == "" {
		return nil, apperrors.NewFieldError("username", msgBlankField, apperrors.ErrValidation)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, apperrors.NewFieldError("email", "Enter a valid email address", apperrors.ErrValidation)
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewFieldError("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLength), apperrors.ErrValidation)
	}

	_, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}

	_, err = s.userRepo.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil, fmt.Errorf("%w: user with this username already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован пользователь #%d (%s)", user.ID, user.Username)
	return user, nil
}

// Login проверяет учетные данные и выдает токен. login - username или email.
func (s *AuthService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *entity.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.GetByEmail(ctx, normalizeEmail(login))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.CheckPassword(password) {
		log.Printf("[AuthService] Неверный пароль для пользователя #%d", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout отзывает все ранее выданные токены пользователя
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.tokens.InvalidateTokensForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to invalidate tokens: %w", err)
	}
	return nil
}

// GetMe возвращает текущего пользователя
func (s *AuthService) GetMe(ctx context.Context, userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

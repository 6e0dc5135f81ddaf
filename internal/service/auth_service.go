package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/mozart-api/internal/domain/entity"
	"github.com/yourusername/mozart-api/internal/domain/repository"
	apperrors "github.com/yourusername/mozart-api/internal/pkg/errors"
	"github.com/yourusername/mozart-api/pkg/auth"
)

// AuthService предоставляет методы для регистрации, входа
// и управления способами входа
type AuthService struct {
	userRepo     repository.UserRepository
	identityRepo repository.UserIdentityRepository
	jwtService   *auth.JWTService
	emailService EmailService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	identityRepo repository.UserIdentityRepository,
	jwtService *auth.JWTService,
	emailService EmailService,
) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if identityRepo == nil {
		return nil, fmt.Errorf("identity repository is required")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwt service is required")
	}
	if emailService == nil {
		emailService = &NoopEmailService{}
	}
	return &AuthService{
		userRepo:     userRepo,
		identityRepo: identityRepo,
		jwtService:   jwtService,
		emailService: emailService,
	}, nil
}

// Register регистрирует нового пользователя и возвращает его вместе с JWT
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*entity.User, string, error) {
	email = normalizeEmail(email)

	// Проверяем, что email не занят
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, "", fmt.Errorf("%w: user with this email already exists", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}

	// Проверяем, что имя пользователя не занято
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, "", fmt.Errorf("%w: username already taken", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}

	user := &entity.User{
		Username:            username,
		Email:               email,
		Password:            password, // хешируется в BeforeSave
		PasswordAuthEnabled: true,
		Language:            "en",
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	// Приветственное письмо не должно блокировать регистрацию
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.emailService.SendWelcome(sendCtx, user.Email, user.Username,
			fmt.Sprintf("welcome-%d", user.ID)); err != nil {
			log.Printf("[AuthService] Ошибка отправки приветственного письма для %s: %v", user.Email, err)
		}
	}()

	log.Printf("[AuthService] Зарегистрирован пользователь ID=%d, Email=%s", user.ID, user.Email)
	return user, token, nil
}

// Login проверяет учетные данные и возвращает пользователя с JWT
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		return nil, "", err
	}

	if !user.PasswordAuthEnabled || !user.CheckPassword(password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	log.Printf("[AuthService] Вход пользователя ID=%d, Email=%s", user.ID, user.Email)
	return user, token, nil
}

// GetUserByID возвращает пользователя по ID
func (s *AuthService) GetUserByID(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// ChangePassword меняет пароль пользователя. Для аккаунтов с активным
// паролем требуется старый пароль; OAuth-аккаунты могут установить пароль
// впервые, после чего вход по паролю включается.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if user.PasswordAuthEnabled && !user.CheckPassword(oldPassword) {
		return fmt.Errorf("%w: invalid old password", apperrors.ErrUnauthorized)
	}

	if err := s.userRepo.UpdatePassword(userID, newPassword); err != nil {
		return err
	}

	log.Printf("[AuthService] Пароль изменён для пользователя ID=%d", userID)
	return nil
}

// SocialAccounts возвращает привязанные внешние аккаунты пользователя
func (s *AuthService) SocialAccounts(userID uint) ([]entity.UserIdentity, error) {
	return s.identityRepo.ListByUserID(userID)
}

// DisconnectSocial отвязывает внешний аккаунт.
// Нельзя удалить единственный способ входа: без пароля должен
// остаться хотя бы один привязанный провайдер.
func (s *AuthService) DisconnectSocial(userID uint, provider string) error {
	if provider != "google" && provider != "facebook" {
		return fmt.Errorf("%w: invalid provider", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	count, err := s.identityRepo.CountByUserID(userID)
	if err != nil {
		return err
	}

	if !user.PasswordAuthEnabled && count <= 1 {
		return ErrLastLoginMethod
	}

	if err := s.identityRepo.Delete(userID, provider); err != nil {
		return err
	}

	log.Printf("[AuthService] Отвязан провайдер %s для пользователя ID=%d", provider, userID)
	return nil
}

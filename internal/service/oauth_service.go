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
)

const oauthStateTTL = 10 * time.Minute

// OAuthStateStore хранит одноразовые state-значения OAuth-флоу в кеше.
// Защита от CSRF: колбэк принимается только с выданным ранее state.
type OAuthStateStore struct {
	cache repository.CacheRepository
}

func NewOAuthStateStore(cache repository.CacheRepository) (*OAuthStateStore, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache repository is required")
	}
	return &OAuthStateStore{cache: cache}, nil
}

// Issue генерирует новый state и сохраняет его с TTL
func (s *OAuthStateStore) Issue(provider string) (string, error) {
	state, err := generateRandomHex(16)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("oauth:state:%s:%s", provider, state)
	ok, err := s.cache.SetNX(key, "1", oauthStateTTL)
	if err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("oauth state collision")
	}

	return state, nil
}

// Consume проверяет state и удаляет его (одноразовое использование)
func (s *OAuthStateStore) Consume(provider, state string) error {
	if state == "" {
		return ErrInvalidOAuthState
	}

	key := fmt.Sprintf("oauth:state:%s:%s", provider, state)
	exists, err := s.cache.Exists(key)
	if err != nil {
		return fmt.Errorf("failed to check oauth state: %w", err)
	}
	if !exists {
		return ErrInvalidOAuthState
	}

	if err := s.cache.Delete(key); err != nil {
		log.Printf("[OAuth] Ошибка удаления state из кеша: %v", err)
	}
	return nil
}

// oauthAccountResolver связывает профиль внешнего провайдера с пользователем:
// находит существующую привязку, привязывает по совпадению email
// или создает нового пользователя.
type oauthAccountResolver struct {
	userRepo     repository.UserRepository
	identityRepo repository.UserIdentityRepository
	emailService EmailService
}

func (r *oauthAccountResolver) resolve(provider, sub, email string, emailVerified bool, usernameHint string) (*entity.User, error) {
	// Существующая привязка - обычный вход
	identity, err := r.identityRepo.GetByProviderSub(provider, sub)
	if err == nil && identity != nil {
		return r.userRepo.GetByID(identity.UserID)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is missing in %s profile", apperrors.ErrValidation, provider)
	}

	// Пользователь с таким email уже есть - привязываем провайдера к нему
	existing, err := r.userRepo.GetByEmail(email)
	if err == nil && existing != nil {
		if createErr := r.identityRepo.Create(&entity.UserIdentity{
			UserID:        existing.ID,
			Provider:      provider,
			ProviderSub:   sub,
			ProviderEmail: email,
			EmailVerified: emailVerified,
		}); createErr != nil {
			return nil, fmt.Errorf("failed to link %s identity: %w", provider, createErr)
		}
		log.Printf("[OAuth] Провайдер %s привязан к существующему пользователю ID=%d", provider, existing.ID)
		return existing, nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// Новый пользователь
	username, err := r.generateUniqueUsername(email, sub, usernameHint)
	if err != nil {
		return nil, err
	}
	randomPassword, err := generateRandomHex(32)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:            username,
		Email:               email,
		Password:            randomPassword,
		PasswordAuthEnabled: false,
		Language:            "en",
	}
	if err := r.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user from %s auth: %w", provider, err)
	}

	if err := r.identityRepo.Create(&entity.UserIdentity{
		UserID:        user.ID,
		Provider:      provider,
		ProviderSub:   sub,
		ProviderEmail: email,
		EmailVerified: emailVerified,
	}); err != nil {
		return nil, fmt.Errorf("failed to create %s identity: %w", provider, err)
	}

	if r.emailService != nil {
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := r.emailService.SendWelcome(sendCtx, user.Email, user.Username,
				fmt.Sprintf("welcome-%d", user.ID)); err != nil {
				log.Printf("[OAuth] Ошибка отправки приветственного письма для %s: %v", user.Email, err)
			}
		}()
	}

	log.Printf("[OAuth] Создан пользователь ID=%d через провайдера %s", user.ID, provider)
	return user, nil
}

func (r *oauthAccountResolver) generateUniqueUsername(email, sub, hint string) (string, error) {
	base := sanitizeUsername(hint)
	if base == "" {
		for i, c := range email {
			if c == '@' {
				base = sanitizeUsername(email[:i])
				break
			}
		}
	}
	if base == "" {
		base = "user_" + sanitizeUsername(sub)
	}
	if len(base) < 3 {
		base = "musician"
	}
	if len(base) > 42 {
		base = base[:42]
	}

	candidates := []string{base}
	for i := 1; i <= 100; i++ {
		candidates = append(candidates, fmt.Sprintf("%s_%d", base, i))
	}

	for _, candidate := range candidates {
		_, err := r.userRepo.GetByUsername(candidate)
		if errors.Is(err, apperrors.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}

	randomSuffix, err := generateRandomHex(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", base, randomSuffix), nil
}

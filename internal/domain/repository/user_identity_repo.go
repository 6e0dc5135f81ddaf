package repository

import "github.com/yourusername/mozart-api/internal/domain/entity"

// UserIdentityRepository хранит привязки пользователей к внешним провайдерам
type UserIdentityRepository interface {
	Create(identity *entity.UserIdentity) error
	GetByProviderSub(provider, providerSub string) (*entity.UserIdentity, error)
	GetByUserAndProvider(userID uint, provider string) (*entity.UserIdentity, error)
	ListByUserID(userID uint) ([]entity.UserIdentity, error)
	CountByUserID(userID uint) (int64, error)
	Delete(userID uint, provider string) error
}

package repository

import (
	"github.com/yourusername/mozart-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	UpdateProfile(userID uint, updates map[string]interface{}) error
	UpdatePassword(userID uint, newPassword string) error
	List(limit, offset int) ([]entity.User, error)
	// GetLeaderboard возвращает пользователей по убыванию total_score
	// с пагинацией и общим количеством
	GetLeaderboard(limit, offset int) ([]entity.User, int64, error)
	// GetFriendsLeaderboard возвращает друзей пользователя (включая его самого)
	// по убыванию total_score
	GetFriendsLeaderboard(userID uint, limit, offset int) ([]entity.User, int64, error)
}

package repository

import "github.com/yourusername/mozart-api/internal/domain/entity"

// FriendshipRepository определяет методы для работы со списком друзей
type FriendshipRepository interface {
	Create(friendship *entity.Friendship) error
	Delete(userID, friendID uint) error
	Exists(userID, friendID uint) (bool, error)
	ListFriendIDs(userID uint) ([]uint, error)
}

package postgres

import (
	"errors"

	"github.com/lib/pq"
	"github.com/yourusername/mozart-api/internal/domain/entity"
	apperrors "github.com/yourusername/mozart-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// FriendshipRepo реализует repository.FriendshipRepository
type FriendshipRepo struct {
	db *gorm.DB
}

// NewFriendshipRepo создает новый репозиторий друзей
func NewFriendshipRepo(db *gorm.DB) *FriendshipRepo {
	return &FriendshipRepo{db: db}
}

// Create добавляет друга. Повторное добавление возвращает ErrConflict.
func (r *FriendshipRepo) Create(friendship *entity.Friendship) error {
	err := r.db.Create(friendship).Error
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// Delete удаляет друга из списка пользователя
func (r *FriendshipRepo) Delete(userID, friendID uint) error {
	result := r.db.
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Delete(&entity.Friendship{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Exists проверяет, есть ли friendID в списке друзей userID
func (r *FriendshipRepo) Exists(userID, friendID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	return count > 0, err
}

// ListFriendIDs возвращает ID всех друзей пользователя
func (r *FriendshipRepo) ListFriendIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.Friendship{}).
		Where("user_id = ?", userID).
		Order("friend_id").
		Pluck("friend_id", &ids).Error
	return ids, err
}

package postgres

import (
	"github.com/yourusername/mozart-api/internal/domain/entity"
	"gorm.io/gorm"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток упражнений
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Save сохраняет попытку упражнения
func (r *AttemptRepo) Save(attempt *entity.ExerciseAttempt) error {
	return r.db.Create(attempt).Error
}

// SaveTx сохраняет попытку в рамках внешней транзакции
func (r *AttemptRepo) SaveTx(tx *gorm.DB, attempt *entity.ExerciseAttempt) error {
	return tx.Create(attempt).Error
}

// GetUserAttempts возвращает попытки пользователя с пагинацией, новые первыми
func (r *AttemptRepo) GetUserAttempts(userID uint, limit, offset int) ([]entity.ExerciseAttempt, int64, error) {
	var attempts []entity.ExerciseAttempt
	var total int64

	err := r.db.Model(&entity.ExerciseAttempt{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// GetUserAttemptsByCategory возвращает попытки пользователя в указанной категории
func (r *AttemptRepo) GetUserAttemptsByCategory(userID uint, category string, limit, offset int) ([]entity.ExerciseAttempt, int64, error) {
	var attempts []entity.ExerciseAttempt
	var total int64

	err := r.db.Model(&entity.ExerciseAttempt{}).
		Where("user_id = ? AND category = ?", userID, category).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.Where("user_id = ? AND category = ?", userID, category).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// CountByUser возвращает общее число попыток пользователя и число верных
func (r *AttemptRepo) CountByUser(userID uint) (int64, int64, error) {
	var total int64
	var correct int64

	err := r.db.Model(&entity.ExerciseAttempt{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	err = r.db.Model(&entity.ExerciseAttempt{}).
		Where("user_id = ? AND is_correct = TRUE", userID).
		Count(&correct).Error
	if err != nil {
		return 0, 0, err
	}

	return total, correct, nil
}

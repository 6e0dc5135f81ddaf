package repository

import (
	"github.com/yourusername/mozart-api/internal/domain/entity"
	"gorm.io/gorm"
)

// AttemptRepository определяет методы для работы с попытками упражнений
type AttemptRepository interface {
	Save(attempt *entity.ExerciseAttempt) error
	SaveTx(tx *gorm.DB, attempt *entity.ExerciseAttempt) error
	GetUserAttempts(userID uint, limit, offset int) ([]entity.ExerciseAttempt, int64, error)
	GetUserAttemptsByCategory(userID uint, category string, limit, offset int) ([]entity.ExerciseAttempt, int64, error)
	// CountByUser возвращает общее число попыток и число верных
	CountByUser(userID uint) (total int64, correct int64, err error)
}

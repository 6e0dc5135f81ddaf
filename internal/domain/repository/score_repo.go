package repository

import (
	"github.com/yourusername/mozart-api/internal/domain/entity"
	"gorm.io/gorm"
)

// ScoreRepository определяет методы для работы с рекордами
type ScoreRepository interface {
	GetUserScores(userID uint) ([]entity.Score, error)
	GetUserScore(userID uint, category, difficulty string) (*entity.Score, error)
	// UpsertIfHigher сохраняет результат только если он строго больше текущего
	// рекорда. Возвращает true, если рекорд был обновлён.
	UpsertIfHigher(tx *gorm.DB, userID uint, category, difficulty string, score int) (bool, error)
	// GetCategoryLeaderboard возвращает лучшие результаты по категории
	// (максимум по всем сложностям на пользователя) по убыванию
	GetCategoryLeaderboard(category string, limit, offset int) ([]entity.CategoryLeaderboardEntry, int64, error)
}

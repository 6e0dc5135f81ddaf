package postgres

import (
	"errors"

	"github.com/yourusername/mozart-api/internal/domain/entity"
	apperrors "github.com/yourusername/mozart-api/internal/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScoreRepo реализует repository.ScoreRepository
type ScoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo создает новый репозиторий рекордов
func NewScoreRepo(db *gorm.DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// GetUserScores возвращает все рекорды пользователя
func (r *ScoreRepo) GetUserScores(userID uint) ([]entity.Score, error) {
	var scores []entity.Score
	err := r.db.Where("user_id = ?", userID).
		Order("category, difficulty").
		Find(&scores).Error
	return scores, err
}

// GetUserScore возвращает рекорд пользователя для пары (категория, сложность)
func (r *ScoreRepo) GetUserScore(userID uint, category, difficulty string) (*entity.Score, error) {
	var score entity.Score
	err := r.db.
		Where("user_id = ? AND category = ? AND difficulty = ?", userID, category, difficulty).
		First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &score, nil
}

// UpsertIfHigher сохраняет результат только если он строго больше текущего рекорда.
// Использует INSERT ... ON CONFLICT, чтобы операция оставалась атомарной
// при конкурентных сабмитах. Возвращает true, если запись была создана или обновлена.
func (r *ScoreRepo) UpsertIfHigher(tx *gorm.DB, userID uint, category, difficulty string, score int) (bool, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "category"}, {Name: "difficulty"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"high_score": gorm.Expr("EXCLUDED.high_score"),
			"updated_at": gorm.Expr("EXCLUDED.updated_at"),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("scores.high_score < EXCLUDED.high_score"),
		}},
	}).Create(&entity.Score{
		UserID:     userID,
		Category:   category,
		Difficulty: difficulty,
		HighScore:  score,
	})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// GetCategoryLeaderboard возвращает лучшие результаты по категории с пагинацией.
// Для каждого пользователя берётся максимум среди всех сложностей.
func (r *ScoreRepo) GetCategoryLeaderboard(category string, limit, offset int) ([]entity.CategoryLeaderboardEntry, int64, error) {
	var entries []entity.CategoryLeaderboardEntry
	var total int64

	err := r.db.Model(&entity.Score{}).
		Where("category = ?", category).
		Distinct("user_id").
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.Model(&entity.Score{}).
		Select("scores.user_id, users.username, MAX(scores.high_score) AS high_score").
		Joins("JOIN users ON users.id = scores.user_id").
		Where("scores.category = ?", category).
		Group("scores.user_id, users.username").
		Order("high_score DESC, scores.user_id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

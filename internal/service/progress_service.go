package service

import (
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/mozart-api/internal/domain/entity"
	"github.com/yourusername/mozart-api/internal/domain/repository"
	"github.com/yourusername/mozart-api/internal/exercise"
	apperrors "github.com/yourusername/mozart-api/internal/pkg/errors"
)

// StatsNotifier доставляет события прогресса подключённым клиентам
type StatsNotifier interface {
	NotifyUser(userID uint, event string, payload interface{})
}

// SubmitInput - данные завершённой попытки упражнения
type SubmitInput struct {
	Category      string
	Difficulty    string
	IsCorrect     bool
	UserAnswer    string
	CorrectAnswer string
	Accuracy      float64
	TimeTakenSec  int
	ExerciseData  entity.JSONMap
}

// UserStats - агрегаты пользователя после применения попытки
type UserStats struct {
	TotalScore              int64 `json:"totalScore"`
	Coins                   int64 `json:"coins"`
	CurrentStreak           int   `json:"currentStreak"`
	LongestStreak           int   `json:"longestStreak"`
	TotalExercisesCompleted int64 `json:"totalExercisesCompleted"`
}

// SubmitResult - результат сабмита попытки
type SubmitResult struct {
	AttemptID        uint      `json:"attemptId"`
	IsCorrect        bool      `json:"isCorrect"`
	PointsEarned     int64     `json:"pointsEarned"`
	MaxPoints        int       `json:"maxPoints"`
	StreakMultiplier int       `json:"streakMultiplier"`
	NewHighScore     bool      `json:"newHighScore"`
	UserStats        UserStats `json:"userStats"`
}

// ProgressService применяет результаты попыток: серия, монеты, общий счёт,
// рекорды. Вся запись происходит в одной транзакции с блокировкой строки
// пользователя, чтобы конкурентные сабмиты не теряли обновления.
type ProgressService struct {
	db          *gorm.DB
	attemptRepo repository.AttemptRepository
	scoreRepo   repository.ScoreRepository
	typeRepo    repository.ExerciseTypeRepository
	cacheRepo   repository.CacheRepository
	notifier    StatsNotifier
}

// NewProgressService создает новый сервис прогресса
func NewProgressService(
	db *gorm.DB,
	attemptRepo repository.AttemptRepository,
	scoreRepo repository.ScoreRepository,
	typeRepo repository.ExerciseTypeRepository,
	cacheRepo repository.CacheRepository,
	notifier StatsNotifier,
) (*ProgressService, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if attemptRepo == nil {
		return nil, fmt.Errorf("attempt repository is required")
	}
	if scoreRepo == nil {
		return nil, fmt.Errorf("score repository is required")
	}
	if typeRepo == nil {
		return nil, fmt.Errorf("exercise type repository is required")
	}
	return &ProgressService{
		db:          db,
		attemptRepo: attemptRepo,
		scoreRepo:   scoreRepo,
		typeRepo:    typeRepo,
		cacheRepo:   cacheRepo,
		notifier:    notifier,
	}, nil
}

// Submit применяет попытку упражнения к прогрессу пользователя.
// Заработанные очки = базовые очки категории/сложности, умноженные
// на множитель серии. Неверный ответ обнуляет серию и не приносит очков.
func (s *ProgressService) Submit(userID uint, input SubmitInput) (*SubmitResult, error) {
	if !exercise.IsValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: invalid exercise category", apperrors.ErrValidation)
	}
	if !exercise.IsValidDifficulty(input.Difficulty) {
		return nil, fmt.Errorf("%w: invalid difficulty level", apperrors.ErrValidation)
	}

	exerciseType, err := s.typeRepo.GetByCategory(input.Category)
	if err != nil {
		return nil, err
	}
	basePoints := exerciseType.PointsFor(input.Difficulty)

	accuracy := input.Accuracy
	if accuracy == 0 && input.IsCorrect {
		accuracy = 100
	}

	var result SubmitResult

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Блокируем строку пользователя до конца транзакции
		var user entity.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrNotFound
			}
			return err
		}

		earned := user.ApplyAttempt(input.IsCorrect, basePoints)

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update user stats: %w", err)
		}

		attempt := &entity.ExerciseAttempt{
			UserID:         userID,
			ExerciseTypeID: exerciseType.ID,
			Category:       input.Category,
			Difficulty:     input.Difficulty,
			UserAnswer:     input.UserAnswer,
			CorrectAnswer:  input.CorrectAnswer,
			IsCorrect:      input.IsCorrect,
			Accuracy:       accuracy,
			PointsEarned:   int(earned),
			MaxPoints:      basePoints,
			TimeTakenSec:   input.TimeTakenSec,
			ExerciseData:   input.ExerciseData,
		}
		if err := s.attemptRepo.SaveTx(tx, attempt); err != nil {
			return fmt.Errorf("failed to save attempt: %w", err)
		}

		newHigh := false
		if input.IsCorrect && earned > 0 {
			newHigh, err = s.scoreRepo.UpsertIfHigher(tx, userID, input.Category, input.Difficulty, int(earned))
			if err != nil {
				return fmt.Errorf("failed to upsert score: %w", err)
			}
		}

		result = SubmitResult{
			AttemptID:        attempt.ID,
			IsCorrect:        input.IsCorrect,
			PointsEarned:     earned,
			MaxPoints:        basePoints,
			StreakMultiplier: entity.StreakMultiplier(user.CurrentStreak),
			NewHighScore:     newHigh,
			UserStats: UserStats{
				TotalScore:              user.TotalScore,
				Coins:                   user.Coins,
				CurrentStreak:           user.CurrentStreak,
				LongestStreak:           user.LongestStreak,
				TotalExercisesCompleted: user.TotalExercisesCompleted,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Лидерборды пересчитываются, сбрасываем кеш
	s.invalidateLeaderboardCache(input.Category)

	if s.notifier != nil {
		s.notifier.NotifyUser(userID, "stats:updated", result.UserStats)
		if result.NewHighScore {
			s.notifier.NotifyUser(userID, "score:highscore", map[string]interface{}{
				"category":   input.Category,
				"difficulty": input.Difficulty,
				"highScore":  result.PointsEarned,
			})
		}
	}

	log.Printf("[ProgressService] Попытка пользователя ID=%d: category=%s difficulty=%s correct=%t earned=%d",
		userID, input.Category, input.Difficulty, input.IsCorrect, result.PointsEarned)

	return &result, nil
}

// GetUserAttempts возвращает историю попыток пользователя
func (s *ProgressService) GetUserAttempts(userID uint, category string, limit, offset int) ([]entity.ExerciseAttempt, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	if category != "" {
		if !exercise.IsValidCategory(category) {
			return nil, 0, fmt.Errorf("%w: invalid exercise category", apperrors.ErrValidation)
		}
		return s.attemptRepo.GetUserAttemptsByCategory(userID, category, limit, offset)
	}
	return s.attemptRepo.GetUserAttempts(userID, limit, offset)
}

func (s *ProgressService) invalidateLeaderboardCache(category string) {
	if s.cacheRepo == nil {
		return
	}
	keys := []string{
		"leaderboard:global",
		fmt.Sprintf("leaderboard:exercise:%s", category),
	}
	for _, key := range keys {
		if err := s.cacheRepo.Delete(key); err != nil {
			log.Printf("[ProgressService] Ошибка сброса кеша %s: %v", key, err)
		}
	}
}

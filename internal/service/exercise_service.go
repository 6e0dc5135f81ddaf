package service

import (
	"fmt"

	"github.com/yourusername/mozart-api/internal/domain/entity"
	"github.com/yourusername/mozart-api/internal/domain/repository"
	"github.com/yourusername/mozart-api/internal/exercise"
	apperrors "github.com/yourusername/mozart-api/internal/pkg/errors"
)

// ExerciseService генерирует упражнения, подставляя базовые очки
// из каталога в БД для категорий, которые там хранятся
type ExerciseService struct {
	generator *exercise.Generator
	typeRepo  repository.ExerciseTypeRepository
}

// NewExerciseService создает новый сервис упражнений
func NewExerciseService(generator *exercise.Generator, typeRepo repository.ExerciseTypeRepository) (*ExerciseService, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if typeRepo == nil {
		return nil, fmt.Errorf("exercise type repository is required")
	}
	return &ExerciseService{generator: generator, typeRepo: typeRepo}, nil
}

// ListTypes возвращает каталог упражнений
func (s *ExerciseService) ListTypes() ([]entity.ExerciseType, error) {
	return s.typeRepo.List()
}

// Generate создает упражнение указанной категории и сложности.
// Возвращаемое значение сериализуется напрямую в JSON-ответ.
func (s *ExerciseService) Generate(category, difficulty string) (interface{}, error) {
	if !exercise.IsValidDifficulty(difficulty) {
		return nil, fmt.Errorf("%w: invalid difficulty level", apperrors.ErrValidation)
	}

	switch category {
	case exercise.CategoryGuessNote:
		return s.generator.GuessNote(difficulty)
	case exercise.CategoryIntervals:
		return s.generator.Intervals(difficulty)
	case exercise.CategoryHarmonies:
		return s.generator.Harmonies(difficulty)
	case exercise.CategoryPanning, exercise.CategoryVolumes, exercise.CategoryEqualizing:
		exerciseType, err := s.typeRepo.GetByCategory(category)
		if err != nil {
			return nil, err
		}
		points := exerciseType.PointsFor(difficulty)

		switch category {
		case exercise.CategoryPanning:
			return s.generator.Panning(difficulty, points)
		case exercise.CategoryVolumes:
			return s.generator.Volumes(difficulty, points)
		default:
			return s.generator.Equalizing(difficulty, points)
		}
	default:
		return nil, fmt.Errorf("%w: invalid exercise category", apperrors.ErrValidation)
	}
}

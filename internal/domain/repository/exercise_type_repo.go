package repository

import "github.com/yourusername/mozart-api/internal/domain/entity"

// ExerciseTypeRepository определяет методы для работы с каталогом упражнений
type ExerciseTypeRepository interface {
	GetByCategory(category string) (*entity.ExerciseType, error)
	List() ([]entity.ExerciseType, error)
}

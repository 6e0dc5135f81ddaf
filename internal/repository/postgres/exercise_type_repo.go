package postgres

import (
	"errors"

	"github.com/yourusername/mozart-api/internal/domain/entity"
	apperrors "github.com/yourusername/mozart-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// ExerciseTypeRepo реализует repository.ExerciseTypeRepository
type ExerciseTypeRepo struct {
	db *gorm.DB
}

// NewExerciseTypeRepo создает новый репозиторий каталога упражнений
func NewExerciseTypeRepo(db *gorm.DB) *ExerciseTypeRepo {
	return &ExerciseTypeRepo{db: db}
}

// GetByCategory возвращает тип упражнения по категории
func (r *ExerciseTypeRepo) GetByCategory(category string) (*entity.ExerciseType, error) {
	var exerciseType entity.ExerciseType
	err := r.db.Where("category = ?", category).First(&exerciseType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &exerciseType, nil
}

// List возвращает весь каталог упражнений
func (r *ExerciseTypeRepo) List() ([]entity.ExerciseType, error) {
	var types []entity.ExerciseType
	err := r.db.Order("id").Find(&types).Error
	return types, err
}

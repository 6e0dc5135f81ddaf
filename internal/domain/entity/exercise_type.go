package entity

import "time"

// ExerciseType описывает категорию упражнений в каталоге
// (guess-note, intervals, harmonies, panning, volumes, equalizing).
// Таблица заполняется миграцией и служит источником базовых очков.
type ExerciseType struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Category     string    `gorm:"size:30;not null;uniqueIndex" json:"category"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Description  string    `gorm:"size:255;not null;default:''" json:"description"`
	PointsEasy   int       `gorm:"not null;default:10" json:"points_easy"`
	PointsMedium int       `gorm:"not null;default:20" json:"points_medium"`
	PointsHard   int       `gorm:"not null;default:40" json:"points_hard"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ExerciseType) TableName() string {
	return "exercise_types"
}

// PointsFor возвращает базовые очки для указанной сложности.
// Неизвестная сложность трактуется как easy (валидация происходит раньше).
func (t *ExerciseType) PointsFor(difficulty string) int {
	switch difficulty {
	case "medium":
		return t.PointsMedium
	case "hard":
		return t.PointsHard
	default:
		return t.PointsEasy
	}
}

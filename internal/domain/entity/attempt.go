package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMap - пользовательский тип для хранения произвольных данных упражнения в JSONB
type JSONMap map[string]interface{}

// Scan реализует интерфейс sql.Scanner для JSONMap
// Используется GORM для чтения JSONB данных из базы
func (m *JSONMap) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*m = JSONMap{}
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Value реализует интерфейс driver.Valuer для JSONMap
// Используется GORM для записи JSONMap в JSONB в базе
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil || len(m) == 0 {
		return []byte("{}"), nil // Возвращаем пустой JSON объект вместо null
	}
	return json.Marshal(m)
}

// ExerciseAttempt представляет одну завершённую попытку упражнения.
// Запись неизменяема после создания.
type ExerciseAttempt struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	UserID         uint    `gorm:"not null;index" json:"user_id"`
	ExerciseTypeID uint    `gorm:"not null;index" json:"exercise_type_id"`
	Category       string  `gorm:"size:30;not null;index:idx_attempts_category" json:"category"`
	Difficulty     string  `gorm:"size:10;not null" json:"difficulty"`
	UserAnswer     string  `gorm:"size:255;not null;default:''" json:"user_answer"`
	CorrectAnswer  string  `gorm:"size:255;not null;default:''" json:"correct_answer"`
	IsCorrect      bool    `gorm:"not null" json:"is_correct"`
	Accuracy       float64 `gorm:"not null;default:0" json:"accuracy"`
	PointsEarned   int     `gorm:"not null;default:0" json:"points_earned"`
	MaxPoints      int     `gorm:"not null;default:0" json:"max_points"`
	TimeTakenSec   int     `gorm:"not null;default:0" json:"time_taken_sec"`
	ExerciseData   JSONMap `gorm:"type:jsonb" json:"exercise_data"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (ExerciseAttempt) TableName() string {
	return "exercise_attempts"
}

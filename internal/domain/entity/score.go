package entity

import "time"

// Score хранит лучший результат пользователя для пары (категория, сложность).
// Инвариант: HighScore монотонно не убывает — обновление происходит только
// если новый результат строго больше сохранённого.
type Score struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_scores_user_cat_diff" json:"user_id"`
	Category   string    `gorm:"size:30;not null;uniqueIndex:idx_scores_user_cat_diff" json:"category"`
	Difficulty string    `gorm:"size:10;not null;uniqueIndex:idx_scores_user_cat_diff" json:"difficulty"`
	HighScore  int       `gorm:"not null;default:0" json:"high_score"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Score) TableName() string {
	return "scores"
}

// CategoryLeaderboardEntry - строка лидерборда по категории упражнений.
// Лучший результат пользователя берётся по максимуму среди всех сложностей.
type CategoryLeaderboardEntry struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	HighScore int    `json:"high_score"`
}

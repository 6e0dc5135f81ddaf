package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StreakMultiplierCap — максимальный множитель монет за серию правильных ответов
const StreakMultiplierCap = 4

// User представляет пользователя в системе
type User struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	Username            string `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email               string `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password            string `gorm:"size:100;not null" json:"-"`
	PasswordAuthEnabled bool   `gorm:"not null;default:true" json:"-"`
	Language            string `gorm:"size:5;not null;default:'en'" json:"language"` // "en", "de" или "es"

	// Игровая статистика
	Coins                   int64 `gorm:"not null;default:0" json:"coins"`
	TotalScore              int64 `gorm:"not null;default:0;index:idx_users_leaderboard" json:"total_score"`
	CurrentStreak           int   `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak           int   `gorm:"not null;default:0" json:"longest_streak"`
	TotalExercisesCompleted int64 `gorm:"not null;default:0" json:"total_exercises_completed"`

	// Настройки клиента
	Theme              string `gorm:"size:20;not null;default:'light'" json:"theme"` // "light" или "dark"
	MasterVolume       int    `gorm:"not null;default:100" json:"master_volume"`     // 0..100
	EmailNotifications bool   `gorm:"not null;default:true" json:"email_notifications"`
	PushNotifications  bool   `gorm:"not null;default:true" json:"push_notifications"`
	SoundEffects       bool   `gorm:"not null;default:true" json:"sound_effects"`
	Vibration          bool   `gorm:"not null;default:true" json:"vibration"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// BeforeSave хеширует пароль перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	// Хешируем пароль только если он:
	// 1. Не пустой
	// 2. Не является уже bcrypt-хешем (начинается с "$2a$", "$2b$" или "$2y$")
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] Ошибка при хешировании пароля для email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// StreakMultiplier возвращает множитель монет для указанной серии.
// Серия 0-4 → x1, 5-9 → x2, 10-14 → x3, 15+ → x4 (потолок).
func StreakMultiplier(streak int) int {
	multiplier := streak/5 + 1
	if multiplier > StreakMultiplierCap {
		multiplier = StreakMultiplierCap
	}
	return multiplier
}

// ApplyAttempt применяет результат попытки к агрегатам пользователя и
// возвращает количество заработанных монет.
// Инвариант: LongestStreak всегда ≥ CurrentStreak.
func (u *User) ApplyAttempt(isCorrect bool, basePoints int) int64 {
	if !isCorrect {
		u.CurrentStreak = 0
		u.TotalExercisesCompleted++
		return 0
	}

	u.CurrentStreak++
	if u.CurrentStreak > u.LongestStreak {
		u.LongestStreak = u.CurrentStreak
	}

	earned := int64(basePoints * StreakMultiplier(u.CurrentStreak))
	u.Coins += earned
	u.TotalScore += earned
	u.TotalExercisesCompleted++
	return earned
}

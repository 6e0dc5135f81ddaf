package entity

import "time"

// Friendship — направленная связь "пользователь добавил друга".
// Используется лидербордом друзей.
type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_friendships_pair" json:"user_id"`
	FriendID  uint      `gorm:"not null;uniqueIndex:idx_friendships_pair;index" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Friendship) TableName() string {
	return "friendships"
}

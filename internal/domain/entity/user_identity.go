package entity

import "time"

// UserIdentity связывает пользователя с внешним OAuth-провайдером
// (google, facebook). Один провайдер — не более одной привязки на пользователя.
type UserIdentity struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index;uniqueIndex:idx_identities_user_provider" json:"user_id"`
	Provider      string    `gorm:"size:20;not null;uniqueIndex:idx_identities_user_provider;uniqueIndex:idx_identities_provider_sub" json:"provider"`
	ProviderSub   string    `gorm:"size:191;not null;uniqueIndex:idx_identities_provider_sub" json:"-"`
	ProviderEmail string    `gorm:"size:100;not null;default:''" json:"provider_email"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (UserIdentity) TableName() string {
	return "user_identities"
}

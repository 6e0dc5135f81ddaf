package repository

import (
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Используется для кеша лидербордов (SetJSON/GetJSON/Delete),
// одноразовых OAuth state (SetNX/Exists/Delete) и счётчиков
// rate limiting (Increment/Expire/TTL).
type CacheRepository interface {
	Delete(key string) error
	Increment(key string) (int64, error)
	Expire(key string, ttl time.Duration) error
	TTL(key string) (time.Duration, error)
	SetJSON(key string, value interface{}, expiration time.Duration) error
	GetJSON(key string, dest interface{}) error
	Exists(key string) (bool, error)
	SetNX(key string, value interface{}, expiration time.Duration) (bool, error)
}

package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// Ошибки уровня сервисов
var (
	// ErrGoogleTokenVerificationFailed - не удалось проверить токен Google
	ErrGoogleTokenVerificationFailed = errors.New("google token verification failed")

	// ErrFacebookTokenVerificationFailed - не удалось проверить токен Facebook
	ErrFacebookTokenVerificationFailed = errors.New("facebook token verification failed")

	// ErrInvalidOAuthState - state OAuth-колбэка не найден или не совпал
	ErrInvalidOAuthState = errors.New("invalid oauth state")

	// ErrLastLoginMethod - попытка отключить единственный способ входа
	ErrLastLoginMethod = errors.New("cannot disconnect the only login method")
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUsername(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	var b strings.Builder
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func generateRandomHex(byteLen int) (string, error) {
	if byteLen <= 0 {
		byteLen = 16
	}
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/mozart-api/internal/domain/entity"
	"github.com/yourusername/mozart-api/internal/domain/repository"
	"github.com/yourusername/mozart-api/internal/exercise"
	apperrors "github.com/yourusername/mozart-api/internal/pkg/errors"
)

const leaderboardCacheTTL = 60 * time.Second

// LeaderboardEntry - строка лидерборда в ответе API
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        uint   `json:"userId"`
	Username      string `json:"username"`
	TotalScore    int64  `json:"totalScore"`
	Coins         int64  `json:"coins"`
	LongestStreak int    `json:"longestStreak"`
}

// CategoryLeaderboardRow - строка лидерборда по категории упражнений
type CategoryLeaderboardRow struct {
	Rank      int    `json:"rank"`
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	HighScore int    `json:"highScore"`
}

// ProfileUpdateInput - изменяемые поля профиля
type ProfileUpdateInput struct {
	Username *string
	Language *string
}

// PreferencesInput - настройки клиента
type PreferencesInput struct {
	Theme              *string
	MasterVolume       *int
	EmailNotifications *bool
	PushNotifications  *bool
	SoundEffects       *bool
	Vibration          *bool
}

// UserService предоставляет методы для работы с профилем, рекордами,
// лидербордами и списком друзей
type UserService struct {
	userRepo       repository.UserRepository
	scoreRepo      repository.ScoreRepository
	attemptRepo    repository.AttemptRepository
	friendshipRepo repository.FriendshipRepository
	cacheRepo      repository.CacheRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(
	userRepo repository.UserRepository,
	scoreRepo repository.ScoreRepository,
	attemptRepo repository.AttemptRepository,
	friendshipRepo repository.FriendshipRepository,
	cacheRepo repository.CacheRepository,
) (*UserService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if scoreRepo == nil {
		return nil, fmt.Errorf("score repository is required")
	}
	if attemptRepo == nil {
		return nil, fmt.Errorf("attempt repository is required")
	}
	if friendshipRepo == nil {
		return nil, fmt.Errorf("friendship repository is required")
	}
	return &UserService{
		userRepo:       userRepo,
		scoreRepo:      scoreRepo,
		attemptRepo:    attemptRepo,
		friendshipRepo: friendshipRepo,
		cacheRepo:      cacheRepo,
	}, nil
}

// GetProfile возвращает пользователя по ID
func (s *UserService) GetProfile(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile обновляет имя пользователя и язык интерфейса
func (s *UserService) UpdateProfile(userID uint, input ProfileUpdateInput) error {
	updates := map[string]interface{}{}

	if input.Username != nil {
		username := *input.Username
		if len(username) < 3 || len(username) > 50 {
			return fmt.Errorf("%w: username must be 3-50 characters", apperrors.ErrValidation)
		}
		// Имя должно быть свободно
		existing, err := s.userRepo.GetByUsername(username)
		if err == nil && existing.ID != userID {
			return fmt.Errorf("%w: username already taken", apperrors.ErrConflict)
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		updates["username"] = username
	}

	if input.Language != nil {
		switch *input.Language {
		case "en", "de", "es":
			updates["language"] = *input.Language
		default:
			return fmt.Errorf("%w: unsupported language", apperrors.ErrValidation)
		}
	}

	if len(updates) == 0 {
		return fmt.Errorf("%w: no valid fields to update", apperrors.ErrValidation)
	}

	return s.userRepo.UpdateProfile(userID, updates)
}

// UpdatePreferences обновляет настройки клиента
func (s *UserService) UpdatePreferences(userID uint, input PreferencesInput) error {
	updates := map[string]interface{}{}

	if input.Theme != nil {
		switch *input.Theme {
		case "light", "dark":
			updates["theme"] = *input.Theme
		default:
			return fmt.Errorf("%w: theme must be 'light' or 'dark'", apperrors.ErrValidation)
		}
	}
	if input.MasterVolume != nil {
		if *input.MasterVolume < 0 || *input.MasterVolume > 100 {
			return fmt.Errorf("%w: masterVolume must be between 0 and 100", apperrors.ErrValidation)
		}
		updates["master_volume"] = *input.MasterVolume
	}
	if input.EmailNotifications != nil {
		updates["email_notifications"] = *input.EmailNotifications
	}
	if input.PushNotifications != nil {
		updates["push_notifications"] = *input.PushNotifications
	}
	if input.SoundEffects != nil {
		updates["sound_effects"] = *input.SoundEffects
	}
	if input.Vibration != nil {
		updates["vibration"] = *input.Vibration
	}

	if len(updates) == 0 {
		return fmt.Errorf("%w: no valid fields to update", apperrors.ErrValidation)
	}

	return s.userRepo.UpdateProfile(userID, updates)
}

// GetScores возвращает рекорды пользователя по категориям и сложностям
func (s *UserService) GetScores(userID uint) ([]entity.Score, error) {
	return s.scoreRepo.GetUserScores(userID)
}

// GetAttemptStats возвращает общее число попыток и число верных
func (s *UserService) GetAttemptStats(userID uint) (total int64, correct int64, err error) {
	return s.attemptRepo.CountByUser(userID)
}

// GetGlobalLeaderboard возвращает глобальный лидерборд по общему счёту.
// Первая страница кешируется в Redis.
func (s *UserService) GetGlobalLeaderboard(limit, offset int) ([]LeaderboardEntry, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	type cachedLeaderboard struct {
		Entries []LeaderboardEntry `json:"entries"`
		Total   int64              `json:"total"`
	}

	useCache := s.cacheRepo != nil && offset == 0
	cacheKey := "leaderboard:global"

	if useCache {
		var cached cachedLeaderboard
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil && len(cached.Entries) >= limit {
			return cached.Entries[:limit], cached.Total, nil
		}
	}

	users, total, err := s.userRepo.GetLeaderboard(limit, offset)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:          offset + i + 1,
			UserID:        u.ID,
			Username:      u.Username,
			TotalScore:    u.TotalScore,
			Coins:         u.Coins,
			LongestStreak: u.LongestStreak,
		}
	}

	if useCache {
		if err := s.cacheRepo.SetJSON(cacheKey, cachedLeaderboard{Entries: entries, Total: total}, leaderboardCacheTTL); err != nil {
			log.Printf("[UserService] Ошибка записи кеша лидерборда: %v", err)
		}
	}

	return entries, total, nil
}

// GetExerciseLeaderboard возвращает лидерборд по категории упражнений
func (s *UserService) GetExerciseLeaderboard(category string, limit, offset int) ([]CategoryLeaderboardRow, int64, error) {
	if !exercise.IsValidCategory(category) {
		return nil, 0, fmt.Errorf("%w: invalid exercise category", apperrors.ErrValidation)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	type cachedLeaderboard struct {
		Rows  []CategoryLeaderboardRow `json:"rows"`
		Total int64                    `json:"total"`
	}

	useCache := s.cacheRepo != nil && offset == 0
	cacheKey := fmt.Sprintf("leaderboard:exercise:%s", category)

	if useCache {
		var cached cachedLeaderboard
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil && len(cached.Rows) >= limit {
			return cached.Rows[:limit], cached.Total, nil
		}
	}

	raw, total, err := s.scoreRepo.GetCategoryLeaderboard(category, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]CategoryLeaderboardRow, len(raw))
	for i, entry := range raw {
		rows[i] = CategoryLeaderboardRow{
			Rank:      offset + i + 1,
			UserID:    entry.UserID,
			Username:  entry.Username,
			HighScore: entry.HighScore,
		}
	}

	if useCache {
		if err := s.cacheRepo.SetJSON(cacheKey, cachedLeaderboard{Rows: rows, Total: total}, leaderboardCacheTTL); err != nil {
			log.Printf("[UserService] Ошибка записи кеша лидерборда %s: %v", category, err)
		}
	}

	return rows, total, nil
}

// GetFriendsLeaderboard возвращает лидерборд среди друзей пользователя
func (s *UserService) GetFriendsLeaderboard(userID uint, limit, offset int) ([]LeaderboardEntry, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.userRepo.GetFriendsLeaderboard(userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:          offset + i + 1,
			UserID:        u.ID,
			Username:      u.Username,
			TotalScore:    u.TotalScore,
			Coins:         u.Coins,
			LongestStreak: u.LongestStreak,
		}
	}

	return entries, total, nil
}

// AddFriend добавляет пользователя в список друзей по имени
func (s *UserService) AddFriend(userID uint, friendUsername string) (*entity.User, error) {
	friend, err := s.userRepo.GetByUsername(friendUsername)
	if err != nil {
		return nil, err
	}
	if friend.ID == userID {
		return nil, fmt.Errorf("%w: cannot add yourself as a friend", apperrors.ErrValidation)
	}

	if err := s.friendshipRepo.Create(&entity.Friendship{
		UserID:   userID,
		FriendID: friend.ID,
	}); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: already in friends list", apperrors.ErrConflict)
		}
		return nil, err
	}

	return friend, nil
}

// RemoveFriend удаляет пользователя из списка друзей
func (s *UserService) RemoveFriend(userID, friendID uint) error {
	return s.friendshipRepo.Delete(userID, friendID)
}

// ListFriends возвращает друзей пользователя
func (s *UserService) ListFriends(userID uint) ([]entity.User, error) {
	ids, err := s.friendshipRepo.ListFriendIDs(userID)
	if err != nil {
		return nil, err
	}

	friends := make([]entity.User, 0, len(ids))
	for _, id := range ids {
		friend, err := s.userRepo.GetByID(id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		friends = append(friends, *friend)
	}

	return friends, nil
}

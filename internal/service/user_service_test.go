package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yourusername/mozart-api/internal/domain/entity"
	apperrors "github.com/yourusername/mozart-api/internal/pkg/errors"
)

// ============================================================================
// Моки для UserService
// ============================================================================

// MockUserRepoForUserService реализует repository.UserRepository
type MockUserRepoForUserService struct {
	mock.Mock
}

func (m *MockUserRepoForUserService) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepoForUserService) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepoForUserService) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepoForUserService) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepoForUserService) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepoForUserService) UpdateProfile(userID uint, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

func (m *MockUserRepoForUserService) UpdatePassword(userID uint, newPassword string) error {
	args := m.Called(userID, newPassword)
	return args.Error(0)
}

func (m *MockUserRepoForUserService) List(limit, offset int) ([]entity.User, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepoForUserService) GetLeaderboard(limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepoForUserService) GetFriendsLeaderboard(userID uint, limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

// MockScoreRepoForUserService реализует repository.ScoreRepository
type MockScoreRepoForUserService struct {
	mock.Mock
}

func (m *MockScoreRepoForUserService) GetUserScores(userID uint) ([]entity.Score, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Score), args.Error(1)
}

func (m *MockScoreRepoForUserService) GetUserScore(userID uint, category, difficulty string) (*entity.Score, error) {
	args := m.Called(userID, category, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Score), args.Error(1)
}

func (m *MockScoreRepoForUserService) UpsertIfHigher(tx *gorm.DB, userID uint, category, difficulty string, score int) (bool, error) {
	args := m.Called(tx, userID, category, difficulty, score)
	return args.Bool(0), args.Error(1)
}

func (m *MockScoreRepoForUserService) GetCategoryLeaderboard(category string, limit, offset int) ([]entity.CategoryLeaderboardEntry, int64, error) {
	args := m.Called(category, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.CategoryLeaderboardEntry), args.Get(1).(int64), args.Error(2)
}

// MockAttemptRepoForUserService реализует repository.AttemptRepository
type MockAttemptRepoForUserService struct {
	mock.Mock
}

func (m *MockAttemptRepoForUserService) Save(attempt *entity.ExerciseAttempt) error {
	args := m.Called(attempt)
	return args.Error(0)
}

func (m *MockAttemptRepoForUserService) SaveTx(tx *gorm.DB, attempt *entity.ExerciseAttempt) error {
	args := m.Called(tx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepoForUserService) GetUserAttempts(userID uint, limit, offset int) ([]entity.ExerciseAttempt, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.ExerciseAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepoForUserService) GetUserAttemptsByCategory(userID uint, category string, limit, offset int) ([]entity.ExerciseAttempt, int64, error) {
	args := m.Called(userID, category, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.ExerciseAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepoForUserService) CountByUser(userID uint) (int64, int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockFriendshipRepoForUserService реализует repository.FriendshipRepository
type MockFriendshipRepoForUserService struct {
	mock.Mock
}

func (m *MockFriendshipRepoForUserService) Create(friendship *entity.Friendship) error {
	args := m.Called(friendship)
	return args.Error(0)
}

func (m *MockFriendshipRepoForUserService) Delete(userID, friendID uint) error {
	args := m.Called(userID, friendID)
	return args.Error(0)
}

func (m *MockFriendshipRepoForUserService) Exists(userID, friendID uint) (bool, error) {
	args := m.Called(userID, friendID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendshipRepoForUserService) ListFriendIDs(userID uint) ([]uint, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockCacheRepoForUserService реализует repository.CacheRepository
type MockCacheRepoForUserService struct {
	mock.Mock
}

func (m *MockCacheRepoForUserService) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepoForUserService) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepoForUserService) Expire(key string, ttl time.Duration) error {
	args := m.Called(key, ttl)
	return args.Error(0)
}

func (m *MockCacheRepoForUserService) TTL(key string) (time.Duration, error) {
	args := m.Called(key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *MockCacheRepoForUserService) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepoForUserService) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepoForUserService) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepoForUserService) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func createTestUserService(
	userRepo *MockUserRepoForUserService,
	friendshipRepo *MockFriendshipRepoForUserService,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		scoreRepo:      new(MockScoreRepoForUserService),
		attemptRepo:    new(MockAttemptRepoForUserService),
		friendshipRepo: friendshipRepo,
	}
}

// ============================================================================
// Тесты для UserService
// ============================================================================

func TestUserService_UpdateProfile_UsernameTooShort(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	svc := createTestUserService(mockUserRepo, new(MockFriendshipRepoForUserService))

	username := "ab"

	// Act
	err := svc.UpdateProfile(1, ProfileUpdateInput{Username: &username})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Короткое имя должно отклоняться")
	mockUserRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestUserService_UpdateProfile_UsernameTaken(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	svc := createTestUserService(mockUserRepo, new(MockFriendshipRepoForUserService))

	username := "occupied"
	mockUserRepo.On("GetByUsername", "occupied").
		Return(&entity.User{ID: 99, Username: "occupied"}, nil)

	// Act
	err := svc.UpdateProfile(1, ProfileUpdateInput{Username: &username})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserService_UpdateProfile_SameUserKeepsUsername(t *testing.T) {
	// Arrange: имя принадлежит самому пользователю, конфликта нет
	mockUserRepo := new(MockUserRepoForUserService)
	svc := createTestUserService(mockUserRepo, new(MockFriendshipRepoForUserService))

	username := "player"
	mockUserRepo.On("GetByUsername", "player").
		Return(&entity.User{ID: 1, Username: "player"}, nil)
	mockUserRepo.On("UpdateProfile", uint(1), map[string]interface{}{"username": "player"}).
		Return(nil)

	// Act
	err := svc.UpdateProfile(1, ProfileUpdateInput{Username: &username})

	// Assert
	require.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

func TestUserService_UpdateProfile_UnsupportedLanguage(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	svc := createTestUserService(mockUserRepo, new(MockFriendshipRepoForUserService))

	language := "fr"

	// Act
	err := svc.UpdateProfile(1, ProfileUpdateInput{Language: &language})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUserService_UpdateProfile_NoFields(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	svc := createTestUserService(mockUserRepo, new(MockFriendshipRepoForUserService))

	// Act
	err := svc.UpdateProfile(1, ProfileUpdateInput{})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Пустое обновление должно отклоняться")
}

func TestUserService_UpdatePreferences(t *testing.T) {
	theme := "dark"
	badTheme := "neon"
	volume := 80
	badVolume := 150
	enabled := true

	testCases := []struct {
		name        string
		input       PreferencesInput
		wantUpdates map[string]interface{}
		wantErr     bool
	}{
		{
			name:  "валидная тема и громкость",
			input: PreferencesInput{Theme: &theme, MasterVolume: &volume},
			wantUpdates: map[string]interface{}{
				"theme":         "dark",
				"master_volume": 80,
			},
		},
		{
			name:  "флаги уведомлений",
			input: PreferencesInput{EmailNotifications: &enabled, Vibration: &enabled},
			wantUpdates: map[string]interface{}{
				"email_notifications": true,
				"vibration":           true,
			},
		},
		{
			name:    "неизвестная тема",
			input:   PreferencesInput{Theme: &badTheme},
			wantErr: true,
		},
		{
			name:    "громкость вне диапазона",
			input:   PreferencesInput{MasterVolume: &badVolume},
			wantErr: true,
		},
		{
			name:    "пустой ввод",
			input:   PreferencesInput{},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockUserRepo := new(MockUserRepoForUserService)
			svc := createTestUserService(mockUserRepo, new(MockFriendshipRepoForUserService))
			if !tc.wantErr {
				mockUserRepo.On("UpdateProfile", uint(1), tc.wantUpdates).Return(nil)
			}

			// Act
			err := svc.UpdatePreferences(1, tc.input)

			// Assert
			if tc.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				require.NoError(t, err)
				mockUserRepo.AssertExpectations(t)
			}
		})
	}
}

func TestUserService_GetGlobalLeaderboard_AssignsRanks(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	svc := createTestUserService(mockUserRepo, new(MockFriendshipRepoForUserService))

	users := []entity.User{
		{ID: 3, Username: "first", TotalScore: 900, Coins: 50, LongestStreak: 12},
		{ID: 7, Username: "second", TotalScore: 750, Coins: 30, LongestStreak: 8},
	}
	mockUserRepo.On("GetLeaderboard", 20, 10).Return(users, int64(42), nil)

	// Act
	entries, total, err := svc.GetGlobalLeaderboard(20, 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	require.Len(t, entries, 2)
	assert.Equal(t, 11, entries[0].Rank, "Ранг должен учитывать смещение страницы")
	assert.Equal(t, 12, entries[1].Rank)
	assert.Equal(t, "first", entries[0].Username)
	assert.Equal(t, int64(900), entries[0].TotalScore)
}

func TestUserService_GetGlobalLeaderboard_ClampsLimit(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	svc := createTestUserService(mockUserRepo, new(MockFriendshipRepoForUserService))

	mockUserRepo.On("GetLeaderboard", 20, 0).Return([]entity.User{}, int64(0), nil)

	// Act
	_, _, err := svc.GetGlobalLeaderboard(500, -3)

	// Assert: limit=500 и offset=-3 нормализуются до 20/0
	require.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

func TestUserService_GetExerciseLeaderboard_InvalidCategory(t *testing.T) {
	// Arrange
	svc := createTestUserService(new(MockUserRepoForUserService), new(MockFriendshipRepoForUserService))

	// Act
	_, _, err := svc.GetExerciseLeaderboard("mixing", 10, 0)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUserService_AddFriend_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	mockFriendshipRepo := new(MockFriendshipRepoForUserService)
	svc := createTestUserService(mockUserRepo, mockFriendshipRepo)

	mockUserRepo.On("GetByUsername", "buddy").
		Return(&entity.User{ID: 9, Username: "buddy"}, nil)
	mockFriendshipRepo.On("Create", &entity.Friendship{UserID: 1, FriendID: 9}).Return(nil)

	// Act
	friend, err := svc.AddFriend(1, "buddy")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(9), friend.ID)
	mockFriendshipRepo.AssertExpectations(t)
}

func TestUserService_AddFriend_Self(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	mockFriendshipRepo := new(MockFriendshipRepoForUserService)
	svc := createTestUserService(mockUserRepo, mockFriendshipRepo)

	mockUserRepo.On("GetByUsername", "me").
		Return(&entity.User{ID: 1, Username: "me"}, nil)

	// Act
	_, err := svc.AddFriend(1, "me")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Нельзя добавить самого себя в друзья")
	mockFriendshipRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestUserService_AddFriend_AlreadyFriends(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	mockFriendshipRepo := new(MockFriendshipRepoForUserService)
	svc := createTestUserService(mockUserRepo, mockFriendshipRepo)

	mockUserRepo.On("GetByUsername", "buddy").
		Return(&entity.User{ID: 9, Username: "buddy"}, nil)
	mockFriendshipRepo.On("Create", mock.AnythingOfType("*entity.Friendship")).
		Return(apperrors.ErrConflict)

	// Act
	_, err := svc.AddFriend(1, "buddy")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserService_AddFriend_UnknownUsername(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepoForUserService)
	mockFriendshipRepo := new(MockFriendshipRepoForUserService)
	svc := createTestUserService(mockUserRepo, mockFriendshipRepo)

	mockUserRepo.On("GetByUsername", "ghost").Return(nil, apperrors.ErrNotFound)

	// Act
	_, err := svc.AddFriend(1, "ghost")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_ListFriends_SkipsDeletedUsers(t *testing.T) {
	// Arrange: один из друзей удалён, список не должен падать
	mockUserRepo := new(MockUserRepoForUserService)
	mockFriendshipRepo := new(MockFriendshipRepoForUserService)
	svc := createTestUserService(mockUserRepo, mockFriendshipRepo)

	mockFriendshipRepo.On("ListFriendIDs", uint(1)).Return([]uint{5, 6}, nil)
	mockUserRepo.On("GetByID", uint(5)).Return(&entity.User{ID: 5, Username: "alive"}, nil)
	mockUserRepo.On("GetByID", uint(6)).Return(nil, apperrors.ErrNotFound)

	// Act
	friends, err := svc.ListFriends(1)

	// Assert
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "alive", friends[0].Username)
}

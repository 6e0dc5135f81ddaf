package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yourusername/mozart-api/internal/domain/entity"
	apperrors "github.com/yourusername/mozart-api/internal/pkg/errors"
)

// ============================================================================
// Тесты для ProgressService
// ============================================================================

// MockExerciseTypeRepoForProgressService реализует repository.ExerciseTypeRepository
type MockExerciseTypeRepoForProgressService struct {
	mock.Mock
}

func (m *MockExerciseTypeRepoForProgressService) GetByCategory(category string) (*entity.ExerciseType, error) {
	args := m.Called(category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExerciseType), args.Error(1)
}

func (m *MockExerciseTypeRepoForProgressService) List() ([]entity.ExerciseType, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExerciseType), args.Error(1)
}

// statsNotifierRecorder записывает отправленные события вместо WebSocket
type statsNotifierRecorder struct {
	events []string
}

func (r *statsNotifierRecorder) NotifyUser(userID uint, event string, payload interface{}) {
	r.events = append(r.events, event)
}

func createTestProgressService(attemptRepo *MockAttemptRepoForUserService) *ProgressService {
	return &ProgressService{
		attemptRepo: attemptRepo,
	}
}

// newTransactionTestDB создает gorm.DB поверх sqlmock для проверки
// транзакционной логики без реальной базы
func newTransactionTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return db, dbMock
}

func TestProgressService_GetUserAttempts_AllCategories(t *testing.T) {
	// Arrange
	mockAttemptRepo := new(MockAttemptRepoForUserService)
	svc := createTestProgressService(mockAttemptRepo)

	attempts := []entity.ExerciseAttempt{
		{UserID: 1, Category: "guess-note", IsCorrect: true},
		{UserID: 1, Category: "panning", IsCorrect: false},
	}
	mockAttemptRepo.On("GetUserAttempts", uint(1), 20, 0).
		Return(attempts, int64(2), nil)

	// Act
	result, total, err := svc.GetUserAttempts(1, "", 20, 0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, result, 2)
	mockAttemptRepo.AssertExpectations(t)
}

func TestProgressService_GetUserAttempts_ByCategory(t *testing.T) {
	// Arrange
	mockAttemptRepo := new(MockAttemptRepoForUserService)
	svc := createTestProgressService(mockAttemptRepo)

	mockAttemptRepo.On("GetUserAttemptsByCategory", uint(1), "intervals", 10, 5).
		Return([]entity.ExerciseAttempt{}, int64(0), nil)

	// Act
	_, _, err := svc.GetUserAttempts(1, "intervals", 10, 5)

	// Assert
	require.NoError(t, err)
	mockAttemptRepo.AssertExpectations(t)
}

func TestProgressService_GetUserAttempts_InvalidCategory(t *testing.T) {
	// Arrange
	mockAttemptRepo := new(MockAttemptRepoForUserService)
	svc := createTestProgressService(mockAttemptRepo)

	// Act
	_, _, err := svc.GetUserAttempts(1, "mixing", 20, 0)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockAttemptRepo.AssertNotCalled(t, "GetUserAttemptsByCategory",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProgressService_GetUserAttempts_ClampsLimit(t *testing.T) {
	// Arrange: limit=0 и отрицательное смещение нормализуются до 20/0
	mockAttemptRepo := new(MockAttemptRepoForUserService)
	svc := createTestProgressService(mockAttemptRepo)

	mockAttemptRepo.On("GetUserAttempts", uint(1), 20, 0).
		Return([]entity.ExerciseAttempt{}, int64(0), nil)

	// Act
	_, _, err := svc.GetUserAttempts(1, "", 0, -10)

	// Assert
	require.NoError(t, err)
	mockAttemptRepo.AssertExpectations(t)
}

func TestProgressService_Submit_InvalidInput(t *testing.T) {
	// Arrange
	svc := createTestProgressService(new(MockAttemptRepoForUserService))

	testCases := []struct {
		name  string
		input SubmitInput
	}{
		{
			name:  "неизвестная категория",
			input: SubmitInput{Category: "mixing", Difficulty: "easy"},
		},
		{
			name:  "неизвестная сложность",
			input: SubmitInput{Category: "guess-note", Difficulty: "insane"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			_, err := svc.Submit(1, tc.input)

			// Assert
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestProgressService_Submit_CorrectAnswer(t *testing.T) {
	// Arrange: пользователь с серией 4; верный ответ доводит её до 5,
	// где множитель монет переключается с x1 на x2
	db, dbMock := newTransactionTestDB(t)

	mockTypeRepo := new(MockExerciseTypeRepoForProgressService)
	mockTypeRepo.On("GetByCategory", "guess-note").Return(&entity.ExerciseType{
		ID:           3,
		Category:     "guess-note",
		PointsEasy:   10,
		PointsMedium: 20,
		PointsHard:   35,
	}, nil)

	var savedAttempt *entity.ExerciseAttempt
	mockAttemptRepo := new(MockAttemptRepoForUserService)
	mockAttemptRepo.On("SaveTx", mock.Anything, mock.AnythingOfType("*entity.ExerciseAttempt")).
		Run(func(args mock.Arguments) {
			savedAttempt = args.Get(1).(*entity.ExerciseAttempt)
			savedAttempt.ID = 99
		}).
		Return(nil)

	mockScoreRepo := new(MockScoreRepoForUserService)
	mockScoreRepo.On("UpsertIfHigher", mock.Anything, uint(42), "guess-note", "easy", 20).
		Return(true, nil)

	notifier := &statsNotifierRecorder{}

	svc := &ProgressService{
		db:          db,
		attemptRepo: mockAttemptRepo,
		scoreRepo:   mockScoreRepo,
		typeRepo:    mockTypeRepo,
		notifier:    notifier,
	}

	userColumns := []string{
		"id", "username", "email", "password",
		"coins", "total_score", "current_streak", "longest_streak", "total_exercises_completed",
	}
	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, "mozart_fan", "fan@example.com", "$2a$10$already.hashed", 100, 200, 4, 6, 30))
	dbMock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	// Act
	result, err := svc.Submit(42, SubmitInput{
		Category:      "guess-note",
		Difficulty:    "easy",
		IsCorrect:     true,
		UserAnswer:    "C4",
		CorrectAnswer: "C4",
		TimeTakenSec:  12,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(99), result.AttemptID)
	assert.Equal(t, int64(20), result.PointsEarned, "10 базовых очков x2 за серию из 5")
	assert.Equal(t, 2, result.StreakMultiplier, "Порог множителя - ровно 5 подряд")
	assert.True(t, result.NewHighScore)
	assert.Equal(t, int64(220), result.UserStats.TotalScore)
	assert.Equal(t, int64(120), result.UserStats.Coins)
	assert.Equal(t, 5, result.UserStats.CurrentStreak)
	assert.Equal(t, 6, result.UserStats.LongestStreak)
	assert.Equal(t, int64(31), result.UserStats.TotalExercisesCompleted)

	require.NotNil(t, savedAttempt)
	assert.Equal(t, 100.0, savedAttempt.Accuracy, "Нулевая точность верного ответа записывается как 100")
	assert.Equal(t, 10, savedAttempt.MaxPoints)
	assert.Equal(t, 20, savedAttempt.PointsEarned)

	assert.Equal(t, []string{"stats:updated", "score:highscore"}, notifier.events)

	require.NoError(t, dbMock.ExpectationsWereMet())
	mockAttemptRepo.AssertExpectations(t)
	mockScoreRepo.AssertExpectations(t)
}

func TestProgressService_Submit_IncorrectAnswerResetsStreak(t *testing.T) {
	// Arrange
	db, dbMock := newTransactionTestDB(t)

	mockTypeRepo := new(MockExerciseTypeRepoForProgressService)
	mockTypeRepo.On("GetByCategory", "panning").Return(&entity.ExerciseType{
		ID:         4,
		Category:   "panning",
		PointsEasy: 10,
	}, nil)

	mockAttemptRepo := new(MockAttemptRepoForUserService)
	mockAttemptRepo.On("SaveTx", mock.Anything, mock.AnythingOfType("*entity.ExerciseAttempt")).
		Return(nil)

	mockScoreRepo := new(MockScoreRepoForUserService)

	svc := &ProgressService{
		db:          db,
		attemptRepo: mockAttemptRepo,
		scoreRepo:   mockScoreRepo,
		typeRepo:    mockTypeRepo,
	}

	userColumns := []string{
		"id", "username", "email", "password",
		"coins", "total_score", "current_streak", "longest_streak", "total_exercises_completed",
	}
	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, "mozart_fan", "fan@example.com", "$2a$10$already.hashed", 100, 200, 3, 6, 30))
	dbMock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	// Act
	result, err := svc.Submit(42, SubmitInput{
		Category:   "panning",
		Difficulty: "easy",
		IsCorrect:  false,
		UserAnswer: "0.5",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.PointsEarned, "Неверный ответ не приносит очков")
	assert.False(t, result.NewHighScore)
	assert.Equal(t, 0, result.UserStats.CurrentStreak, "Серия обнуляется")
	assert.Equal(t, 6, result.UserStats.LongestStreak, "Лучшая серия сохраняется")
	assert.Equal(t, int64(200), result.UserStats.TotalScore)
	assert.Equal(t, int64(31), result.UserStats.TotalExercisesCompleted)

	mockScoreRepo.AssertNotCalled(t, "UpsertIfHigher",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, dbMock.ExpectationsWereMet())
}

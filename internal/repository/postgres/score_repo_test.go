package postgres

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ============================================================================
// Тесты для ScoreRepo
// ============================================================================

func newScoreTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return db, dbMock
}

// Шаблон upsert-запроса: конфликт по (user_id, category, difficulty),
// обновление только при строго большем результате
const upsertPattern = `INSERT INTO "scores" .*ON CONFLICT \("user_id","category","difficulty"\) DO UPDATE SET .*WHERE scores\.high_score < EXCLUDED\.high_score.*RETURNING "id"`

func TestScoreRepo_UpsertIfHigher_HigherScoreUpdates(t *testing.T) {
	// Arrange: RETURNING возвращает строку - запись создана или обновлена
	db, dbMock := newScoreTestDB(t)
	repo := NewScoreRepo(db)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(upsertPattern).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	dbMock.ExpectCommit()

	// Act
	updated, err := repo.UpsertIfHigher(nil, 42, "panning", "easy", 85)

	// Assert
	require.NoError(t, err)
	assert.True(t, updated, "85 > 80: рекорд обновлён")
	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestScoreRepo_UpsertIfHigher_LowerScoreKeepsRecord(t *testing.T) {
	// Arrange: условие WHERE не прошло, RETURNING пуст - рекорд не тронут
	db, dbMock := newScoreTestDB(t)
	repo := NewScoreRepo(db)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(upsertPattern).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	dbMock.ExpectCommit()

	// Act
	updated, err := repo.UpsertIfHigher(nil, 42, "panning", "easy", 75)

	// Assert
	require.NoError(t, err)
	assert.False(t, updated, "75 < 80: прежний рекорд сохраняется")
	require.NoError(t, dbMock.ExpectationsWereMet())
}

package postgres

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newTestDB открывает SQLite в памяти со схемой из сущностей.
// Внешние ключи SQLite выключены: каскад проверяется кодом репозиториев, а не базой.
// Каждый вызов NowFunc сдвигает часы на час, чтобы created_at разных записей различались.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	clock := testEpoch
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			clock = clock.Add(time.Hour)
			return clock
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Каждое соединение к :memory: получает свою базу
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Tag{},
		&entity.Quiz{},
		&entity.Question{},
		&entity.Answer{},
		&entity.Participant{},
		&entity.Feedback{},
	))
	return db
}

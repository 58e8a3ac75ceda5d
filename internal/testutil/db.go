// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/database"
	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a migrated in-memory SQLite database private to t
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// CreateQuote inserts a quote with sensible defaults; mutate adjusts fields
// before insert
func CreateQuote(t *testing.T, db *gorm.DB, mutate func(q *domain.Quote)) *domain.Quote {
	t.Helper()

	q := &domain.Quote{
		Name:       "Jamie",
		Email:      "jamie@x.test",
		State:      domain.QuoteStateSubmitted,
		EventType:  Ptr("Birthday Party"),
		StartTime:  Ptr("10:00"),
		EndTime:    Ptr("13:00"),
		TotalHours: Ptr(3.0),
	}
	if mutate != nil {
		mutate(q)
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

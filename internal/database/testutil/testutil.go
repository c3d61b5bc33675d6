// Package testutil provides shared test utilities for settings-store
// integration tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lucsky/cuid"
	"github.com/nightforge/lumen/internal/database/models"
	"github.com/nightforge/lumen/internal/database/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB holds an in-memory database and its repositories.
type TestDB struct {
	DB          *gorm.DB
	SettingRepo *repositories.SettingRepository
}

// SetupTestDB creates an in-memory SQLite database for testing. It
// returns a TestDB with all repositories initialized and a cleanup
// function.
func SetupTestDB(t *testing.T) (*TestDB, func()) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	testDB := &TestDB{
		DB:          db,
		SettingRepo: repositories.NewSettingRepository(db),
	}

	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}

	return testDB, cleanup
}

// UniqueKey generates a unique setting key for testing.
func UniqueKey(prefix string) string {
	return prefix + "-" + cuid.New()[:8]
}

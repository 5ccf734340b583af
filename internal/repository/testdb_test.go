package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shelter-caller/internal/model"
)

// setupTestDB 内存 SQLite，开启外键以覆盖级联删除与外键冲突
func setupTestDB(t *testing.T) (*gorm.DB, *Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 单连接，保证所有查询落在同一个内存库
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Shelter{},
		&model.Count{},
		&model.Log{},
		&model.Preference{},
		&model.Role{},
		&model.User{},
	))

	return db, NewRepository(db, zap.NewNop())
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

package cstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"linkforge/pkg/core"
	"linkforge/pkg/types"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestRepo 构建隔离的测试环境 (每个测试一个内存库)
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := NewWithConn(db)
	require.NoError(t, store.AutoMigrate(&Unit{}))
	return NewRepository(store)
}

// mustRecord 写入一个单元，失败则终止
func mustRecord(t *testing.T, repo *Repository, name, vers string, hash types.MetaHash, path string, linkedAt time.Time, linkArgs ...string) *Unit {
	t.Helper()
	u, err := NewUnit(core.NewLinkIdentity(name, vers, hash), KindShared, path, linkArgs, nil)
	require.NoError(t, err)
	u.LinkedAt = linkedAt
	require.NoError(t, repo.RecordUnit(context.Background(), u))
	return u
}

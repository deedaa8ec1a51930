package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ordersync/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(database.DriverSQLite, filepath.Join(t.TempDir(), "ordersync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(context.Background(), db) })
	require.NoError(t, database.InitSchema(db))
	return db
}

package checkpoint

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPebbleCheckpoint_SaveLoad(t *testing.T) {
	dir := t.TempDir()

	cp, err := Open(dir)
	require.NoError(t, err)

	_, ok, err := cp.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cp.Save(5_600_000_001))
	require.NoError(t, cp.Save(5_600_000_042))
	require.NoError(t, cp.Close())

	cp, err = Open(dir)
	require.NoError(t, err)
	defer cp.Close()

	id, ok, err := cp.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5_600_000_042), id)
}

func TestPebbleCheckpoint_CorruptValue(t *testing.T) {
	cp, err := Open(t.TempDir())
	require.NoError(t, err)
	defer cp.Close()

	require.NoError(t, cp.db.Set(cursorKey, []byte("oops"), pebble.Sync))
	_, _, err = cp.Load()
	require.Error(t, err)
}

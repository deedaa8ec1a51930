package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

var cursorKey = []byte("cursor/orders")

// PebbleCheckpoint keeps the highest fully reconciled order ID on local disk.
// It implements reconcile.Checkpoint.
type PebbleCheckpoint struct {
	db *pebble.DB
}

func Open(dir string) (*PebbleCheckpoint, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleCheckpoint{db: d}, nil
}

func (p *PebbleCheckpoint) Close() error { return p.db.Close() }

// Load reports false when no cursor has been saved yet.
func (p *PebbleCheckpoint) Load() (int64, bool, error) {
	v, closer, err := p.db.Get(cursorKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load cursor: %w", err)
	}
	defer closer.Close()

	if len(v) != 8 {
		return 0, false, fmt.Errorf("load cursor: corrupt value of %d bytes", len(v))
	}
	return int64(binary.BigEndian.Uint64(v)), true, nil
}

func (p *PebbleCheckpoint) Save(id int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	if err := p.db.Set(cursorKey, buf[:], pebble.Sync); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

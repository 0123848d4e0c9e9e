// Package snapshot persists the state an incremental call needs to reuse
// across process invocations: the lattice, its stats, the top-k, and the
// params/offsets that produced them (spec.md §4.4, §6, §9's note that
// incremental reuse only helps across separate invocations of the engine).
//
// Grounded on the teacher's utils/storage_utils/storage_util.go, which
// persists per-table intermediate state (column PLIs, decision trees) through
// gorm against a local database so a later run can pick up where the last
// one left off. Here the payload is the lattice/stats/top-k triple instead,
// serialized with github.com/vmihailenco/msgpack/v5 (the teacher's own
// encoding for the same utils/storage_utils blobs) into a single BLOB column
// under gorm.io/driver/sqlite, keyed by a caller-supplied run tag so distinct
// models/datasets don't collide in one store.
package snapshot

import (
	"github.com/vmihailenco/msgpack/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gitlab.grandhoo.com/rock/slicelattice/engine"
	"gitlab.grandhoo.com/rock/slicelattice/internal/lattice"
	"gitlab.grandhoo.com/rock/slicelattice/internal/matrixint"
	"gitlab.grandhoo.com/rock/slicelattice/internal/onehot"
)

// record is the gorm row: one snapshot per tag, overwritten on every Save.
type record struct {
	Tag     string `gorm:"primaryKey"`
	Payload []byte
}

func (record) TableName() string { return "slice_snapshots" }

// State is everything an incremental Run call needs from a prior one: the
// combined dataset so far (to become the next call's oldX/oldE), the one-hot
// offsets that dataset was encoded with, and the lattice/stats/top-k it
// produced.
type State struct {
	Offsets onehot.Offsets
	OldX    matrixint.Matrix
	OldE    matrixint.ErrVec
	Lattice lattice.Lattice
	Stats   lattice.StatsList
	TK      lattice.TopK
	Params  engine.Params
}

// wireState mirrors State field-for-field; msgpack needs exported fields
// with no interface/pointer members it can't resolve, and lattice.Slice's
// *bitset.BitSet already implements encoding.BinaryMarshaler so it round
// trips without a custom codec.
type wireState struct {
	Offsets onehot.Offsets
	OldX    matrixint.Matrix
	OldE    matrixint.ErrVec
	Lattice lattice.Lattice
	Stats   lattice.StatsList
	TK      lattice.TopK
	Params  engine.Params
}

// Store wraps a gorm/sqlite handle opened against a single local database
// file, auto-migrating the snapshot table on Open.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if absent) a sqlite-backed snapshot store at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save serializes state as msgpack and upserts it under tag.
func (s *Store) Save(tag string, state State) error {
	payload, err := msgpack.Marshal(wireState(state))
	if err != nil {
		return err
	}
	return s.db.Save(&record{Tag: tag, Payload: payload}).Error
}

// Load fetches and deserializes the snapshot for tag. ok is false when no
// snapshot has been saved under that tag yet — the caller's first, non-
// incremental Run.
func (s *Store) Load(tag string) (state State, ok bool, err error) {
	var rec record
	res := s.db.First(&rec, "tag = ?", tag)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return State{}, false, nil
		}
		return State{}, false, res.Error
	}
	var w wireState
	if err := msgpack.Unmarshal(rec.Payload, &w); err != nil {
		return State{}, false, err
	}
	return State(w), true, nil
}

// Delete removes any snapshot saved under tag, e.g. when a caller wants to
// force a fresh, non-incremental run.
func (s *Store) Delete(tag string) error {
	return s.db.Delete(&record{}, "tag = ?", tag).Error
}

package database

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	pkgerrors "github.com/pkg/errors"
)

// SchemaVersion is written into every persisted snapshot so that future
// schema changes can be migrated instead of guessed at.
const SchemaVersion = 1

// Storage keys for the two independent snapshots. The values match the
// keys the mobile app persisted under, so an exported device snapshot can
// be imported as-is.
const (
	InventoryKey = "beverage-storage"
	SettingsKey  = "settings-storage"
)

// Snapshot is one durable record: a wholesale JSON serialization of a
// store's state, keyed under a fixed identifier.
type Snapshot struct {
	Key       string `gorm:"primary_key"`
	Payload   string `gorm:"type:text"`
	UpdatedAt time.Time
}

type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	State         json.RawMessage `json:"state"`
}

// Store wraps the SQLite database holding the persisted snapshots.
type Store struct {
	db *gorm.DB
}

// Open initializes the database connection and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, pkgerrors.Wrap(err, "create database directory")
		}
	}

	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open sqlite database")
	}
	if err := db.AutoMigrate(&Snapshot{}).Error; err != nil {
		db.Close()
		return nil, pkgerrors.Wrap(err, "migrate snapshot schema")
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save overwrites the snapshot stored under key with a wholesale
// serialization of state.
func (s *Store) Save(key string, state interface{}) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal snapshot state")
	}
	payload, err := json.Marshal(envelope{SchemaVersion: SchemaVersion, State: raw})
	if err != nil {
		return pkgerrors.Wrap(err, "marshal snapshot envelope")
	}

	var snap Snapshot
	err = s.db.Where(Snapshot{Key: key}).First(&snap).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		snap = Snapshot{Key: key, Payload: string(payload), UpdatedAt: time.Now()}
		if err := s.db.Create(&snap).Error; err != nil {
			return pkgerrors.Wrapf(err, "create snapshot %q", key)
		}
	case err != nil:
		return pkgerrors.Wrapf(err, "look up snapshot %q", key)
	default:
		updates := map[string]interface{}{"payload": string(payload), "updated_at": time.Now()}
		if err := s.db.Model(&snap).Updates(updates).Error; err != nil {
			return pkgerrors.Wrapf(err, "update snapshot %q", key)
		}
	}
	return nil
}

// Load reads the snapshot stored under key into out. It returns false with
// a nil error when no snapshot has been written yet.
func (s *Store) Load(key string, out interface{}) (bool, error) {
	var snap Snapshot
	err := s.db.Where(Snapshot{Key: key}).First(&snap).Error
	if gorm.IsRecordNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrapf(err, "look up snapshot %q", key)
	}

	var env envelope
	if err := json.Unmarshal([]byte(snap.Payload), &env); err != nil {
		return false, pkgerrors.Wrapf(err, "decode snapshot %q", key)
	}
	if env.SchemaVersion != SchemaVersion {
		return false, pkgerrors.Errorf("snapshot %q has schema version %d, want %d", key, env.SchemaVersion, SchemaVersion)
	}
	if err := json.Unmarshal(env.State, out); err != nil {
		return false, pkgerrors.Wrapf(err, "decode snapshot state %q", key)
	}
	return true, nil
}

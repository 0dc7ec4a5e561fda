package snapshot

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/veloxmarkets/lobcore/pkg/conn"
)

// row is the gorm model backing the Postgres snapshot store: one row
// per (engine) snapshot, exposures and levels kept as JSON blobs since
// neither needs to be queried relationally — only the latest row per
// engine is ever read back.
type row struct {
	ID          uint   `gorm:"primaryKey"`
	Engine      string `gorm:"index;not null"`
	Timestamp   int64
	LastSeq     uint64
	LastEventTs int64
	Exposures   []byte
	Levels      []byte
	CreatedAt   time.Time
}

func (row) TableName() string { return "lobcore_snapshots" }

// PostgresStore persists Snapshot values to PostgreSQL via gorm, as an
// alternative to the JSON-file store for deployments that already run
// a shared Postgres instance for operational state.
type PostgresStore struct {
	client *conn.Client
	engine string
}

// NewPostgresStore opens a store scoped to engine (a free-form label
// distinguishing multiple engines sharing one database, e.g. a
// symbol-shard name) and ensures its backing table exists.
func NewPostgresStore(client *conn.Client, engine string) (*PostgresStore, error) {
	db := client.DB()
	if err := db.AutoMigrate(&row{}); err != nil {
		return nil, err
	}
	return &PostgresStore{client: client, engine: engine}, nil
}

// Write inserts a new snapshot row for this store's engine.
func (s *PostgresStore) Write(snap Snapshot) error {
	exposures, err := json.Marshal(snap.Exposures)
	if err != nil {
		return err
	}
	levels, err := json.Marshal(snap.Levels)
	if err != nil {
		return err
	}
	r := row{
		Engine:      s.engine,
		Timestamp:   snap.Timestamp,
		LastSeq:     snap.LastSeq,
		LastEventTs: snap.LastEventTs,
		Exposures:   exposures,
		Levels:      levels,
	}
	return s.client.DB().Create(&r).Error
}

// Latest loads the most recently written snapshot for this store's
// engine. It returns (Snapshot{}, gorm.ErrRecordNotFound) when none
// exists yet.
func (s *PostgresStore) Latest() (Snapshot, error) {
	var r row
	err := s.client.DB().
		Where("engine = ?", s.engine).
		Order("id desc").
		Limit(1).
		First(&r).Error
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	snap.Timestamp = r.Timestamp
	snap.LastSeq = r.LastSeq
	snap.LastEventTs = r.LastEventTs
	if err := json.Unmarshal(r.Exposures, &snap.Exposures); err != nil {
		return Snapshot{}, err
	}
	if err := json.Unmarshal(r.Levels, &snap.Levels); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// IsNotFound reports whether err is the gorm not-found sentinel, so
// callers can fall back to an empty Snapshot on first boot.
func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

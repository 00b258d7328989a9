package storage

import (
	"os"

	"github.com/paulwritescode/minidb/internal/types"
)

// PersistenceConfig selects the persistence facilities a front end wants:
// a JSON snapshot file, an optional Parquet archive directory, and whether
// to snapshot automatically after every write.
type PersistenceConfig struct {
	SnapshotPath string
	Autosave     bool
	ArchiveDir   string
}

// Persistence bundles the snapshot store and archive for a database.
type Persistence struct {
	cfg     PersistenceConfig
	archive *Archive
}

// NewPersistence builds the persistence bundle for the given configuration.
func NewPersistence(cfg PersistenceConfig) (*Persistence, error) {
	p := &Persistence{cfg: cfg}
	if cfg.ArchiveDir != "" {
		a, err := NewArchive(cfg.ArchiveDir)
		if err != nil {
			return nil, err
		}
		p.archive = a
	}
	return p, nil
}

// SnapshotPath returns the configured snapshot file path.
func (p *Persistence) SnapshotPath() string {
	return p.cfg.SnapshotPath
}

// LoadSnapshot restores db from the configured snapshot if one exists. A
// missing file is not an error; the database simply starts empty.
func (p *Persistence) LoadSnapshot(db *Database) error {
	if p.cfg.SnapshotPath == "" {
		return nil
	}
	if _, err := os.Stat(p.cfg.SnapshotPath); os.IsNotExist(err) {
		return nil
	}
	return db.Load(p.cfg.SnapshotPath)
}

// SaveSnapshot writes db to the configured snapshot path.
func (p *Persistence) SaveSnapshot(db *Database) error {
	if p.cfg.SnapshotPath == "" {
		return types.NewPersistenceError("no snapshot path configured")
	}
	return db.Save(p.cfg.SnapshotPath)
}

// AfterWrite snapshots the database when autosave is configured. Called by
// front ends after each successful mutation.
func (p *Persistence) AfterWrite(db *Database) error {
	if !p.cfg.Autosave || p.cfg.SnapshotPath == "" {
		return nil
	}
	return db.Save(p.cfg.SnapshotPath)
}

// Archive returns the configured archive, or nil when none is set up.
func (p *Persistence) Archive() *Archive {
	return p.archive
}

// ExportArchive writes every table to the archive.
func (p *Persistence) ExportArchive(db *Database) error {
	if p.archive == nil {
		return types.NewPersistenceError("no archive directory configured")
	}
	return p.archive.ExportAll(db)
}

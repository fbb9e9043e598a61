// Package store persists collected signature bundles and execution receipts
// in a local sqlite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// DBFile is the database file name created under the data directory.
const DBFile = "safesig.db"

// DB owns the sqlite handle shared by the bundle and receipt stores.
type DB struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the database under dataDir/safesig.db.
func Open(dataDir string, logger *zap.Logger) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return OpenDSN(filepath.Join(dataDir, DBFile), logger)
}

// OpenDSN opens (or creates) a database using the given sqlite DSN/path.
// Tests may pass ":memory:" to avoid touching disk.
func OpenDSN(dsn string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}
	// A ":memory:" database exists per connection.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("opened store", zap.String("dsn", dsn))
	return &DB{db: db, logger: logger}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS receipts (
	chain TEXT NOT NULL,
	tx_hash TEXT NOT NULL,
	safe_tx_hash TEXT,
	status INTEGER,
	gas_used INTEGER,
	raw_json TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (chain, tx_hash)
);
CREATE INDEX IF NOT EXISTS receipts_safe_tx ON receipts (chain, safe_tx_hash);
CREATE TABLE IF NOT EXISTS bundles (
	chain_id TEXT NOT NULL,
	safe TEXT NOT NULL,
	safe_tx_hash TEXT NOT NULL,
	signatures TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (chain_id, safe, safe_tx_hash)
);
`)
	if err != nil {
		return fmt.Errorf("create store tables: %w", err)
	}
	return nil
}

// Bundles returns the signature bundle store.
func (d *DB) Bundles() *BundleStore {
	return &BundleStore{db: d.db, logger: d.logger.Named("bundles")}
}

// Receipts returns the receipt store.
func (d *DB) Receipts() *ReceiptStore {
	return &ReceiptStore{db: d.db, logger: d.logger.Named("receipts")}
}

// Close closes the underlying DB.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

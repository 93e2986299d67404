package orchestrator

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/kraklabs/codeintel/internal/cxerr"
	"github.com/kraklabs/codeintel/internal/storage"
)

// OpenDatabase opens the backing SQLite database referenced by a
// DATABASE_URL-style connection string, stripping a "sqlite://" or
// "file:" scheme prefix if present, and ensures schema (a failed
// migration is a fatal MigrationFailure). Exported so CLI commands
// that only query (rather than index) can open the same store
// without running a pipeline.
func OpenDatabase(databaseURL string) (*sql.DB, error) {
	return openDatabase(databaseURL)
}

func openDatabase(databaseURL string) (*sql.DB, error) {
	path := databaseURL
	for _, prefix := range []string{"sqlite://", "file:", "sqlite:"} {
		path = strings.TrimPrefix(path, prefix)
	}

	storage.InitVectorExtension()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, cxerr.Wrap(cxerr.MigrationFailure, fmt.Errorf("open database: %w", err))
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, cxerr.Wrap(cxerr.MigrationFailure, fmt.Errorf("enable foreign keys: %w", err))
	}

	version, err := storage.GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, cxerr.Wrap(cxerr.MigrationFailure, fmt.Errorf("check schema version: %w", err))
	}
	if version == "0" {
		if err := storage.CreateSchema(db); err != nil {
			db.Close()
			return nil, cxerr.Wrap(cxerr.MigrationFailure, fmt.Errorf("create schema: %w", err))
		}
	}

	return db, nil
}

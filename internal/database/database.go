package database

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// Backend names the kind of store a connection string points at.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendMongo  Backend = "mongo"
)

// DetectBackend picks the store from the connection string: MongoDB URIs select
// the document store, anything else is treated as a SQLite file path.
func DetectBackend(url string) Backend {
	if strings.HasPrefix(url, "mongodb://") || strings.HasPrefix(url, "mongodb+srv://") {
		return BackendMongo
	}
	return BackendSQLite
}

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dataSourceName, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", dataSourceName+sep+"_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		description TEXT NOT NULL,
		duration REAL NOT NULL,
		date TEXT NOT NULL, -- YYYY-MM-DD
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_exercises_user_date ON exercises(user_id, date);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		user_id TEXT,
		created_at TEXT NOT NULL -- fixed-width UTC timestamp, sorts lexically
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}

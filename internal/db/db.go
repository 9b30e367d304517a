// Package db locates and opens the SQLite file that backs a taskdesk workspace.
package db

import (
	"database/sql"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	// StateDir holds everything taskdesk writes inside a workspace.
	StateDir = ".taskdesk"
	// DBFile is the key-value database inside StateDir.
	DBFile = "taskdesk.db"
)

// pragmas applied to every connection. The store rewrites whole collections per save, so a
// second process waits on the lock instead of failing with SQLITE_BUSY.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

type Config struct {
	Workspace string
}

func stateDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, StateDir)
}

// EnsureWorkspace makes sure <workspace>/.taskdesk exists and returns its path. An empty
// workspace means the current directory. Existing state is left untouched, so td init is
// safe to run twice.
func EnsureWorkspace(workspace string) (string, error) {
	dir := stateDir(workspace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// DSN builds the modernc sqlite connection string for path.
func DSN(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens the workspace database, creating the state directory first. The pool is
// capped at one connection: every write replaces a full collection value.
func Open(cfg Config) (*sql.DB, error) {
	if _, err := EnsureWorkspace(cfg.Workspace); err != nil {
		return nil, err
	}
	conn, err := sql.Open("sqlite", DSN(Path(cfg.Workspace)))
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

// Path returns the database file for workspace.
func Path(workspace string) string {
	return filepath.Join(stateDir(workspace), DBFile)
}

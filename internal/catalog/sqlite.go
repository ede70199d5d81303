package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"spd/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteCatalog reads song ids from a profile's catalog database. The
// connection is read-only: restores must never mutate the catalog.
type SqliteCatalog struct {
	conn *sql.DB
}

func Open(path string) (*SqliteCatalog, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: catalog database %s", models.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: stat catalog database: %s", models.ErrIO, err)
	}

	connString := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	conn, err := sql.Open("sqlite3", connString)
	if err != nil {
		return nil, fmt.Errorf("%w: open catalog database: %s", models.ErrIO, err)
	}

	// Single reader is plenty for existence checks.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: ping catalog database: %s", models.ErrIO, err)
	}

	return &SqliteCatalog{conn: conn}, nil
}

func (c *SqliteCatalog) HasSong(id string) (bool, error) {
	var one int
	err := c.conn.QueryRow("SELECT 1 FROM songs WHERE id = ? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: catalog lookup: %s", models.ErrIO, err)
	}
	return true, nil
}

func (c *SqliteCatalog) Close() error {
	return c.conn.Close()
}

// Package database owns connection bootstrap and the small amount of
// cross-driver SQL compatibility glue. Queries elsewhere are written with
// PostgreSQL placeholders and converted for MySQL at execution time.
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var (
	driverMu     sync.RWMutex
	activeDriver = "postgres"
)

// SetDriver records the active driver name ("postgres" or "mysql") so
// placeholder conversion knows what dialect is in play.
func SetDriver(name string) {
	driverMu.Lock()
	activeDriver = strings.ToLower(name)
	driverMu.Unlock()
}

// Driver returns the active driver name.
func Driver() string {
	driverMu.RLock()
	defer driverMu.RUnlock()
	return activeDriver
}

// IsMySQL reports whether the active driver speaks MySQL placeholders.
func IsMySQL() bool {
	d := Driver()
	return d == "mysql" || d == "mariadb"
}

// Connect opens and pings a connection for the given driver and DSN.
func Connect(driver, dsn string) (*sql.DB, error) {
	dbx, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	db := dbx.DB
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	SetDriver(driver)
	return db, nil
}

// ConvertPlaceholders rewrites $1, $2, ... placeholders to ? for MySQL.
// PostgreSQL queries pass through untouched.
func ConvertPlaceholders(query string) string {
	if !IsMySQL() {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '1' && query[i+1] <= '9' {
			b.WriteByte('?')
			i++
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type Driver string

const (
	Postgres Driver = "postgres"
	SQLite   Driver = "sqlite"
)

// DB is a connection pool that remembers which SQL dialect it speaks.
type DB struct {
	*sql.DB
	Driver Driver
}

func Connect(ctx context.Context, driver Driver, dsn string) (*DB, error) {
	switch driver {
	case Postgres, SQLite:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	conn, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, err
	}

	if driver == SQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(20)
		conn.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{DB: conn, Driver: driver}, nil
}

// Rebind rewrites "?" placeholders into the driver's native form.
// Queries are written once with "?" and never contain a literal question
// mark.
func Rebind(driver Driver, query string) string {
	if driver != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

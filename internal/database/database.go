package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DefaultDSN is used when DB_DSN is not set.
const DefaultDSN = "root@tcp(127.0.0.1:3306)/closetline?parseTime=true&loc=UTC"

// OpenDB creates and configures a MySQL connection pool for the given DSN.
// parseTime is forced on so DATETIME columns scan into time.Time, and
// clientFoundRows so UPDATE reports matched rather than changed rows.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	// 1. Normalise the DSN
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true

	// 2. Open a new connection pool
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)

	// 3. Configure the connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 4. Ping the database to verify the connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to mysql at %s: %w", cfg.Addr, err)
	}

	slog.Info("database connection pool established", "driver", "mysql", "addr", cfg.Addr, "db", cfg.DBName)
	return db, nil
}

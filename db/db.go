package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/padraicbc/feedlog/models"
)

// Backend identifies which SQL dialect a DSN selects.
type Backend string

const (
	Postgres Backend = "postgres"
	MySQL    Backend = "mysql"
	SQLite   Backend = "sqlite"
)

// BackendFor picks the backend from the DSN scheme. Anything that is not
// postgres:// or mysql:// is handed to SQLite unchanged.
func BackendFor(dsn string) Backend {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return Postgres
	case strings.HasPrefix(lower, "mysql://"):
		return MySQL
	default:
		return SQLite
	}
}

// Open connects to the database named by dsn and pings it.
func Open(ctx context.Context, dsn string, debug bool) (*bun.DB, error) {
	var db *bun.DB

	switch BackendFor(dsn) {
	case Postgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case MySQL:
		mcfg, err := mysql.ParseDSN(dsn[len("mysql://"):])
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		mcfg.ParseTime = true
		mcfg.Loc = time.UTC
		// RowsAffected must count matched rows so unchanged updates are not "not found".
		mcfg.ClientFoundRows = true
		conn, err := mysql.NewConnector(mcfg)
		if err != nil {
			return nil, fmt.Errorf("mysql connector: %w", err)
		}
		db = bun.NewDB(sql.OpenDB(conn), mysqldialect.New())
	default:
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// A single connection serialises writers and keeps :memory: databases
		// shared across queries.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db bun.IDB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Session)(nil),
		(*models.Feeding)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		model  interface{}
		name   string
		column string
	}{
		{(*models.Feeding)(nil), "feedings_timestamp_idx", "timestamp"},
		{(*models.Session)(nil), "sessions_user_id_idx", "user_id"},
	}
	for _, ix := range indexes {
		_, err := db.NewCreateIndex().Model(ix.model).
			Index(ix.name).
			Column(ix.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			// MySQL has no IF NOT EXISTS for indexes; a second run lands here.
			zap.L().Warn("create index", zap.String("index", ix.name), zap.Error(err))
		}
	}

	return nil
}

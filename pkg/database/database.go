package database

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/roomplan-api/pkg/config"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Open returns a configured client for the driver selected in cfg.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, DSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// DSN renders the connection string for the configured driver.
func DSN(cfg config.DatabaseConfig) string {
	if cfg.Driver == config.DriverMySQL {
		auth := cfg.User
		if cfg.Password != "" {
			auth = fmt.Sprintf("%s:%s", cfg.User, cfg.Password)
		}
		// parseTime maps DATETIME to time.Time; loc=UTC keeps stored instants normalized.
		return fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, cfg.Host, cfg.Port, cfg.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s timezone=UTC",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// Migrate applies the bundled schema for the connection's driver. Statements are idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements, err := SchemaStatements(db.DriverName())
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SchemaStatements returns the individual DDL statements for a driver.
func SchemaStatements(driver string) ([]string, error) {
	name := "schema/postgres.sql"
	if driver == config.DriverMySQL {
		name = "schema/mysql.sql"
	}
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}

	parts := strings.Split(string(raw), ";\n")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		stmt := strings.TrimSpace(part)
		stmt = strings.TrimSuffix(stmt, ";")
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

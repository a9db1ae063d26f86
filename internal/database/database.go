package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// sqliteParams enables WAL, waits on locks instead of failing and turns on
// foreign key enforcement for every pooled connection. Transactions begin
// IMMEDIATE so the write lock is taken at BEGIN, where the busy timeout
// applies, instead of on the first write after a read.
const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"

type Database struct {
	DB     *gorm.DB
	Driver string
}

func NewDatabase(cfg config.Database) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	if driver == config.DriverSQLite {
		log.Printf("Database initialized successfully at %s", cfg.Path)
	} else {
		log.Printf("Database initialized successfully (%s)", driver)
	}

	return &Database{DB: db, Driver: driver}, nil
}

// Migrate creates or updates every table the catalog needs.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Favorite{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return backfillFoldedTitles(db)
}

// backfillFoldedTitles fills title_folded for rows written before the column
// existed.
func backfillFoldedTitles(db *gorm.DB) error {
	var rows []entities.Book
	err := db.Model(&entities.Book{}).
		Select("id", "title").
		Where("title_folded = ? AND title <> ?", "", "").
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to read titles to fold: %w", err)
	}

	for _, row := range rows {
		err := db.Model(&entities.Book{}).
			Where("id = ?", row.ID).
			Update("title_folded", entities.FoldTitle(row.Title)).Error
		if err != nil {
			return fmt.Errorf("failed to fold title of book %d: %w", row.ID, err)
		}
	}
	if len(rows) > 0 {
		log.Printf("Folded %d book titles for search", len(rows))
	}
	return nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", config.DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("database path is required for sqlite")
		}
		return sqlite.Open(SQLiteDSN(cfg.Path)), nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for postgres")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// SQLiteDSN appends the connection parameters every SQLite handle uses.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + sqliteParams
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// SQLDB exposes the pooled connection for components that speak database/sql.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

// Ping checks the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

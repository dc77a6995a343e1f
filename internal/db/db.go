package db

import (
	"fmt"
	"log"
	"nuncio/internal/models"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured database. Unique-constraint violations are
// translated into gorm.ErrDuplicatedKey so callers can report conflicts, and
// timestamps are written in UTC.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		if dsn == "" {
			// Fallback for local dev if not set
			dsn = "host=localhost user=postgres password=postgres dbname=nuncio port=5432 sslmode=disable TimeZone=UTC"
		}
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		if dsn == "" {
			dsn = "nuncio.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return gdb, nil
}

// Migrate creates or updates every table the forum needs.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Topic{},
		&models.Post{},
		&models.Comment{},
		&models.Upvote{},
		&models.Downvote{},
		&models.Boost{},
	)
}

// Init opens the database and runs migrations, exiting on failure.
func Init(driver, dsn string) *gorm.DB {
	gdb, err := Open(driver, dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connection established")

	if err := Migrate(gdb); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")
	return gdb
}

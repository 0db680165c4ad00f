package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DB is the database used by the backend.
var DB *gorm.DB

// Connect opens the SQLite database, configures the connection pool,
// migrates the schema and seeds the default categories.
func Connect(dsn string) error {
	config := &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: &logger{
			Logger: log.Logger,
		},
	}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// This is done to prevent SQLITE_BUSY errors.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	// Create and update callbacks translate driver errors into errors
	// the rest of the backend can match on
	err = db.Callback().Create().After("*").Register("ledgerbot:after_create", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.Callback().Update().After("*").Register("ledgerbot:after_update", createUpdateCallback)
	if err != nil {
		return err
	}

	err = db.AutoMigrate(Category{}, Transaction{}, Budget{})
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	err = EnsureDefaultCategories(db)
	if err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}

	DB = db
	return nil
}

// isNotFound reports whether an error is gorm's record-not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with ones the backend can match on.
//
// The unique index races happen when two messages for the same sender are
// processed concurrently and both try to create the same category or
// budget row.
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: categories.slug") {
		db.Error = fmt.Errorf("%w: a category with this name already exists", ErrAlreadyExists)
		return
	}

	if strings.Contains(db.Error.Error(), "UNIQUE constraint failed: budgets.category_id, budgets.month") {
		db.Error = fmt.Errorf("%w: a budget for this category and month already exists", ErrAlreadyExists)
		return
	}

	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		// We cannot provide the sender with a helpful message here, log
		// the driver error for the server admin instead
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral
	}
}

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrDatabaseNotConfigured is returned when no connection string was resolved.
var ErrDatabaseNotConfigured = errors.New("database url not configured")

var db *gorm.DB

// InitDatabase connects using the resolved URL and ensures the schema for the
// given models. Schema failures are logged and swallowed; later queries surface
// any real problem.
func InitDatabase(c AppConfig, modelDefs ...interface{}) (*gorm.DB, error) {
	if db != nil {
		return db, nil
	}
	if !c.DatabaseConfigured() {
		return nil, ErrDatabaseNotConfigured
	}

	dialector, err := Dialector(c.DBDriver, c.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Slow-sql threshold raised to keep routine queries out of the log
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(c.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(c.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(c.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	EnsureSchema(conn, modelDefs...)
	copyLegacyAnswers(conn)

	db = conn
	return db, nil
}

// Dialector picks the gorm driver for name; postgres is the default.
func Dialector(name, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(name) {
	case "", "postgres", "postgresql", "pg":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", name)
	}
}

// EnsureSchema creates missing tables and columns. Errors are only logged.
func EnsureSchema(conn *gorm.DB, modelDefs ...interface{}) {
	for _, model := range modelDefs {
		if err := conn.AutoMigrate(model); err != nil {
			log.Printf("schema ensure failed for %T: %v", model, err)
		}
	}
}

// copyLegacyAnswers moves rows from the retired prompt_answers table into
// answers, skipping anything already present.
func copyLegacyAnswers(conn *gorm.DB) {
	if !conn.Migrator().HasTable("prompt_answers") {
		return
	}
	err := conn.Exec(`
		INSERT INTO answers (answerer_name, prompt_owner, prompt_index, source_date_key, date_key, prompt_text, answer_text, created_at, updated_at)
		SELECT answerer_name, prompt_owner, prompt_index, source_date_key, date_key, prompt_text, answer_text, created_at, updated_at
		FROM prompt_answers
		ON CONFLICT (answerer_name, source_date_key, prompt_index) DO NOTHING`).Error
	if err != nil {
		log.Printf("legacy prompt_answers copy skipped: %v", err)
	}
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "info", "", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// DB provides access to the initialized gorm DB instance, nil when none is configured.
func DB() *gorm.DB {
	return db
}

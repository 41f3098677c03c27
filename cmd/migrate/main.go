package main

import (
	"errors"
	"flag"
	"log"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/cppla/gardennotes/config"
)

func main() {
	source := flag.String("source", "file://db/migrations", "migration source url")
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	cfg := config.Load()
	if !cfg.DatabaseConfigured() {
		log.Fatalf("no database url configured. %s", config.DatabaseURLHint)
	}
	if d := strings.ToLower(cfg.DBDriver); d != "" && !strings.HasPrefix(d, "postg") && d != "pg" {
		log.Fatalf("SQL migrations target postgres; driver %q relies on schema auto-migration at startup", cfg.DBDriver)
	}

	m, err := migrate.New(*source, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("migration setup failed: %v", err)
	}

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		closeMigrate(m)
		log.Fatalf("database migration failed: %v", err)
	}

	version, dirty, verr := m.Version()
	closeMigrate(m)
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		log.Println("database migrations applied, no version recorded")
	case verr != nil:
		log.Printf("database migrations applied, version unknown: %v", verr)
	default:
		log.Printf("database migrations applied, version=%d dirty=%v", version, dirty)
	}
}

// closeMigrate releases the source and database handles. log.Fatalf skips
// deferred calls, so callers close before exiting.
func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Printf("close migration source: %v", srcErr)
	}
	if dbErr != nil {
		log.Printf("close migration database: %v", dbErr)
	}
}

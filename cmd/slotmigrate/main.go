// slotmigrate copies save slots from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/slotmigrate \
//	    -sqlite data/saves.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user drpg \
//	    -pg-password drpg \
//	    -pg-database drpg
package main

import (
	"flag"
	"log"

	"github.com/tychio/da-rmmv-plugins/internal/database"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/saves.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "drpg", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "drpg", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "drpg", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be copied without making changes")
	flag.Parse()

	log.Println("Save slot migration: SQLite to PostgreSQL")

	log.Printf("Opening SQLite database: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer src.Close()

	pg := database.DefaultPostgresConfig()
	pg.Host = *pgHost
	pg.Port = *pgPort
	pg.User = *pgUser
	pg.Password = *pgPassword
	pg.Database = *pgDatabase
	pg.SSLMode = *pgSSLMode

	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", pg.User, pg.Host, pg.Port, pg.Database)
	dst, err := database.OpenWithConfig(database.Config{Driver: "postgres", Postgres: pg})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	n, err := database.CopySlots(src, dst, *dryRun)
	if err != nil {
		log.Fatalf("Migration stopped after %d slots: %v", n, err)
	}
	log.Printf("Migration complete! Slots copied: %d", n)
}

// Command createdb bootstraps the database schema and echoes the resulting
// table names. Intended as a one-shot setup step before first run.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/userboard/registration-system/internal/infrastructure/config"
	"github.com/userboard/registration-system/internal/infrastructure/db/postgres"
)

func main() {
	cfg := config.Load()

	db, err := postgres.Connect(context.Background(), postgres.Config{DSN: cfg.Postgres.DSN})
	if err != nil {
		fmt.Fprintf(os.Stderr, "createdb: %v\n", err)
		os.Exit(1)
	}

	if err := postgres.Migrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "createdb: %v\n", err)
		os.Exit(1)
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		fmt.Fprintf(os.Stderr, "createdb: list tables: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Tables in database:", tables)
}

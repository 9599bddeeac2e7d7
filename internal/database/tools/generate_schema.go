// generate_schema writes internal/database/schema.sql from the embedded
// migrations. With -check it only reports whether the file is stale.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"tracker-go/internal/database"
	"tracker-go/internal/database/migrations"
)

const header = `-- This file is auto-generated from migration files.
-- DO NOT EDIT MANUALLY. Run 'go generate ./internal/database' to regenerate.
-- Source: internal/database/migrations/files/*.sql

`

// Tables before indexes so the file applies in order; the migrate
// bookkeeping table is left out.
const schemaQuery = `
	SELECT sql || ';'
	FROM sqlite_master
	WHERE type IN ('table', 'index')
	  AND sql IS NOT NULL
	  AND name NOT LIKE 'sqlite_%'
	  AND tbl_name != 'schema_migrations'
	ORDER BY CASE type WHEN 'table' THEN 1 ELSE 2 END, name`

func main() {
	out := flag.String("out", filepath.Join("internal", "database", "schema.sql"), "output path relative to the module root")
	check := flag.Bool("check", false, "exit 1 if the output file is out of date instead of writing it")
	flag.Parse()

	schema, err := render()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}

	if *check {
		current, err := os.ReadFile(*out)
		if err != nil || !bytes.Equal(current, schema) {
			fmt.Fprintf(os.Stderr, "%s is out of date; run 'go generate ./internal/database'\n", *out)
			os.Exit(1)
		}
		return
	}

	if err := os.WriteFile(*out, schema, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s from migrations\n", *out)
}

// render migrates a scratch in-memory database and dumps its DDL.
func render() ([]byte, error) {
	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.MigrateUp(sqlDB); err != nil {
		return nil, fmt.Errorf("migrating: %w", err)
	}

	var statements []string
	if err := sqlx.NewDb(sqlDB, "sqlite3").Select(&statements, schemaQuery); err != nil {
		return nil, fmt.Errorf("reading sqlite_master: %w", err)
	}

	var b strings.Builder
	b.WriteString(header)
	for _, stmt := range statements {
		b.WriteString(stmt)
		b.WriteString("\n\n")
	}
	return []byte(b.String()), nil
}

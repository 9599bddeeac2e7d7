package database

import _ "embed"

// Schema is the full table layout produced by the migrations, used to set up
// throwaway databases in tests.
//
//go:embed schema.sql
var Schema string

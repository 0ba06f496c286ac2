package app

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx://u:p@db:5432/rentals", migrateURL("postgres://u:p@db:5432/rentals"))
	assert.Equal(t, "pgx://u@db/rentals?sslmode=disable", migrateURL("postgresql://u@db/rentals?sslmode=disable"))
	assert.Equal(t, "pgx://already", migrateURL("pgx://already"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFS, "migrations/*.down.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

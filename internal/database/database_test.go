package database

import (
	"context"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_AreEmbeddedInPairs(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestMigrations_SourceStartsAtVersionOne(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}

func TestMigrations_CreateEveryTable(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/0001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"products", "product_vendors", "recipes", "recipe_ingredients"} {
		assert.Contains(t, string(b), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestRollback_RejectsNonPositiveSteps(t *testing.T) {
	assert.Error(t, Rollback(nil, 0))
}

func TestMigrations_StoreAmountsWithFourPlaces(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	next, err := src.Next(1)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	b, err := fs.ReadFile(migrationsFS, "migrations/0002_widen_amounts.up.sql")
	require.NoError(t, err)
	for _, column := range []string{"price", "weight", "quantity"} {
		assert.Contains(t, string(b), "ALTER COLUMN "+column+" TYPE NUMERIC(12, 4)")
	}
}

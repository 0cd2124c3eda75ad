package sql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationsAppliedOnce(t *testing.T) {
	db := InMemory()

	v, err := version(db)
	require.NoError(t, err)

	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	require.Equal(t, migrations[len(migrations)-1].order, v)

	// running again is a no-op
	require.NoError(t, embeddedMigrations(db))
	again, err := version(db)
	require.NoError(t, err)
	require.Equal(t, v, again)
}

func TestStatements(t *testing.T) {
	stmts := statements([]byte("create table a (x int);\n\ncreate index b on a (x);\n"))
	require.Equal(t, []string{"create table a (x int);", "create index b on a (x);"}, stmts)
}

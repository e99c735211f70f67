package db

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLPrecedence(t *testing.T) {
	t.Setenv("ALEMBIC_DB_URL", "")
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("ALEMBIC_DB_URL"))
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	assert.Empty(t, URL())

	t.Setenv("DATABASE_URL", "postgres://fallback/zphere_master")
	assert.Equal(t, "postgres://fallback/zphere_master", URL())

	t.Setenv("ALEMBIC_DB_URL", "postgres://primary/zphere_master")
	assert.Equal(t, "postgres://primary/zphere_master", URL())
}

func TestConnectRequiresURL(t *testing.T) {
	t.Setenv("ALEMBIC_DB_URL", "")
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("ALEMBIC_DB_URL"))
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := Connect(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALEMBIC_DB_URL or DATABASE_URL")
}

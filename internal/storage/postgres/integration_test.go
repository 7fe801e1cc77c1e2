package postgres

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/storage/storagetest"
)

// TestProviderContract runs the shared provider checks against a real database.
// Set HABITLIT_TEST_POSTGRES to a connection string to enable it, e.g.
// HABITLIT_TEST_POSTGRES="postgres://habitlit@localhost:5432/habitlit_test?sslmode=disable"
func TestProviderContract(t *testing.T) {
	connStr := os.Getenv("HABITLIT_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("HABITLIT_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	storagetest.Run(t, func(t *testing.T) storage.Provider {
		s := New(connStr)
		require.NoError(t, s.Init())
		require.NoError(t, s.ClearAll())
		t.Cleanup(func() { s.Close() })
		return s
	})
}

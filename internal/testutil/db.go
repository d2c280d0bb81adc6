// Package testutil provides test utilities for case database setup.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/caseview/internal/infrastructure/sqlite"
)

// NewTestCase opens an empty, fully migrated case in a temp directory.
// The case is closed when the test ends.
func NewTestCase(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "case.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

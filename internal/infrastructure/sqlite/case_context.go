package sqlite

import "github.com/zjrosen/caseview/internal/contentview"

var _ contentview.CaseContext = (*DB)(nil)

// IsOpen reports whether the case connection is still open.
func (db *DB) IsOpen() bool {
	return db != nil && !db.closed.Load()
}

// RootObjectCount returns the number of data sources in the case.
func (db *DB) RootObjectCount() (int, error) {
	return db.DataSourceRepository().Count()
}

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/caseview/internal/evidence"
)

// dataSourceRepository implements evidence.DataSourceRepository.
type dataSourceRepository struct {
	db querier
}

func newDataSourceRepository(db querier) *dataSourceRepository {
	return &dataSourceRepository{db: db}
}

var _ evidence.DataSourceRepository = (*dataSourceRepository)(nil)

func (r *dataSourceRepository) Save(ds *evidence.DataSource) error {
	if ds.ID() != 0 {
		return fmt.Errorf("data source %s already saved", ds.GUID())
	}
	result, err := r.db.Exec(
		`INSERT INTO data_sources (guid, name, source_path, imported_at) VALUES (?, ?, ?, ?)`,
		ds.GUID(), ds.Name(), ds.SourcePath(), ds.ImportedAt().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert data source: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	ds.SetID(id)
	return nil
}

func (r *dataSourceRepository) FindByID(id int64) (*evidence.DataSource, error) {
	row := r.db.QueryRow(`SELECT `+dataSourceColumns+` FROM data_sources WHERE id = ?`, id)
	m, err := scanDataSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &evidence.DataSourceNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find data source: %w", err)
	}
	return m.toDomain(), nil
}

func (r *dataSourceRepository) List() ([]*evidence.DataSource, error) {
	rows, err := r.db.Query(`SELECT ` + dataSourceColumns + ` FROM data_sources ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []*evidence.DataSource
	for rows.Next() {
		m, err := scanDataSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan data source row: %w", err)
		}
		sources = append(sources, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data source rows: %w", err)
	}
	return sources, nil
}

func (r *dataSourceRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM data_sources`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count data sources: %w", err)
	}
	return count, nil
}

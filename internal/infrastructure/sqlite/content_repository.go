package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/caseview/internal/evidence"
)

// contentRepository implements evidence.ContentRepository.
type contentRepository struct {
	db querier
}

func newContentRepository(db querier) *contentRepository {
	return &contentRepository{db: db}
}

var _ evidence.ContentRepository = (*contentRepository)(nil)

// Save inserts new content. Content is immutable once imported, so saving
// content that already has a row ID is an error.
func (r *contentRepository) Save(c *evidence.Content) error {
	if c.RowID() != 0 {
		return fmt.Errorf("content %s already saved", c.GUID())
	}
	m := toContentModel(c)
	result, err := r.db.Exec(
		`INSERT INTO content (guid, data_source_id, parent_id, name, path, kind, size, mime_type, sha256, modified_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.GUID, m.DataSourceID, m.ParentID, m.Name, m.Path, m.Kind, m.Size, m.MIMEType, m.SHA256, m.ModifiedAt, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert content: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.SetRowID(id)
	return nil
}

func (r *contentRepository) SaveData(rowID int64, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := r.db.Exec(
		`INSERT INTO content_data (content_id, data) VALUES (?, ?)
		 ON CONFLICT(content_id) DO UPDATE SET data = excluded.data`,
		rowID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save content data: %w", err)
	}
	return nil
}

func (r *contentRepository) FindByGUID(guid string) (*evidence.Content, error) {
	row := r.db.QueryRow(`SELECT `+contentColumns+` FROM content WHERE guid = ?`, guid)
	m, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &evidence.ContentNotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find content: %w", err)
	}
	return m.toDomain(), nil
}

func (r *contentRepository) Children(parentID int64) ([]*evidence.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE parent_id = ?`
	args := []any{parentID}
	if parentID == 0 {
		query = `SELECT ` + contentColumns + ` FROM content WHERE parent_id IS NULL`
		args = nil
	}
	// 'dir' sorts before 'file'.
	query += ` ORDER BY kind ASC, name COLLATE NOCASE ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var children []*evidence.Content
	for rows.Next() {
		m, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}
		children = append(children, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}
	return children, nil
}

func (r *contentRepository) Data(rowID int64) ([]byte, error) {
	var data []byte
	err := r.db.QueryRow(`SELECT data FROM content_data WHERE content_id = ?`, rowID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content data: %w", err)
	}
	return data, nil
}

package sqlite

import (
	"database/sql"
	"time"

	"github.com/zjrosen/caseview/internal/evidence"
)

// contentModel is a row of the content table. Times are Unix seconds.
type contentModel struct {
	ID           int64
	GUID         string
	DataSourceID int64
	ParentID     sql.NullInt64 // NULL for data source roots
	Name         string
	Path         string
	Kind         string
	Size         int64
	MIMEType     sql.NullString
	SHA256       sql.NullString
	ModifiedAt   sql.NullInt64
	CreatedAt    int64
}

const contentColumns = `id, guid, data_source_id, parent_id, name, path, kind, size, mime_type, sha256, modified_at, created_at`

func scanContent(scanner interface{ Scan(...any) error }) (*contentModel, error) {
	var m contentModel
	err := scanner.Scan(
		&m.ID, &m.GUID, &m.DataSourceID, &m.ParentID, &m.Name, &m.Path, &m.Kind,
		&m.Size, &m.MIMEType, &m.SHA256, &m.ModifiedAt, &m.CreatedAt,
	)
	return &m, err
}

func toContentModel(c *evidence.Content) *contentModel {
	m := &contentModel{
		ID:           c.RowID(),
		GUID:         c.GUID(),
		DataSourceID: c.DataSourceID(),
		Name:         c.Name(),
		Path:         c.DisplayPath(),
		Kind:         string(c.Kind()),
		Size:         c.Size(),
		CreatedAt:    c.CreatedAt().Unix(),
	}
	if c.ParentID() != 0 {
		m.ParentID = sql.NullInt64{Int64: c.ParentID(), Valid: true}
	}
	if c.MIMEType() != "" {
		m.MIMEType = sql.NullString{String: c.MIMEType(), Valid: true}
	}
	if c.SHA256() != "" {
		m.SHA256 = sql.NullString{String: c.SHA256(), Valid: true}
	}
	if !c.ModifiedAt().IsZero() {
		m.ModifiedAt = sql.NullInt64{Int64: c.ModifiedAt().Unix(), Valid: true}
	}
	return m
}

func (m *contentModel) toDomain() *evidence.Content {
	var modifiedAt time.Time
	if m.ModifiedAt.Valid {
		modifiedAt = time.Unix(m.ModifiedAt.Int64, 0)
	}
	return evidence.ReconstituteContent(
		m.ID,
		m.GUID,
		m.DataSourceID,
		m.ParentID.Int64,
		m.Name,
		m.Path,
		evidence.Kind(m.Kind),
		m.Size,
		m.MIMEType.String,
		m.SHA256.String,
		modifiedAt,
		time.Unix(m.CreatedAt, 0),
	)
}

// dataSourceModel is a row of the data_sources table.
type dataSourceModel struct {
	ID         int64
	GUID       string
	Name       string
	SourcePath string
	ImportedAt int64
}

const dataSourceColumns = `id, guid, name, source_path, imported_at`

func scanDataSource(scanner interface{ Scan(...any) error }) (*dataSourceModel, error) {
	var m dataSourceModel
	err := scanner.Scan(&m.ID, &m.GUID, &m.Name, &m.SourcePath, &m.ImportedAt)
	return &m, err
}

func (m *dataSourceModel) toDomain() *evidence.DataSource {
	return evidence.ReconstituteDataSource(m.ID, m.GUID, m.Name, m.SourcePath, time.Unix(m.ImportedAt, 0))
}

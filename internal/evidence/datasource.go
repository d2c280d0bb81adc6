package evidence

import "time"

// DataSource is a root object of a case: one imported directory tree.
type DataSource struct {
	id         int64
	guid       string
	name       string
	sourcePath string
	importedAt time.Time
}

// NewDataSource creates an unsaved data source imported from sourcePath.
func NewDataSource(guid, name, sourcePath string) *DataSource {
	return &DataSource{
		guid:       guid,
		name:       name,
		sourcePath: sourcePath,
		importedAt: time.Now(),
	}
}

// ReconstituteDataSource rebuilds a data source loaded from storage.
func ReconstituteDataSource(id int64, guid, name, sourcePath string, importedAt time.Time) *DataSource {
	return &DataSource{id: id, guid: guid, name: name, sourcePath: sourcePath, importedAt: importedAt}
}

func (d *DataSource) ID() int64             { return d.id }
func (d *DataSource) GUID() string          { return d.guid }
func (d *DataSource) Name() string          { return d.name }
func (d *DataSource) SourcePath() string    { return d.sourcePath }
func (d *DataSource) ImportedAt() time.Time { return d.importedAt }

// SetID is called by the repository after insert.
func (d *DataSource) SetID(id int64) { d.id = id }

// Case describes an open case store.
type Case struct {
	Name string
	Path string
}

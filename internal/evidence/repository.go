package evidence

// ContentRepository persists content objects and their bytes.
type ContentRepository interface {
	// Save inserts content with RowID 0 and sets its RowID.
	Save(c *Content) error

	// SaveData stores the bytes of a file.
	SaveData(rowID int64, data []byte) error

	// FindByGUID returns ContentNotFoundError when nothing matches.
	FindByGUID(guid string) (*Content, error)

	// Children lists direct children of parentID ordered directories first,
	// then by name. A parentID of 0 lists the roots of every data source.
	Children(parentID int64) ([]*Content, error)

	// Data returns the stored bytes of a file. Directories have no data and
	// return an empty slice.
	Data(rowID int64) ([]byte, error)
}

// DataSourceRepository persists data sources.
type DataSourceRepository interface {
	Save(ds *DataSource) error

	// FindByID returns DataSourceNotFoundError when nothing matches.
	FindByID(id int64) (*DataSource, error)

	// List returns data sources in import order.
	List() ([]*DataSource, error)

	Count() (int, error)
}

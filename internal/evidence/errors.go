package evidence

import "fmt"

// ContentNotFoundError is returned when a content lookup matches nothing.
type ContentNotFoundError struct {
	GUID string
}

func (e *ContentNotFoundError) Error() string {
	return fmt.Sprintf("content not found: %s", e.GUID)
}

// DataSourceNotFoundError is returned when a data source lookup matches nothing.
type DataSourceNotFoundError struct {
	ID int64
}

func (e *DataSourceNotFoundError) Error() string {
	return fmt.Sprintf("data source not found: %d", e.ID)
}

// Package evidence is the case domain: data sources imported into a case and
// the content objects (files and directories) they contain.
//
// The package has no infrastructure dependencies; persistence lives behind
// ContentRepository and DataSourceRepository.
package evidence

import (
	"path"
	"strings"
	"time"
)

// Kind distinguishes files from directories.
type Kind string

const (
	KindFile Kind = "file"
	KindDir  Kind = "dir"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindFile || k == KindDir
}

// Content is a file or directory inside a data source. It is the node type
// browsed in the tree and shown by the content viewers.
type Content struct {
	rowID        int64
	guid         string
	dataSourceID int64
	parentID     int64 // 0 for the data source root
	name         string
	path         string
	kind         Kind
	size         int64
	mimeType     string
	sha256       string
	modifiedAt   time.Time
	createdAt    time.Time
}

// NewContent creates unsaved content. p is the display path inside the case
// and is cleaned to an absolute slash path.
func NewContent(guid string, dataSourceID, parentID int64, name, p string, kind Kind) *Content {
	return &Content{
		guid:         guid,
		dataSourceID: dataSourceID,
		parentID:     parentID,
		name:         name,
		path:         cleanPath(p),
		kind:         kind,
		createdAt:    time.Now(),
	}
}

// ReconstituteContent rebuilds content loaded from storage.
func ReconstituteContent(
	rowID int64,
	guid string,
	dataSourceID, parentID int64,
	name, p string,
	kind Kind,
	size int64,
	mimeType, sha256 string,
	modifiedAt, createdAt time.Time,
) *Content {
	return &Content{
		rowID:        rowID,
		guid:         guid,
		dataSourceID: dataSourceID,
		parentID:     parentID,
		name:         name,
		path:         p,
		kind:         kind,
		size:         size,
		mimeType:     mimeType,
		sha256:       sha256,
		modifiedAt:   modifiedAt,
		createdAt:    createdAt,
	}
}

func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean("/" + p)
}

// ID returns the stable GUID; it identifies the node to viewers and caches.
func (c *Content) ID() string { return c.guid }

// Name returns the base name.
func (c *Content) Name() string { return c.name }

// DisplayPath returns the path inside the case, e.g. "/usb-01/docs/a.txt".
func (c *Content) DisplayPath() string { return c.path }

func (c *Content) RowID() int64          { return c.rowID }
func (c *Content) GUID() string          { return c.guid }
func (c *Content) DataSourceID() int64   { return c.dataSourceID }
func (c *Content) ParentID() int64       { return c.parentID }
func (c *Content) Kind() Kind            { return c.kind }
func (c *Content) Size() int64           { return c.size }
func (c *Content) MIMEType() string      { return c.mimeType }
func (c *Content) SHA256() string        { return c.sha256 }
func (c *Content) ModifiedAt() time.Time { return c.modifiedAt }
func (c *Content) CreatedAt() time.Time  { return c.createdAt }

// IsDir reports whether the content is a directory.
func (c *Content) IsDir() bool { return c.kind == KindDir }

// IsRoot reports whether the content is the root directory of its data source.
func (c *Content) IsRoot() bool { return c.parentID == 0 }

// Ext returns the lower-cased extension including the dot, or "".
func (c *Content) Ext() string { return strings.ToLower(path.Ext(c.name)) }

// SetRowID is called by the repository after insert.
func (c *Content) SetRowID(id int64) { c.rowID = id }

// SetHash records the hex SHA-256 of the file data.
func (c *Content) SetHash(sum string) { c.sha256 = sum }

// SetFileInfo records size, type and modification time of a file.
func (c *Content) SetFileInfo(size int64, mimeType string, modifiedAt time.Time) {
	c.size = size
	c.mimeType = mimeType
	c.modifiedAt = modifiedAt
}

package testutil

import (
	"strings"
	"time"
)

// Entry is one file or directory to insert under a data source.
type Entry struct {
	path     string // slash path relative to the data source root
	dir      bool
	data     []byte
	mimeType string
	modTime  time.Time
}

// EntryOption configures an entry.
type EntryOption func(*Entry)

// MIME overrides the detected MIME type.
func MIME(mimeType string) EntryOption {
	return func(e *Entry) { e.mimeType = mimeType }
}

// ModTime sets the file modification time.
func ModTime(t time.Time) EntryOption {
	return func(e *Entry) { e.modTime = t }
}

// Data sets file bytes.
func Data(b []byte) EntryOption {
	return func(e *Entry) { e.data = b }
}

// File creates a file entry holding body. Missing parent directories are
// created by the builder.
func File(path, body string, opts ...EntryOption) Entry {
	e := Entry{
		path:     strings.Trim(path, "/"),
		data:     []byte(body),
		mimeType: "text/plain",
		modTime:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Dir creates an empty directory entry.
func Dir(path string) Entry {
	return Entry{path: strings.Trim(path, "/"), dir: true}
}

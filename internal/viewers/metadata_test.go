package viewers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/caseview/internal/evidence"
)

type stubContents struct {
	evidence.ContentRepository
	children map[int64][]*evidence.Content
	err      error
}

func (s stubContents) Children(parentID int64) ([]*evidence.Content, error) {
	return s.children[parentID], s.err
}

type stubSources struct {
	evidence.DataSourceRepository
	ds *evidence.DataSource
}

func (s stubSources) FindByID(id int64) (*evidence.DataSource, error) {
	if s.ds == nil || s.ds.ID() != id {
		return nil, &evidence.DataSourceNotFoundError{ID: id}
	}
	return s.ds, nil
}

func rows(view string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(view, "\n") {
		key, value, _ := strings.Cut(line, "  ")
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}

func TestMetadata_File(t *testing.T) {
	src := newFakeSource()
	c := file(src, "report.pdf", "application/pdf", strings.Repeat("x", 2048))
	ds := evidence.ReconstituteDataSource(1, "ds-1", "usb-01", "/mnt/usb", fixedTime)
	v := NewMetadata(nil, stubSources{ds: ds})

	require.True(t, v.Supports(c))
	require.False(t, v.IsPreferred(c, true))
	require.NoError(t, v.DisplayNode(context.Background(), c))

	got := rows(v.View(0, 0))
	require.Equal(t, "report.pdf", got["Name"])
	require.Equal(t, "/case/report.pdf", got["Path"])
	require.Equal(t, "2.0 KiB (2048 bytes)", got["Size"])
	require.Equal(t, "application/pdf", got["MIME type"])
	require.Equal(t, "abc123", got["SHA-256"])
	require.Equal(t, "2024-03-01 12:30:00 UTC", got["Modified"])
	require.Equal(t, "usb-01", got["Data source"])
	require.Equal(t, "/mnt/usb", got["Imported from"])
	require.NotContains(t, got, "Children")
}

func TestMetadata_DirectoryIsPreferred(t *testing.T) {
	d := dir("root")
	v := NewMetadata(stubContents{children: map[int64][]*evidence.Content{1: {dir("a"), dir("b")}}}, nil)

	require.True(t, v.IsPreferred(d, v.Supports(d)))
	require.NoError(t, v.DisplayNode(context.Background(), d))

	got := rows(v.View(0, 0))
	require.Equal(t, "2", got["Children"])
	require.NotContains(t, got, "Size")
	require.NotContains(t, got, "Data source")
}

func TestMetadata_AlignsValues(t *testing.T) {
	v := NewMetadata(nil, nil)
	require.NoError(t, v.DisplayNode(context.Background(), dir("日本")))

	// Keys are Name, Path, Type, Added and GUID; values start after the
	// widest key plus two spaces.
	lines := strings.Split(v.View(0, 0), "\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		require.Equal(t, "  ", line[5:7], line)
		require.NotEqual(t, byte(' '), line[7], line)
	}
	for _, line := range strings.Split(v.View(12, 0), "\n") {
		require.LessOrEqual(t, runewidth.StringWidth(line), 12)
	}
}

func TestMetadata_PlainNode(t *testing.T) {
	v := NewMetadata(nil, nil)
	require.NoError(t, v.DisplayNode(context.Background(), plainNode{id: "x"}))
	got := rows(v.View(0, 0))
	require.Equal(t, "/plain/x", got["Path"])
	require.Equal(t, "x", got["ID"])

	require.NoError(t, v.Reset(context.Background()))
	require.Empty(t, v.View(0, 0))
	require.False(t, v.Supports(nil))
}

func TestMetadata_RepositoryErrors(t *testing.T) {
	boom := errors.New("boom")
	v := NewMetadata(stubContents{err: boom}, nil)
	require.ErrorIs(t, v.DisplayNode(context.Background(), dir("root")), boom)

	src := newFakeSource()
	v = NewMetadata(nil, stubSources{})
	var notFound *evidence.DataSourceNotFoundError
	require.ErrorAs(t, v.DisplayNode(context.Background(), file(src, "a", "", "x")), &notFound)
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KiB (1536 bytes)"},
		{3 << 20, "3.0 MiB (3145728 bytes)"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, humanSize(tt.n))
	}
}

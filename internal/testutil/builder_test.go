package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/caseview/internal/evidence"
)

func TestBuilder_CreatesParents(t *testing.T) {
	db := NewTestCase(t)

	built := NewBuilder(t, db).
		WithDataSource("disk", File("a/b/c.txt", "deep")).
		Build()

	file := built.Node(t, "/disk/a/b/c.txt")
	b := built.Node(t, "/disk/a/b")
	a := built.Node(t, "/disk/a")
	root := built.Node(t, "/disk")

	require.Equal(t, b.RowID(), file.ParentID())
	require.Equal(t, a.RowID(), b.ParentID())
	require.Equal(t, root.RowID(), a.ParentID())
	require.True(t, root.IsRoot())
	require.Equal(t, evidence.KindDir, a.Kind())

	data, err := db.ContentRepository().Data(file.RowID())
	require.NoError(t, err)
	require.Equal(t, "deep", string(data))
}

func TestBuilder_FileOptions(t *testing.T) {
	db := NewTestCase(t)

	built := NewBuilder(t, db).
		WithDataSource("disk", File("x.bin", "", Data([]byte{1, 2, 3}), MIME("application/octet-stream"))).
		Build()

	got, err := db.ContentRepository().FindByGUID(built.Node(t, "/disk/x.bin").GUID())
	require.NoError(t, err)
	require.Equal(t, int64(3), got.Size())
	require.Equal(t, "application/octet-stream", got.MIMEType())
	require.Len(t, got.SHA256(), 64)
}

func TestBuilder_DirEntryIsIdempotent(t *testing.T) {
	db := NewTestCase(t)

	NewBuilder(t, db).
		WithDataSource("disk", File("docs/a.txt", "a"), Dir("docs"), Dir("docs")).
		Build()

	roots, err := db.ContentRepository().Children(0)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	children, err := db.ContentRepository().Children(roots[0].RowID())
	require.NoError(t, err)
	require.Len(t, children, 1)
}

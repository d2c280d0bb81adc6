package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/caseview/internal/evidence"
	"github.com/zjrosen/caseview/internal/infrastructure/sqlite"
)

// sourceData holds a data source and its entries.
type sourceData struct {
	name    string
	entries []Entry
}

// Builder accumulates data sources and inserts them in one transaction.
type Builder struct {
	t       *testing.T
	db      *sqlite.DB
	sources []sourceData
}

// NewBuilder creates a builder for the given test case.
func NewBuilder(t *testing.T, db *sqlite.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithDataSource adds a data source holding entries.
func (b *Builder) WithDataSource(name string, entries ...Entry) *Builder {
	b.sources = append(b.sources, sourceData{name: name, entries: entries})
	return b
}

// Built maps case display paths such as "/laptop/docs/a.txt" to the saved
// content.
type Built map[string]*evidence.Content

// Node returns the content at display path p and fails the test if absent.
func (b Built) Node(t *testing.T, p string) *evidence.Content {
	t.Helper()
	c, ok := b[p]
	require.True(t, ok, "no content at %s", p)
	return c
}

// Build inserts all accumulated data into the case.
func (b *Builder) Build() Built {
	b.t.Helper()
	built := make(Built)
	err := b.db.InTx(context.Background(), func(contents evidence.ContentRepository, sources evidence.DataSourceRepository) error {
		for _, src := range b.sources {
			ds := evidence.NewDataSource(uuid.NewString(), src.name, "/evidence/"+src.name)
			if err := sources.Save(ds); err != nil {
				return err
			}
			ins := inserter{contents: contents, dsID: ds.ID(), built: built}
			root := "/" + src.name
			if err := ins.dir(root, 0, src.name); err != nil {
				return err
			}
			// Parents sort before their children.
			entries := append([]Entry(nil), src.entries...)
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].path < entries[j].path })
			for _, e := range entries {
				if err := ins.entry(root, e); err != nil {
					return err
				}
			}
		}
		return nil
	})
	require.NoError(b.t, err)
	return built
}

type inserter struct {
	contents evidence.ContentRepository
	dsID     int64
	built    Built
}

func (in inserter) dir(p string, parentID int64, name string) error {
	if _, ok := in.built[p]; ok {
		return nil
	}
	c := evidence.NewContent(uuid.NewString(), in.dsID, parentID, name, p, evidence.KindDir)
	if err := in.contents.Save(c); err != nil {
		return err
	}
	in.built[p] = c
	return nil
}

// ensureParents creates every missing directory above p and returns the row
// ID of its parent.
func (in inserter) ensureParents(p string) (int64, error) {
	parent := path.Dir(p)
	if c, ok := in.built[parent]; ok {
		return c.RowID(), nil
	}
	grandparent, err := in.ensureParents(parent)
	if err != nil {
		return 0, err
	}
	if err := in.dir(parent, grandparent, path.Base(parent)); err != nil {
		return 0, err
	}
	return in.built[parent].RowID(), nil
}

func (in inserter) entry(root string, e Entry) error {
	p := path.Join(root, e.path)
	parentID, err := in.ensureParents(p)
	if err != nil {
		return err
	}
	if e.dir {
		return in.dir(p, parentID, path.Base(p))
	}

	c := evidence.NewContent(uuid.NewString(), in.dsID, parentID, path.Base(p), p, evidence.KindFile)
	sum := sha256.Sum256(e.data)
	c.SetFileInfo(int64(len(e.data)), e.mimeType, e.modTime)
	c.SetHash(hex.EncodeToString(sum[:]))
	if err := in.contents.Save(c); err != nil {
		return err
	}
	if err := in.contents.SaveData(c.RowID(), e.data); err != nil {
		return err
	}
	in.built[p] = c
	return nil
}

package sqlite

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/caseview/internal/evidence"
	"github.com/zjrosen/caseview/internal/log"
	"github.com/zjrosen/caseview/internal/tracing"
)

// DefaultMaxDataBytes caps the bytes stored per file. Larger files keep their
// full size and hash but only the leading bytes are viewable.
const DefaultMaxDataBytes = 8 << 20

// ImportStats summarizes one import.
type ImportStats struct {
	Dirs      int
	Files     int
	Bytes     int64
	Truncated int
	Skipped   int
}

// Importer walks a directory into a new data source.
type Importer struct {
	db      *DB
	maxData int64
	newGUID func() string
	tracer  trace.Tracer
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithMaxDataBytes sets the per-file stored byte cap.
func WithMaxDataBytes(n int64) ImporterOption {
	return func(im *Importer) {
		if n > 0 {
			im.maxData = n
		}
	}
}

// WithGUIDFunc replaces the GUID generator.
func WithGUIDFunc(fn func() string) ImporterOption {
	return func(im *Importer) { im.newGUID = fn }
}

// WithImportTracer records a span per import.
func WithImportTracer(t trace.Tracer) ImporterOption {
	return func(im *Importer) {
		if t != nil {
			im.tracer = t
		}
	}
}

// NewImporter creates an importer writing into db.
func NewImporter(db *DB, opts ...ImporterOption) *Importer {
	im := &Importer{
		db:      db,
		maxData: DefaultMaxDataBytes,
		newGUID: uuid.NewString,
		tracer:  noop.NewTracerProvider().Tracer("casedb"),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import copies the tree under dir into the case as a data source called
// name (the directory base name when empty). The import is all or nothing.
// Symlinks and special files are skipped.
func (im *Importer) Import(ctx context.Context, dir, name string) (ds *evidence.DataSource, stats ImportStats, err error) {
	ctx, span := im.tracer.Start(ctx, tracing.SpanImport, trace.WithAttributes(
		attribute.String(tracing.AttrCasePath, im.db.Path()),
	))
	defer func() {
		span.SetAttributes(attribute.Int(tracing.AttrImported, stats.Files))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, stats, fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, stats, fmt.Errorf("reading %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("%s is not a directory", dir)
	}
	if name == "" {
		name = filepath.Base(root)
	}

	err = im.db.InTx(ctx, func(contents evidence.ContentRepository, sources evidence.DataSourceRepository) error {
		ds = evidence.NewDataSource(im.newGUID(), name, root)
		if err := sources.Save(ds); err != nil {
			return err
		}

		// Directory row IDs by absolute path; WalkDir visits parents first.
		dirs := make(map[string]int64)
		displayPaths := make(map[string]string)

		return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			var parentID int64
			display := "/" + name
			entryName := name
			if p != root {
				parent := filepath.Dir(p)
				parentID = dirs[parent]
				entryName = d.Name()
				display = path.Join(displayPaths[parent], entryName)
			}

			switch {
			case d.IsDir():
				c := evidence.NewContent(im.newGUID(), ds.ID(), parentID, entryName, display, evidence.KindDir)
				if err := contents.Save(c); err != nil {
					return err
				}
				dirs[p] = c.RowID()
				displayPaths[p] = c.DisplayPath()
				stats.Dirs++
			case d.Type().IsRegular():
				if err := im.importFile(contents, p, ds.ID(), parentID, entryName, display, &stats); err != nil {
					return err
				}
			default:
				log.Debug(log.CatCase, "Skipping special file", "path", p)
				stats.Skipped++
			}
			return nil
		})
	})
	if err != nil {
		return nil, ImportStats{}, fmt.Errorf("importing %s: %w", dir, err)
	}

	log.Info(log.CatCase, "Imported data source",
		"name", name, "dirs", stats.Dirs, "files", stats.Files, "bytes", stats.Bytes, "truncated", stats.Truncated)
	return ds, stats, nil
}

func (im *Importer) importFile(contents evidence.ContentRepository, p string, dsID, parentID int64, name, display string, stats *ImportStats) error {
	f, err := os.Open(p) // #nosec G304 -- walking a user-chosen directory
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	sum := sha256.New()
	head := &cappedBuffer{limit: im.maxData}
	if _, err := io.Copy(io.MultiWriter(sum, head), f); err != nil {
		return fmt.Errorf("reading %s: %w", p, err)
	}

	c := evidence.NewContent(im.newGUID(), dsID, parentID, name, display, evidence.KindFile)
	c.SetFileInfo(info.Size(), detectMIME(name, head.buf), info.ModTime())
	c.SetHash(hex.EncodeToString(sum.Sum(nil)))
	if err := contents.Save(c); err != nil {
		return err
	}
	if err := contents.SaveData(c.RowID(), head.buf); err != nil {
		return err
	}

	stats.Files++
	stats.Bytes += info.Size()
	if head.truncated {
		stats.Truncated++
	}
	return nil
}

// detectMIME prefers the extension table and falls back to content sniffing.
// Parameters such as charset are dropped.
func detectMIME(name string, head []byte) string {
	t := mime.TypeByExtension(filepath.Ext(name))
	if t == "" {
		t = http.DetectContentType(head)
	}
	if media, _, err := mime.ParseMediaType(t); err == nil {
		return media
	}
	return t
}

// cappedBuffer keeps the first limit bytes written and discards the rest.
type cappedBuffer struct {
	buf       []byte
	limit     int64
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - int64(len(b.buf))
	switch {
	case room <= 0:
		b.truncated = b.truncated || len(p) > 0
	case int64(len(p)) > room:
		b.buf = append(b.buf, p[:room]...)
		b.truncated = true
	default:
		b.buf = append(b.buf, p...)
	}
	return len(p), nil
}

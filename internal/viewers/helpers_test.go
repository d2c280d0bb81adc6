package viewers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zjrosen/caseview/internal/evidence"
)

var errLoad = errors.New("load failed")

// fakeSource serves bytes by GUID and counts loads.
type fakeSource struct {
	mu    sync.Mutex
	data  map[string][]byte
	err   error
	loads int
}

func newFakeSource() *fakeSource {
	return &fakeSource{data: make(map[string][]byte)}
}

func (s *fakeSource) Bytes(_ context.Context, c *evidence.Content) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.data[c.GUID()], nil
}

var fixedTime = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

// file registers body with src and returns matching content.
func file(src *fakeSource, name, mimeType, body string) *evidence.Content {
	c := evidence.ReconstituteContent(int64(len(src.data)+10), "guid-"+name, 1, 1, name, "/case/"+name,
		evidence.KindFile, int64(len(body)), mimeType, "abc123", fixedTime, fixedTime)
	src.data[c.GUID()] = []byte(body)
	return c
}

func dir(name string) *evidence.Content {
	return evidence.ReconstituteContent(1, "guid-"+name, 1, 0, name, "/"+name,
		evidence.KindDir, 0, "", "", time.Time{}, fixedTime)
}

// plainNode is a node that is not evidence content.
type plainNode struct{ id string }

func (n plainNode) ID() string          { return n.id }
func (n plainNode) Name() string        { return n.id }
func (n plainNode) DisplayPath() string { return "/plain/" + n.id }

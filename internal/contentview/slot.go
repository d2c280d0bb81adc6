package contentview

import "context"

// Slot pairs a viewer with whether its content reflects the current node.
type Slot struct {
	viewer   Viewer
	outdated bool
	enabled  bool
}

func newSlot(v Viewer) *Slot {
	return &Slot{viewer: v, outdated: true, enabled: true}
}

// Viewer returns the wrapped viewer.
func (s *Slot) Viewer() Viewer { return s.viewer }

// Title returns the viewer title.
func (s *Slot) Title() string { return s.viewer.Title() }

// Enabled reports whether the slot supports the current node.
func (s *Slot) Enabled() bool { return s.enabled }

// IsOutdated reports whether the slot must be refreshed before it is shown.
func (s *Slot) IsOutdated() bool { return s.outdated }

// DisplayNode shows n. The slot is up to date only if the viewer succeeded.
func (s *Slot) DisplayNode(ctx context.Context, n Node) error {
	if err := s.viewer.DisplayNode(ctx, n); err != nil {
		s.outdated = true
		return err
	}
	s.outdated = false
	return nil
}

// Reset clears the viewer. The slot is outdated afterwards even if the viewer failed.
func (s *Slot) Reset(ctx context.Context) error {
	s.outdated = true
	return s.viewer.Reset(ctx)
}

// Supports reports whether the viewer can show n. A nil node is never supported.
func (s *Slot) Supports(n Node) bool {
	if n == nil {
		return false
	}
	return s.viewer.Supports(n)
}

// IsPreferred asks the viewer whether it wants to be active for n.
// supported must be the result of Supports for the same node.
func (s *Slot) IsPreferred(n Node, supported bool) bool {
	if !supported || n == nil {
		return false
	}
	return s.viewer.IsPreferred(n, supported)
}

package contentview

import "context"

// Viewer is a pluggable content viewer.
//
// Supports and IsPreferred must be pure. DisplayNode with a nil node clears
// the viewer and releases anything it holds for the previous node.
type Viewer interface {
	Title() string
	ToolTip() string

	Supports(n Node) bool
	IsPreferred(n Node, supported bool) bool

	DisplayNode(ctx context.Context, n Node) error
	Reset(ctx context.Context) error

	// View renders the current content. Only hosts call it.
	View(width, height int) string
}

// Factory creates one viewer instance per coordinator.
type Factory interface {
	Name() string
	New() Viewer
}

// FactoryFunc adapts a constructor to Factory.
type FactoryFunc struct {
	FactoryName string
	Fn          func() Viewer
}

// Name implements Factory.
func (f FactoryFunc) Name() string { return f.FactoryName }

// New implements Factory.
func (f FactoryFunc) New() Viewer { return f.Fn() }

// TabWidget mirrors coordinator decisions into a host tab control.
type TabWidget interface {
	AddTab(title, toolTip string)
	SetEnabledAt(index int, enabled bool)
	SetSelectedIndex(index int)
}

// Busy shows a waiting indication while viewers work. Begin returns the
// function that clears it.
type Busy interface {
	Begin() (end func())
}

// CaseContext answers the questions the close policy needs about the open case.
type CaseContext interface {
	IsOpen() bool
	RootObjectCount() (int, error)
}

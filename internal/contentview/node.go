package contentview

// Node is the selected data item shown across viewers. A nil Node means
// nothing is selected. Coordinators never mutate a node.
type Node interface {
	// ID uniquely identifies the node within its case.
	ID() string
	// Name is the short display name.
	Name() string
	// DisplayPath is the full path shown as the window name; may be empty.
	DisplayPath() string
}

func nodeID(n Node) string {
	if n == nil {
		return ""
	}
	return n.ID()
}

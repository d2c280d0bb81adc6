package contentview

import "errors"

var (
	// ErrIndexOutOfRange is returned when a tab index is outside the slot list.
	ErrIndexOutOfRange = errors.New("tab index out of range")
	// ErrSlotDisabled is returned when activating a slot that does not support the current node.
	ErrSlotDisabled = errors.New("tab is disabled for the current node")
	// ErrNotOpened is returned when activating a tab before the coordinator was opened.
	ErrNotOpened = errors.New("coordinator has not been opened")
	// ErrQueued is returned by a call made from inside a running pass. The
	// call runs once the pass finishes.
	ErrQueued = errors.New("queued behind running pass")
	// ErrPassAborted is returned to callers waiting on a pass that panicked.
	ErrPassAborted = errors.New("coordinator pass aborted")
)

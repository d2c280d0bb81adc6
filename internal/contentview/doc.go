// Package contentview coordinates the content viewers shown for the selected
// case node.
//
// A Coordinator owns one Slot per registered viewer, in registration order.
// When a node is selected every slot is reset, unsupported slots are
// disabled, the last slot claiming preference becomes active, and only the
// active slot is asked to display the node. Other slots stay outdated until
// the user activates them, at which point they are refreshed exactly once.
//
// The Registry owns the always-present primary coordinator and the secondary
// coordinators opened with "open in new window".
//
// All entry points of a Coordinator are meant to be driven from a single
// event loop, and ops on one coordinator never interleave. A call made from
// inside a viewer callback with the context the callback received is queued
// behind the running pass and returns ErrQueued; its error is reported by the
// call that owns the pass. A call from another goroutine blocks until its own
// op has run and returns that op's error. A callback that calls back without
// its context would wait on itself, so callbacks must pass it on. Accessors
// read state without locking and should only be used from the event loop or
// after the call that changed the state has returned.
package contentview

// Package viewers holds the concrete content viewers shown as tabs by a
// contentview.Coordinator: hex, strings, text, markdown and metadata.
//
// Viewers are driven from the coordinator's goroutine and rendered from the
// UI loop, so each guards its state with a mutex. Supports and IsPreferred
// look only at node metadata and never load content.
package viewers

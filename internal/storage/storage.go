// Package storage persists small string values for the client: session tokens
// and the selected organization id.
//
// Reads always go to the backing medium so that changes made by another
// process (a second terminal logging out) are observed immediately.
package storage

import "context"

// Well-known keys.
const (
	KeyAccessToken            = "access"
	KeyRefreshToken           = "refresh"
	KeySelectedOrganizationID = "selectedOrganizationId"
)

// Store is a string key-value store with change notifications.
type Store interface {
	// Get returns the value for key and whether it is present.
	Get(key string) (string, bool, error)

	// Set stores value under key.
	Set(key, value string) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(keys ...string) error

	// Subscribe returns a channel signalled after any change to the store,
	// including changes made outside this process when the backend can see them.
	Subscribe() (<-chan struct{}, func())

	// Watch observes external changes until ctx is done. Backends without an
	// external medium return immediately.
	Watch(ctx context.Context) error
}

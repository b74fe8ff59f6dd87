package poicache

import "fmt"

// FetchError reports that the external fetch for a location's missing
// collections failed. Recoverable: the accompanying bundle still carries
// whatever the cache could serve, and a retry with the same request is safe.
type FetchError struct {
	Key         LocationKey
	Collections []CollectionID
	Err         error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("poicache: fetch for %q (%d collections) failed: %v",
		e.Key, len(e.Collections), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

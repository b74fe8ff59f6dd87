package poicache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the cache calls them on
// hot paths. Wrap with hooks/async to decouple slow sinks.
type Hooks interface {
	// A persisted bundle could not be decoded and was deleted on read.
	// reason ∈ {"frame", "item_decode"}
	CorruptBundleDropped(storageKey, reason string)

	// The external fetch for a location's missing collections failed.
	FetchFailed(locationKey string, collections int, err error)

	// A caller joined an already in-flight fetch instead of issuing its own.
	FetchShared(locationKey string, collections int)

	// Persisting a merged bundle failed; the union was still returned.
	StoreWriteFailed(storageKey string, err error)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CorruptBundleDropped(string, string) {}
func (NopHooks) FetchFailed(string, int, error)      {}
func (NopHooks) FetchShared(string, int)             {}
func (NopHooks) StoreWriteFailed(string, error)      {}
func (NopHooks) ProviderSetRejected(string)          {}

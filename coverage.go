package poicache

import "time"

// Coverage is the transient partition of a request against a cached bundle:
// Covered holds the fresh records, Missing the collections that must be
// fetched. Never persisted.
type Coverage[V any] struct {
	Covered Bundle[V]
	Missing []CollectionID
}

// resolveCoverage partitions requested into covered and missing against the
// bundle. Pure: depends only on its inputs. A nil bundle covers nothing.
// Duplicates in requested collapse; Missing comes back sorted, which also
// makes flight keys deterministic.
func resolveCoverage[V any](b Bundle[V], requested []CollectionID, ttl time.Duration, now time.Time) Coverage[V] {
	ids := uniqueSorted(requested)
	cov := Coverage[V]{Covered: make(Bundle[V], len(ids))}
	for _, id := range ids {
		if r, ok := b[id]; ok && r.Fresh(ttl, now) {
			cov.Covered[id] = r
		} else {
			cov.Missing = append(cov.Missing, id)
		}
	}
	return cov
}

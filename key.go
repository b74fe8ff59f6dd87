package poicache

import "strconv"

// LocationKey is the canonical cache partition key for one location. Derive
// it only through DeriveLocationKey so that logically identical locations
// always land on the same bundle.
type LocationKey string

// Location is a geographic coordinate pair plus an optional stable entity
// identifier (e.g. a property id from the upstream system).
type Location struct {
	Lat      float64
	Lng      float64
	StableID string
}

// Key returns the canonical cache key for the location.
func (l Location) Key() LocationKey {
	return DeriveLocationKey(l.Lat, l.Lng, l.StableID)
}

// coordPrecision is the number of decimal places coordinates are rounded to
// when deriving a key: 5 places is ~1m at the equator, well below the
// resolution the upstream geospatial queries operate at.
const coordPrecision = 5

// DeriveLocationKey builds the canonical key for a coordinate pair. When a
// stable id is present it wins over the raw coordinates, so two coordinate
// readings for the same entity share one bundle; otherwise the coordinates
// are rounded to coordPrecision and formatted deterministically.
func DeriveLocationKey(lat, lng float64, stableID string) LocationKey {
	if stableID != "" {
		return LocationKey("id:" + stableID)
	}
	// normalize negative zero so "-0.00000" can't split a partition
	if lat == 0 {
		lat = 0
	}
	if lng == 0 {
		lng = 0
	}
	return LocationKey("geo:" + formatCoord(lat) + "," + formatCoord(lng))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', coordPrecision, 64)
}

// Package codec defines the item serialization seam. A Codec encodes one
// result item at a time; framing of whole bundles is handled by the cache's
// wire format, so codecs stay oblivious to timestamps and collection ids.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

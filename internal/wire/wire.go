// Package wire implements the strict binary framing for persisted bundles.
// Provider values that fail validation here are treated as corruption by the
// cache and deleted on read.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version    byte = 1
	kindBundle byte = 1
)

var (
	ErrCorrupt = errors.New("poicache: corrupt entry")
	magic4     = [...]byte{'P', 'C', 'B', 'L'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Record is one collection's frame inside a bundle: its id, the unix-milli
// fetch timestamp, and the codec-encoded item payloads.
type Record struct {
	ID        string
	FetchedAt int64
	Items     [][]byte
}

// Bundle layout:
//
//	magic(4) | ver(1) | kind(1=bundle) | n(u32 be)
//	idLen(u16 be) | id(idLen) | fetchedAt(i64 be) | m(u32 be)
//	  vlen(u32 be) | payload(vlen) * m
//	* n
func EncodeBundle(recs []Record) ([]byte, error) {
	total := 4 + 1 + 1 + 4
	for _, r := range recs {
		if l := len(r.ID); l == 0 || l > 0xFFFF {
			return nil, errors.New("poicache: invalid collection id length in bundle")
		}
		total += 2 + len(r.ID) + 8 + 4
		for _, p := range r.Items {
			total += 4 + len(p)
		}
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindBundle)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint32(u4[:], uint32(len(recs)))
	buf.Write(u4[:])

	for _, r := range recs {
		binary.BigEndian.PutUint16(u2[:], uint16(len(r.ID)))
		buf.Write(u2[:])
		buf.WriteString(r.ID)

		binary.BigEndian.PutUint64(u8[:], uint64(r.FetchedAt))
		buf.Write(u8[:])

		binary.BigEndian.PutUint32(u4[:], uint32(len(r.Items)))
		buf.Write(u4[:])

		for _, p := range r.Items {
			binary.BigEndian.PutUint32(u4[:], uint32(len(p)))
			buf.Write(u4[:])
			buf.Write(p)
		}
	}

	return buf.Bytes(), nil
}

func DecodeBundle(b []byte) ([]Record, error) {
	const hdr = 4 + 1 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindBundle {
		return nil, ErrCorrupt
	}

	off := 6

	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if n < 0 {
		return nil, ErrCorrupt
	}

	// do not trust n for preallocation; a bogus header must not OOM us
	recs := make([]Record, 0, min(n, 64))
	for i := 0; i < n; i++ {
		if off+2 > len(b) {
			return nil, ErrCorrupt
		}
		idLen := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if idLen <= 0 || idLen > len(b)-off {
			return nil, ErrCorrupt
		}
		idBytes := b[off : off+idLen]
		off += idLen

		if off+8 > len(b) {
			return nil, ErrCorrupt
		}
		fetchedAt := int64(binary.BigEndian.Uint64(b[off : off+8]))
		off += 8

		if off+4 > len(b) {
			return nil, ErrCorrupt
		}
		m := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if m < 0 {
			return nil, ErrCorrupt
		}

		items := make([][]byte, 0, min(m, 256))
		for j := 0; j < m; j++ {
			if off+4 > len(b) {
				return nil, ErrCorrupt
			}
			vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
			off += 4
			if vlen < 0 || vlen > len(b)-off {
				return nil, ErrCorrupt
			}
			items = append(items, b[off:off+vlen])
			off += vlen
		}

		recs = append(recs, Record{
			ID:        string(idBytes), // one expected alloc per record
			FetchedAt: fetchedAt,
			Items:     items,
		})
	}

	if off != len(b) {
		// strict framing: trailing bytes mean corruption
		return nil, ErrCorrupt
	}

	return recs, nil
}

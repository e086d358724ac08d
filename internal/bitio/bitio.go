// Package bitio provides the fixed-width big-endian byte codec used by
// every multi-byte field in the archive and local member headers.
package bitio

import "encoding/binary"

// PutUint16 writes v to b[0:2] big-endian.
func PutUint16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }

// PutUint32 writes v to b[0:4] big-endian.
func PutUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }

// PutUint64 writes v to b[0:8] big-endian.
func PutUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// Uint16 reads a big-endian uint16 from b[0:2].
func Uint16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// Uint32 reads a big-endian uint32 from b[0:4].
func Uint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// Uint64 reads a big-endian uint64 from b[0:8].
func Uint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// AppendUint16 appends v big-endian to dst and returns the extended slice.
func AppendUint16(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

// AppendUint32 appends v big-endian to dst and returns the extended slice.
func AppendUint32(dst []byte, v uint32) []byte {
	return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// AppendUint64 appends v big-endian to dst and returns the extended slice.
func AppendUint64(dst []byte, v uint64) []byte {
	return append(dst,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

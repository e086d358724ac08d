package container

import "hash/crc32"

// crcTable is the standard IEEE 802.3 polynomial table, the same one the
// reference implementation hand-rolls; crc32.IEEETable is bit-for-bit
// identical, so we use the stdlib table instead of re-deriving it.
var crcTable = crc32.IEEETable

// CRC32 computes the IEEE CRC-32 of data: initial 0xFFFFFFFF, final XOR
// 0xFFFFFFFF, as specified for member payload integrity.
func CRC32(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// emptyPayloadCRC is the CRC-32 recorded for a zero-length payload.
const emptyPayloadCRC = 0xFFFFFFFF

// payloadCRC returns the header crc_32 value for a member's stored payload.
func payloadCRC(payload []byte) uint32 {
	if len(payload) == 0 {
		return emptyPayloadCRC
	}
	return CRC32(payload)
}

// PayloadCRC32 is the exported form of payloadCRC, used by the packer and
// unpacker to compute and verify a member's crc_32 field: the payload's
// CRC-32, or 0xFFFFFFFF when the payload is empty (spec.md §3.2).
func PayloadCRC32(payload []byte) uint32 {
	return payloadCRC(payload)
}

// Checksum implements the header tamper-detector: a
// XOR-rotate accumulator, distinct from (and much weaker than) CRC-32. It
// is not a library-standard algorithm, so there is no third-party
// implementation to reuse; it is hand-rolled here to match the reference
// byte-for-byte.
func Checksum(ranges ...[]byte) uint32 {
	acc := uint32(0xFFFFFFFF)
	i := 0
	for _, r := range ranges {
		for _, b := range r {
			acc ^= uint32(b) << (8 * uint(i%4))
			i++
		}
	}
	return acc
}

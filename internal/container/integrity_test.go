package container

import "testing"

func TestCRC32Known(t *testing.T) {
	if got, want := CRC32([]byte("This is a test")), uint32(0xC07A9F32); got != want {
		t.Fatalf("CRC32 = %#x, want %#x", got, want)
	}
}

func TestChecksumKnown(t *testing.T) {
	got := Checksum([]byte{0x01, 0x02, 0x03, 0x04})
	want := uint32(0xFBFCFDFE)
	if got != want {
		t.Fatalf("Checksum = %#x, want %#x", got, want)
	}
}

func TestChecksumMultipleRanges(t *testing.T) {
	whole := Checksum([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	split := Checksum([]byte{0x01, 0x02}, []byte{0x03, 0x04, 0x05})
	if whole != split {
		t.Fatalf("checksum must not depend on how ranges are split: %#x vs %#x", whole, split)
	}
}

func TestPayloadCRCEmpty(t *testing.T) {
	if got := payloadCRC(nil); got != emptyPayloadCRC {
		t.Fatalf("payloadCRC(nil) = %#x, want %#x", got, emptyPayloadCRC)
	}
}

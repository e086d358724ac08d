package bitio

import "testing"

func TestPutUint16RoundTrip(t *testing.T) {
	b := make([]byte, 2)
	PutUint16(b, 0xC1F2)
	if b[0] != 0xC1 || b[1] != 0xF2 {
		t.Fatalf("got % x, want c1 f2", b)
	}
	if got := Uint16(b); got != 0xC1F2 {
		t.Fatalf("Uint16 = %x, want c1f2", got)
	}
}

func TestUint64FromBytes(t *testing.T) {
	b := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	if got, want := Uint64(b), uint64(0x1122334455667788); got != want {
		t.Fatalf("Uint64 = %x, want %x", got, want)
	}
}

func TestAppendUint32(t *testing.T) {
	got := AppendUint32(nil, 0xDEADBEEF)
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %x, want %x", i, got[i], want[i])
		}
	}
}

package huffman

import (
	"bytes"
	"testing"
)

func TestEncodeEmptyIsHeaderOnly(t *testing.T) {
	out, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(out) != headerSize {
		t.Fatalf("len = %d, want %d", len(out), headerSize)
	}
	if out[0] != 0 {
		t.Fatalf("padding_length = %d, want 0", out[0])
	}

	back, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(back) != 0 {
		t.Fatalf("Decode(empty) = %v, want empty", back)
	}
}

func TestSingleSymbolRunLength(t *testing.T) {
	data := bytes.Repeat([]byte("A"), 1024)
	out, err := Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// A single distinct symbol gets a 1-bit code; 1024 bits pack into
	// exactly 128 bytes with no padding, on top of the 2049-byte header.
	if want := headerSize + 128; len(out) != want {
		t.Fatalf("len = %d, want %d", len(out), want)
	}
	if out[0] != 0 {
		t.Fatalf("padding_length = %d, want 0", out[0])
	}

	back, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestRoundTripVarious(t *testing.T) {
	all256 := make([]byte, 256)
	for i := range all256 {
		all256[i] = byte(i)
	}

	cases := [][]byte{
		nil,
		[]byte("x"),
		[]byte("hello, world"),
		all256,
		bytes.Repeat([]byte("abcabcabc"), 500),
		bytes.Repeat(all256, 10),
	}

	for i, data := range cases {
		enc, err := Encode(data)
		if err != nil {
			t.Fatalf("case %d: Encode: %v", i, err)
		}
		dec, err := Decode(enc)
		if err != nil {
			t.Fatalf("case %d: Decode: %v", i, err)
		}
		if !bytes.Equal(dec, data) {
			t.Fatalf("case %d: round trip mismatch: got %d bytes, want %d", i, len(dec), len(data))
		}
	}
}

func TestDecodeTruncatedStream(t *testing.T) {
	if _, err := Decode(make([]byte, headerSize-1)); err == nil {
		t.Fatalf("Decode: expected error on truncated stream")
	}
}

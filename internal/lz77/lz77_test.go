package lz77

import (
	"bytes"
	"strings"
	"testing"
)

func TestLongestMatchFindsRightmostTie(t *testing.T) {
	search := []byte("abcabcdaaabcdddabc")
	// The lookahead is "abcd" followed by the tail byte 'x'; longestMatch
	// treats the whole remaining window as its pattern and reports the
	// byte after the match as next.
	got := longestMatch(search, []byte("abcdx"), 0)

	if got.matchLength != 4 {
		t.Fatalf("matchLength = %d, want 4", got.matchLength)
	}
	if got.backPosition != 9 {
		t.Fatalf("backPosition = %d, want 9", got.backPosition)
	}
	if got.next != 'x' {
		t.Fatalf("next = %q, want 'x'", got.next)
	}
}

func TestEncodeEmptyIsEmpty(t *testing.T) {
	if out := Encode(nil); out != nil {
		t.Fatalf("Encode(nil) = %v, want nil", out)
	}
	if out := Decode(nil); out != nil {
		t.Fatalf("Decode(nil) = %v, want nil", out)
	}
}

func TestEncodeOutputIsWholeTokens(t *testing.T) {
	out := Encode([]byte("hello, hello, hello"))
	if len(out)%tokenSize != 0 {
		t.Fatalf("Encode output length %d is not a multiple of %d", len(out), tokenSize)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"a",
		"aaaa",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"abcabcdaaabcdddabc",
		"the quick brown fox jumps over the lazy dog",
		"the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly",
		strings.Repeat("ab", 400),
	}
	for _, in := range cases {
		got := Decode(Encode([]byte(in)))
		if !bytes.Equal(got, []byte(in)) {
			t.Fatalf("round trip mismatch for %q: got %q", in, got)
		}
	}
}

func TestRoundTripAcrossWindowBoundary(t *testing.T) {
	// Exercise the back-reference window eviction path with an input
	// longer than BackSize.
	in := bytes.Repeat([]byte("0123456789"), BackSize/5)
	got := Decode(Encode(in))
	if !bytes.Equal(got, in) {
		t.Fatal("round trip mismatch across window boundary")
	}
}

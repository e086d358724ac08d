// Package lz77 implements the fixed-window sliding-compression codec
// used for LZ77-compressed members: a KMP-based longest-match search
// against a bounded history buffer, emitting fixed 4-byte tokens.
package lz77

import "github.com/arcfile/arcfile/internal/bitio"

const (
	// FrontSize is the maximum lookahead (pattern) window.
	FrontSize = 255
	// BackSize is the maximum search (history) window.
	BackSize = 65535

	tokenSize = 4
)

type token struct {
	backPosition uint32
	matchLength  uint32
	next         byte
}

// kmpPrefix returns the standard KMP failure function of pattern.
func kmpPrefix(pattern []byte) []int {
	n := len(pattern)
	next := make([]int, n)
	for i := 1; i < n; i++ {
		j := next[i-1]
		for j > 0 && pattern[i] != pattern[j] {
			j = next[j-1]
		}
		if pattern[i] == pattern[j] {
			j++
		}
		next[i] = j
	}
	return next
}

// longestMatch scans data (the history buffer) for the longest prefix of
// pattern (the lookahead) that occurs anywhere within it, preferring the
// rightmost occurrence on ties. sentinel is used as next when the match
// consumes the whole of pattern.
func longestMatch(data, pattern []byte, sentinel byte) token {
	t := token{backPosition: 0, matchLength: 0, next: pattern[0]}
	next := kmpPrefix(pattern)

	j := 0
	for i := 0; i < len(data); i++ {
		for j > 0 && j < len(pattern) && data[i] != pattern[j] {
			j = next[j-1]
		}
		if j >= len(pattern) {
			j = next[j-1]
		}
		if pattern[j] == data[i] {
			j++
		}
		if uint32(j) >= t.matchLength {
			t.matchLength = uint32(j)
			t.backPosition = uint32(len(data) - i + j - 1)
			if j < len(pattern) {
				t.next = pattern[j]
			} else {
				t.next = sentinel
			}
		}
	}
	return t
}

// Encode compresses data into a sequence of 4-byte tokens: back_position
// (u16 BE) | match_length (u8) | next_char (u8). An empty input produces
// an empty output.
func Encode(data []byte) []byte {
	n := len(data)
	if n == 0 {
		return nil
	}

	var tokens []token
	pos := 0
	backStart := 0
	needTerminator := true

	for pos < n {
		frontEnd := pos + FrontSize
		if frontEnd > n {
			frontEnd = n
		}
		lookahead := data[pos:frontEnd]
		search := data[backStart:pos]

		t := longestMatch(search, lookahead, 0)
		if int(t.matchLength) == len(lookahead) && frontEnd < n {
			// The match fills the whole lookahead window but input
			// remains, so next_char is the real byte after the window.
			t.next = data[frontEnd]
		}
		tokens = append(tokens, t)

		for i := 0; i <= int(t.matchLength); i++ {
			if pos == n {
				needTerminator = false
				break
			}
			pos++
		}

		if pos-backStart > BackSize {
			backStart = pos - BackSize
		}
	}

	if needTerminator {
		tokens = append(tokens, token{})
	}

	out := make([]byte, 0, len(tokens)*tokenSize)
	for _, t := range tokens {
		out = bitio.AppendUint16(out, uint16(t.backPosition))
		out = append(out, byte(t.matchLength), t.next)
	}
	return out
}

// Decode reverses Encode.
func Decode(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}

	seq := make([]byte, 0, len(data))
	for off := 0; off+tokenSize <= len(data); off += tokenSize {
		backPos := int(bitio.Uint16(data[off:]))
		matchLen := int(data[off+2])
		next := data[off+3]

		for k := 0; k < matchLen; k++ {
			seq = append(seq, seq[len(seq)-backPos])
		}
		seq = append(seq, next)
	}

	return seq[:len(seq)-1]
}

package aescbc

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("a"),
		[]byte("exactly16bytes!!"),
		bytes.Repeat([]byte("x"), 1<<20),
	}
	for _, pt := range cases {
		ct, err := Encrypt([]byte("Test@123456"), pt)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		got, err := Decrypt([]byte("Test@123456"), ct)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if !bytes.Equal(got, pt) {
			t.Fatalf("round trip mismatch: got %q want %q", got, pt)
		}
	}
}

func TestWrongPasswordFails(t *testing.T) {
	ct, err := Encrypt([]byte("Test@123456"), []byte("secret payload"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt([]byte("Wrong@123456"), ct); err == nil {
		t.Fatalf("Decrypt with wrong password succeeded")
	}
}

func TestDistinctIVsPerCall(t *testing.T) {
	a, err := Encrypt([]byte("pw"), []byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := Encrypt([]byte("pw"), []byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two encryptions of the same plaintext produced identical ciphertext")
	}
}

func TestTruncatedCiphertextFails(t *testing.T) {
	if _, err := Decrypt([]byte("pw"), []byte("short")); err == nil {
		t.Fatalf("Decrypt on short ciphertext succeeded")
	}
}

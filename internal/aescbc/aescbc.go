// Package aescbc implements the AES-256-CBC confidentiality wrapper used
// for AES_256_CBC-encrypted members: a SHA-256-derived key, a random IV
// per call, and PKCS#7 padding, matching the cryptographic primitives
// spec.md §4.8 assumes are available as library services.
package aescbc

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/xerrors"
)

// ErrDecryptionFailed covers every way decryption can fail: ciphertext
// shorter than one IV, a length not a multiple of the block size, or
// PKCS#7 padding that does not verify. Treated by callers as "wrong
// password".
var ErrDecryptionFailed = xerrors.New("aescbc: decryption failed")

const ivSize = aes.BlockSize

// DeriveKey turns a password into the 32-byte AES-256 key. No salt is
// mixed in: spec.md §4.8 reserves the member header's salt field for a
// future KDF but does not use it here.
func DeriveKey(password []byte) []byte {
	sum := sha256.Sum256(password)
	return sum[:]
}

// Encrypt pads plaintext with PKCS#7, generates a random IV, and returns
// iv || ciphertext.
func Encrypt(password, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(DeriveKey(password))
	if err != nil {
		return nil, xerrors.Errorf("aescbc: new cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())

	out := make([]byte, ivSize+len(padded))
	iv := out[:ivSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, xerrors.Errorf("aescbc: read IV: %w", err)
	}

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out[ivSize:], padded)
	return out, nil
}

// Decrypt reverses Encrypt: split the IV, decrypt, and strip PKCS#7
// padding. Any structural problem with the ciphertext is reported as
// ErrDecryptionFailed so callers can surface the documented "wrong
// password" message without distinguishing causes.
func Decrypt(password, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(DeriveKey(password))
	if err != nil {
		return nil, xerrors.Errorf("aescbc: new cipher: %w", err)
	}

	if len(ciphertext) < ivSize || (len(ciphertext)-ivSize)%block.BlockSize() != 0 {
		return nil, ErrDecryptionFailed
	}
	iv := ciphertext[:ivSize]
	body := ciphertext[ivSize:]
	if len(body) == 0 {
		return nil, ErrDecryptionFailed
	}

	out := make([]byte, len(body))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(out, body)

	return pkcs7Unpad(out, block.BlockSize())
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := len(data)
	if n == 0 || n%blockSize != 0 {
		return nil, ErrDecryptionFailed
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > blockSize || padLen > n {
		return nil, ErrDecryptionFailed
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, ErrDecryptionFailed
		}
	}
	return data[:n-padLen], nil
}

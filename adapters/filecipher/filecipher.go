package filecipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"

	"gridxml/internal/errors"
)

const (
	keyLength  = 32     // AES-256
	iterations = 100000 // PBKDF2 rounds
)

// kdfSalt is fixed: the same secret must always derive the same key, so
// previously encrypted files stay readable. Changing the secret invalidates
// all of them; there is no key rotation or versioning.
var kdfSalt = []byte("gridxml.filecipher.v1")

// FileCipher encrypts and decrypts files with AES-256-CBC. The key is
// derived once at construction from the configured secret; each instance
// owns its key, so tests can run with distinct secrets side by side.
//
// At-rest format: base64(IV || ciphertext) as the entire file content,
// with a fresh random 16-byte IV per encryption call.
type FileCipher struct {
	key []byte
}

// New derives the AES key from secret and returns a ready cipher. An absent
// or weak secret is a deployment policy problem, not a functional one: the
// cipher itself works with any secret.
func New(secret string) *FileCipher {
	return &FileCipher{
		key: pbkdf2.Key([]byte(secret), kdfSalt, iterations, keyLength, sha256.New),
	}
}

// EncryptFile encrypts the content of inputPath and writes the base64
// at-rest representation to outputPath.
func (c *FileCipher) EncryptFile(inputPath, outputPath string) error {
	plaintext, err := os.ReadFile(inputPath)
	if err != nil {
		return errors.CipherError("failed to read plaintext file", err)
	}

	encoded, err := c.Encrypt(plaintext)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return errors.CipherError("failed to write encrypted file", err)
	}
	return nil
}

// DecryptFile reverses EncryptFile, writing the recovered plaintext bytes
// verbatim to outputPath.
func (c *FileCipher) DecryptFile(inputPath, outputPath string) error {
	encoded, err := os.ReadFile(inputPath)
	if err != nil {
		return errors.CipherError("failed to read encrypted file", err)
	}

	plaintext, err := c.Decrypt(encoded)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, plaintext, 0o644); err != nil {
		return errors.CipherError("failed to write plaintext file", err)
	}
	return nil
}

// Encrypt returns the base64 at-rest representation of plaintext
func (c *FileCipher) Encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, errors.CipherError("failed to create cipher", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, errors.CipherError("failed to generate IV", err)
	}

	padded := pad(plaintext, aes.BlockSize)
	raw := make([]byte, aes.BlockSize+len(padded))
	copy(raw, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(raw[aes.BlockSize:], padded)

	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(encoded, raw)
	return encoded, nil
}

// Decrypt decodes and decrypts the base64 at-rest representation
func (c *FileCipher) Decrypt(encoded []byte) ([]byte, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(raw, encoded)
	if err != nil {
		return nil, errors.CipherError("encrypted file is not valid base64", err)
	}
	raw = raw[:n]

	if len(raw) < aes.BlockSize {
		return nil, errors.CipherError("ciphertext truncated", nil)
	}
	iv, ciphertext := raw[:aes.BlockSize], raw[aes.BlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.CipherError("ciphertext is not a whole number of blocks", nil)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, errors.CipherError("failed to create cipher", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	return unpadded, nil
}

// pad applies PKCS#7 padding
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// unpad strips PKCS#7 padding, failing on any malformed suffix. A padding
// failure is how a wrong key or corrupted file surfaces under CBC.
func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.CipherError("invalid padding", nil)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errors.CipherError("invalid padding", nil)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.CipherError("invalid padding", nil)
		}
	}
	return data[:len(data)-n], nil
}

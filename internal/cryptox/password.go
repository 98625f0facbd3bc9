package cryptox

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// Sealed backup layout:
//
//	magic (6) | salt (16) | nonce (12) | AES-256-GCM ciphertext + tag
const (
	sealMagic      = "MRENC1"
	saltSize       = 16
	nonceSize      = 12
	keySize        = 32
	pbkdf2Iter     = 120_000
	sealHeaderSize = len(sealMagic) + saltSize + nonceSize
)

// ErrEmptyPassword is returned when sealing or opening with an empty password.
var ErrEmptyPassword = errors.New("password is empty")

func passwordKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iter, keySize, sha256.New)
}

// IsSealed reports whether blob starts with the sealed-backup magic.
func IsSealed(blob []byte) bool {
	return bytes.HasPrefix(blob, []byte(sealMagic))
}

// SealWithPassword encrypts plain with a key derived from password.
// Every call uses a fresh salt and nonce, so equal inputs give different output.
func SealWithPassword(plain []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	aesgcm, err := newGCM(passwordKey(password, salt))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, sealHeaderSize+len(plain)+aesgcm.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aesgcm.Seal(out, nonce, plain, []byte(sealMagic)), nil
}

// OpenWithPassword reverses SealWithPassword. A wrong password, a foreign
// blob or any modification of the bytes yields ErrDecrypt.
func OpenWithPassword(blob []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if !IsSealed(blob) || len(blob) < sealHeaderSize {
		return nil, ErrDecrypt
	}

	salt := blob[len(sealMagic) : len(sealMagic)+saltSize]
	nonce := blob[len(sealMagic)+saltSize : sealHeaderSize]

	aesgcm, err := newGCM(passwordKey(password, salt))
	if err != nil {
		return nil, err
	}

	plain, err := aesgcm.Open(nil, nonce, blob[sealHeaderSize:], []byte(sealMagic))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

package wallet

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	saltSize  = 16
	nonceSize = 24
)

// ErrWrongPassword is returned when sealed seed material cannot be opened.
var ErrWrongPassword = errors.New("wrong password")

type sealed struct {
	box   []byte
	salt  []byte
	nonce []byte
}

func deriveKey(password string, salt []byte) *[32]byte {
	var key [32]byte
	copy(key[:], argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32))
	return &key
}

// seal encrypts plaintext under password with a fresh salt and nonce.
func seal(rnd io.Reader, password string, plaintext []byte) (sealed, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	s := sealed{salt: make([]byte, saltSize), nonce: make([]byte, nonceSize)}
	if _, err := io.ReadFull(rnd, s.salt); err != nil {
		return sealed{}, fmt.Errorf("read salt: %w", err)
	}
	if _, err := io.ReadFull(rnd, s.nonce); err != nil {
		return sealed{}, fmt.Errorf("read nonce: %w", err)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], s.nonce)
	s.box = secretbox.Seal(nil, plaintext, &nonce, deriveKey(password, s.salt))
	return s, nil
}

// open decrypts s with password.
func open(s sealed, password string) ([]byte, error) {
	if len(s.nonce) != nonceSize {
		return nil, errors.New("corrupt sealed seed: bad nonce")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], s.nonce)
	out, ok := secretbox.Open(nil, s.box, &nonce, deriveKey(password, s.salt))
	if !ok {
		return nil, ErrWrongPassword
	}
	return out, nil
}

package wallet

import (
	"encoding/base32"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// AddressKind distinguishes shielded from transparent addresses.
type AddressKind string

const (
	KindShielded    AddressKind = "z"
	KindTransparent AddressKind = "t"
)

var addrEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// masterKey derives the 64-byte root key from seed entropy.
func masterKey(entropy []byte) ([]byte, error) {
	h, err := blake2b.New512(entropy)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	_, _ = h.Write([]byte("walletbridge/master"))
	return h.Sum(nil), nil
}

// deriveAddress deterministically derives the address of kind at index for
// chain. The same entropy always yields the same addresses.
func deriveAddress(master []byte, chain string, kind AddressKind, index uint32) (string, error) {
	size := 32
	if kind == KindTransparent {
		size = 20
	}

	h, err := blake2b.New(size, master[:32])
	if err != nil {
		return "", fmt.Errorf("derive address: %w", err)
	}
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)
	_, _ = h.Write([]byte(kind))
	_, _ = h.Write([]byte(chain))
	_, _ = h.Write(idx[:])
	sum := h.Sum(nil)

	switch kind {
	case KindShielded:
		return shieldedPrefix(chain) + addrEncoding.EncodeToString(sum), nil
	case KindTransparent:
		return transparentPrefix(chain) + hex.EncodeToString(sum), nil
	default:
		return "", fmt.Errorf("unknown address kind %q", kind)
	}
}

func shieldedPrefix(chain string) string {
	if chain == "main" {
		return "zs1"
	}
	return "ztestsapling1"
}

func transparentPrefix(chain string) string {
	if chain == "main" {
		return "t1"
	}
	return "tm"
}

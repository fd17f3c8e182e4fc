package wallet

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const (
	// phraseWords is the number of words in a seed phrase.
	phraseWords = 24

	// entropySize is the number of random bytes behind a 24-word phrase.
	entropySize = 32
)

// encodePhrase renders entropy as a BIP39 mnemonic.
func encodePhrase(entropy []byte) (string, error) {
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("encode seed phrase: %w", err)
	}
	return phrase, nil
}

// decodePhrase parses a 24-word BIP39 mnemonic, verifying its checksum.
// Case and surrounding whitespace are ignored.
func decodePhrase(phrase string) ([]byte, error) {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) != phraseWords {
		return nil, fmt.Errorf("invalid seed phrase: expected %d words, got %d", phraseWords, len(words))
	}
	entropy, err := bip39.EntropyFromMnemonic(strings.Join(words, " "))
	if err != nil {
		return nil, fmt.Errorf("invalid seed phrase: %w", err)
	}
	return entropy, nil
}

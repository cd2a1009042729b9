package utils

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

const mnemonicEntropyBits = 128

func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

func IsValidMnemonic(mnemonic string) error {
	words := strings.Fields(mnemonic)
	if len(words) != 12 {
		return fmt.Errorf("must have 12 words")
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("invalid mnemonic")
	}
	return nil
}

// DeriveKeyFromMnemonic walks the given bip32 derivation path starting from
// the master key of the mnemonic.
func DeriveKeyFromMnemonic(mnemonic string, derivationPath []uint32) (*bip32.Key, error) {
	if err := IsValidMnemonic(mnemonic); err != nil {
		return nil, err
	}

	seed := bip39.NewSeed(mnemonic, "")
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}

	next := key
	for _, idx := range derivationPath {
		var err error
		if next, err = next.NewChildKey(idx); err != nil {
			return nil, err
		}
	}
	return next, nil
}

package keychain

import (
	"encoding/hex"
	"fmt"

	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/ArkLabsHQ/settler/utils"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/tyler-smith/go-bip32"
)

const coinType = 4218

type service struct{}

// NewService returns a KeyService whose seeds are bip39 mnemonics and whose
// addresses are the hex encoded compressed public keys found at
// m/44'/4218'/security'/0'/index'.
func NewService() ports.KeyService {
	return service{}
}

func (service) NewSeed() (string, error) {
	return utils.NewMnemonic()
}

func (service) DeriveAddress(seed string, index uint32, security int) (string, error) {
	key, err := deriveKey(seed, index, security)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key.PublicKey().Key), nil
}

// Sign returns the DER encoded ECDSA signature of digest made with the
// private key behind the address at index.
func (service) Sign(seed string, index uint32, security int, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	key, err := deriveKey(seed, index, security)
	if err != nil {
		return nil, err
	}
	prvkey, _ := btcec.PrivKeyFromBytes(key.Key)
	return ecdsa.Sign(prvkey, digest).Serialize(), nil
}

func deriveKey(seed string, index uint32, security int) (*bip32.Key, error) {
	if security < 1 || security > 3 {
		return nil, fmt.Errorf("invalid security level %d", security)
	}
	if index >= bip32.FirstHardenedChild {
		return nil, fmt.Errorf("key index %d out of range", index)
	}

	derivationPath := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + coinType,
		bip32.FirstHardenedChild + uint32(security),
		bip32.FirstHardenedChild + 0,
		bip32.FirstHardenedChild + index,
	}
	return utils.DeriveKeyFromMnemonic(seed, derivationPath)
}

package keychain_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/ArkLabsHQ/settler/internal/infrastructure/keychain"
	"github.com/stretchr/testify/require"
)

const mnemonic = "reward liar quote property federal print outdoor attitude satoshi favorite special layer"

func TestKeychain(t *testing.T) {
	svc := keychain.NewService()

	t.Run("new seed", func(t *testing.T) {
		seed, err := svc.NewSeed()
		require.NoError(t, err)
		other, err := svc.NewSeed()
		require.NoError(t, err)
		require.NotEqual(t, seed, other)

		_, err = svc.DeriveAddress(seed, 0, 2)
		require.NoError(t, err)
	})

	t.Run("derive address", func(t *testing.T) {
		addr0, err := svc.DeriveAddress(mnemonic, 0, 2)
		require.NoError(t, err)
		require.Len(t, addr0, 66)

		again, err := svc.DeriveAddress(mnemonic, 0, 2)
		require.NoError(t, err)
		require.Equal(t, addr0, again)

		addr1, err := svc.DeriveAddress(mnemonic, 1, 2)
		require.NoError(t, err)
		require.NotEqual(t, addr0, addr1)

		otherSecurity, err := svc.DeriveAddress(mnemonic, 0, 3)
		require.NoError(t, err)
		require.NotEqual(t, addr0, otherSecurity)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := svc.DeriveAddress(mnemonic, 0, 0)
		require.Error(t, err)

		_, err = svc.DeriveAddress(mnemonic, 1<<31, 2)
		require.Error(t, err)

		_, err = svc.DeriveAddress("not a mnemonic", 0, 2)
		require.Error(t, err)
	})

	t.Run("sign", func(t *testing.T) {
		digest := sha256.Sum256([]byte("bundle essence"))

		sig, err := svc.Sign(mnemonic, 3, 2, digest[:])
		require.NoError(t, err)

		address, err := svc.DeriveAddress(mnemonic, 3, 2)
		require.NoError(t, err)
		rawPubkey, err := hex.DecodeString(address)
		require.NoError(t, err)
		pubkey, err := btcec.ParsePubKey(rawPubkey)
		require.NoError(t, err)

		signature, err := ecdsa.ParseDERSignature(sig)
		require.NoError(t, err)
		require.True(t, signature.Verify(digest[:], pubkey))

		other, err := svc.DeriveAddress(mnemonic, 4, 2)
		require.NoError(t, err)
		rawOther, err := hex.DecodeString(other)
		require.NoError(t, err)
		otherPubkey, err := btcec.ParsePubKey(rawOther)
		require.NoError(t, err)
		require.False(t, signature.Verify(digest[:], otherPubkey))

		_, err = svc.Sign(mnemonic, 3, 2, []byte("short"))
		require.Error(t, err)
		_, err = svc.Sign("not a mnemonic", 3, 2, digest[:])
		require.Error(t, err)
	})
}

package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ArkLabsHQ/settler/internal/core/ports"
)

// bundleEntry is one transaction of a bundle as serialized in the trytes
// handed to sendTrytes.
type bundleEntry struct {
	Address      string `json:"address"`
	Value        int64  `json:"value"`
	Tag          string `json:"tag,omitempty"`
	CurrentIndex int    `json:"currentIndex"`
	LastIndex    int    `json:"lastIndex"`
	Bundle       string `json:"bundle"`
	Signature    string `json:"signatureMessageFragment,omitempty"`
}

// composeBundle lays out outputs first, then one spending entry per input,
// then the remainder if any. Every input is spent in full.
func composeBundle(
	transfers []ports.Transfer, opts ports.TransferOptions,
) ([]bundleEntry, error) {
	if len(transfers) <= 0 {
		return nil, fmt.Errorf("missing transfers")
	}
	if len(opts.Inputs) <= 0 {
		return nil, fmt.Errorf("missing inputs")
	}

	var total, available uint64
	entries := make([]bundleEntry, 0, len(transfers)+len(opts.Inputs)+1)
	for _, t := range transfers {
		if len(t.Address) <= 0 {
			return nil, fmt.Errorf("missing transfer address")
		}
		if t.Value > math.MaxInt64-total {
			return nil, fmt.Errorf("transfer total overflows")
		}
		total += t.Value
		entries = append(entries, bundleEntry{
			Address: t.Address, Value: int64(t.Value), Tag: t.Tag,
		})
	}
	for _, in := range opts.Inputs {
		if in.Balance > math.MaxInt64-available {
			return nil, fmt.Errorf("input total overflows")
		}
		available += in.Balance
		entries = append(entries, bundleEntry{
			Address: in.Address, Value: -int64(in.Balance),
		})
	}
	if available < total {
		return nil, fmt.Errorf("inputs cover %d, needed %d", available, total)
	}
	if remainder := available - total; remainder > 0 {
		if len(opts.RemainderAddress) <= 0 {
			return nil, fmt.Errorf("missing remainder address")
		}
		entries = append(entries, bundleEntry{
			Address: opts.RemainderAddress, Value: int64(remainder),
		})
	}

	for i := range entries {
		entries[i].CurrentIndex = i
		entries[i].LastIndex = len(entries) - 1
	}
	digest := bundleDigest(entries)
	for i := range entries {
		entries[i].Bundle = hex.EncodeToString(digest)
	}
	return entries, nil
}

// bundleDigest hashes the essence of every entry, signatures excluded.
func bundleDigest(entries []bundleEntry) []byte {
	var essence strings.Builder
	for _, e := range entries {
		essence.WriteString(e.Address)
		essence.WriteByte('|')
		essence.WriteString(strconv.FormatInt(e.Value, 10))
		essence.WriteByte('|')
		essence.WriteString(e.Tag)
		essence.WriteByte('|')
		essence.WriteString(strconv.Itoa(e.CurrentIndex))
		essence.WriteByte('|')
		essence.WriteString(strconv.Itoa(e.LastIndex))
		essence.WriteByte('\n')
	}
	digest := sha256.Sum256([]byte(essence.String()))
	return digest[:]
}

func signBundle(
	entries []bundleEntry, inputs []ports.Input, signer ports.Signer,
) (ports.SignedBundle, error) {
	if signer == nil {
		return nil, fmt.Errorf("missing signer")
	}
	digest := bundleDigest(entries)

	signatures := make(map[string]string, len(inputs))
	for _, in := range inputs {
		sig, err := signer.Sign(in, digest)
		if err != nil {
			return nil, fmt.Errorf("failed to sign input %s: %w", in.Address, err)
		}
		signatures[in.Address] = hex.EncodeToString(sig)
	}

	bundle := make(ports.SignedBundle, 0, len(entries))
	for _, e := range entries {
		if e.Value < 0 {
			e.Signature = signatures[e.Address]
		}
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		bundle = append(bundle, string(raw))
	}
	return bundle, nil
}

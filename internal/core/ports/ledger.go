package ports

import "context"

// Transfer is a single output of a ledger transaction.
type Transfer struct {
	Address string
	Value   uint64
	Tag     string
}

// Input is an address being spent from.
type Input struct {
	Address  string
	KeyIndex uint32
	Security int
	Balance  uint64
}

type TransferOptions struct {
	Inputs           []Input
	Security         int
	RemainderAddress string
}

// SignedBundle is the opaque, signed payload returned by PrepareTransfer.
type SignedBundle []string

// Transaction is one ledger entry produced by a submitted bundle.
type Transaction struct {
	Hash    string
	Address string
	Value   int64
}

type LedgerClient interface {
	GetBalance(ctx context.Context, address string) (uint64, error)
	// PrepareTransfer composes the bundle spending opts.Inputs and has
	// signer sign it. It never reaches the network.
	PrepareTransfer(
		ctx context.Context, transfers []Transfer, opts TransferOptions, signer Signer,
	) (SignedBundle, error)
	Submit(
		ctx context.Context, bundle SignedBundle, depth, minWeightMagnitude int,
	) ([]Transaction, error)
	// GetConfirmationStatus returns one flag per hash, in the same order.
	GetConfirmationStatus(ctx context.Context, hashes []string) ([]bool, error)
}

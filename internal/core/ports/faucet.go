package ports

import "context"

type Faucet interface {
	// RequestFunds asks the faucet to send amount to address. The returned
	// flag mirrors the faucet's success field.
	RequestFunds(ctx context.Context, address string, amount uint64) (bool, error)
}

package ports

// KeyService generates seeds and deterministically derives addresses from them.
type KeyService interface {
	NewSeed() (string, error)
	DeriveAddress(seed string, index uint32, security int) (string, error)
	// Sign signs digest with the private key found at index.
	Sign(seed string, index uint32, security int, digest []byte) ([]byte, error)
}

// Signer signs the digest of a bundle on behalf of one of its inputs.
type Signer interface {
	Sign(input Input, digest []byte) ([]byte, error)
}

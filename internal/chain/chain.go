package chain

// Package chain holds the network precondition check performed before any
// write-path operation. The wallet/connection provider is external; the core
// only ever sees a per-call snapshot of its state.

import "errors"

// ID identifies an EVM network (e.g. 421614 for Arbitrum Sepolia).
type ID uint64

var (
	ErrNoWallet        = errors.New("no wallet bound")
	ErrNetworkMismatch = errors.New("wallet is bound to the wrong network")
)

// Snapshot captures the caller's wallet state at call time. It is taken once
// per request; the core never reads mutable ambient connection state.
type Snapshot struct {
	ChainID ID
	Sender  string // wallet address of the submitting account
}

// ValidateNetwork confirms the current chain matches the required one.
// Pure and synchronous. Fails closed: a missing or unknown current chain ID
// is a mismatch, never a pass.
func ValidateNetwork(current, required ID) error {
	if current == 0 || current != required {
		return ErrNetworkMismatch
	}
	return nil
}

// Validate checks the full write precondition: a wallet must be bound and it
// must be on the required network.
func (s Snapshot) Validate(required ID) error {
	if s.Sender == "" {
		return ErrNoWallet
	}
	return ValidateNetwork(s.ChainID, required)
}

// Package stub provides in-memory Solana clients for testing.
package stub

import (
	"context"
	"errors"

	"solana-flow-bot/internal/solana"
)

// ErrNotFound is returned when a stubbed value is not present.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	Balances     map[string]uint64
	Accounts     map[string]*solana.AccountInfo
	Transactions map[string]*solana.Transaction
	Signatures   map[string][]solana.SignatureInfo
	Slot         int64
	BlockTimes   map[int64]int64

	// BalanceErr, when set, is returned by GetBalance.
	BalanceErr error
}

var _ solana.RPCClient = (*RPCClient)(nil)

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:     make(map[string]uint64),
		Accounts:     make(map[string]*solana.AccountInfo),
		Transactions: make(map[string]*solana.Transaction),
		Signatures:   make(map[string][]solana.SignatureInfo),
		BlockTimes:   make(map[int64]int64),
	}
}

// GetBalance retrieves a stubbed lamport balance. Unknown accounts have a
// zero balance, matching mainnet semantics.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	if c.BalanceErr != nil {
		return 0, c.BalanceErr
	}
	return c.Balances[pubkey], nil
}

// GetAccountInfo retrieves stubbed account info, nil when absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	return c.Accounts[pubkey], nil
}

// GetSlot returns the stubbed current slot.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	return c.Slot, nil
}

// GetBlockTime returns the stubbed block time, nil when absent.
func (c *RPCClient) GetBlockTime(_ context.Context, slot int64) (*int64, error) {
	t, ok := c.BlockTimes[slot]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// GetSignaturesForAddress retrieves signatures for an address from the stub store.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	sigs, ok := c.Signatures[address]
	if !ok {
		return nil, nil
	}

	// Apply limit if specified
	if opts != nil && opts.Limit > 0 && opts.Limit < len(sigs) {
		return sigs[:opts.Limit], nil
	}

	return sigs, nil
}

// GetTransaction retrieves a transaction by signature from the stub store.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	tx, ok := c.Transactions[signature]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

// SetBalance sets an account's lamport balance.
func (c *RPCClient) SetBalance(pubkey string, lamports uint64) {
	c.Balances[pubkey] = lamports
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.Transactions[tx.Signature] = tx
}

// AddSignatures adds signatures for an address to the stub store.
func (c *RPCClient) AddSignatures(address string, sigs []solana.SignatureInfo) {
	c.Signatures[address] = sigs
}

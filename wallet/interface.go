// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"

	"github.com/cnsuite/cnwallet/pkg/cnunit"
)

// BalanceFilter selects which part of the wallet's output set a balance
// query covers.
type BalanceFilter uint8

const (
	// BalanceUnlocked covers outputs that are spendable now.
	BalanceUnlocked BalanceFilter = iota

	// BalanceLocked covers outputs that are still time locked.
	BalanceLocked
)

// AddressCodec parses destination address strings into their key
// components.
type AddressCodec interface {
	// ParseAddress parses an address string. It returns ErrBadAddress
	// (possibly wrapped) if the string is not a valid address.
	ParseAddress(address string) (AccountAddress, error)
}

// OutputSource exposes the wallet's owned output set. Implementations own
// the lifetime of the outputs; this package only reads them.
type OutputSource interface {
	// UnlockedOutputs returns all outputs that are currently spendable.
	UnlockedOutputs() []SpendableOutput

	// IsUsed reports whether the output has already been consumed by a
	// pending transaction.
	IsUsed(out SpendableOutput) bool

	// Balance returns the total amount of the outputs matched by the
	// filter.
	Balance(filter BalanceFilter) cnunit.Amount
}

// TxCache persistently tracks per-transaction and per-transfer records for
// the wallet. It is the serialization point for marking outputs as spent:
// a single output must never be consumed by two concurrent sends.
type TxCache interface {
	// RegisterPending records a new outgoing transaction before it is
	// built and returns its id.
	RegisterPending(amount, fee cnunit.Amount, extra []byte,
		transfers []Transfer, unlockTime uint64) TxID

	// Finalize records the built transaction's hash and change amount
	// and marks the spent outputs as used.
	Finalize(id TxID, hash Hash, change cnunit.Amount,
		spent []SpendableOutput) error

	// SetSendResult records the terminal outcome of the send attempt.
	// A nil sendErr marks the transaction as successfully relayed.
	SetSendResult(id TxID, sendErr error) error

	// UnconfirmedSpentAmount returns the total amount of outputs
	// consumed by not-yet-confirmed outgoing transactions.
	UnconfirmedSpentAmount() cnunit.Amount

	// UnconfirmedTransactionsAmount returns the total amount transferred
	// by not-yet-confirmed outgoing transactions, fees included.
	UnconfirmedTransactionsAmount() cnunit.Amount
}

// DecoyFetcher retrieves decoy ring candidates from the network. Fetch
// blocks until the candidates are available, the context is canceled, or
// the transport fails; transport errors are passed through to the caller
// unchanged.
type DecoyFetcher interface {
	// Fetch returns, for every requested amount, up to count candidate
	// outputs usable as ring decoys.
	Fetch(ctx context.Context, amounts []cnunit.Amount,
		count uint64) ([]DecoySet, error)
}

// Signer constructs and signs transactions from prepared sources and
// destinations. It owns all cryptography; this package never inspects the
// produced blob beyond size and hash.
type Signer interface {
	// Build produces a signed transaction blob.
	Build(keys AccountKeys, sources []TxSource, dests []TxDestination,
		extra []byte, unlockTime uint64) ([]byte, error)

	// Size returns the serialized size of the blob in bytes.
	Size(blob []byte) int

	// Hash returns the transaction hash of the blob.
	Hash(blob []byte) Hash
}

// Relayer submits a finished transaction blob to the network. Relay blocks
// until the network accepts or rejects the transaction; transport errors
// are passed through unchanged.
type Relayer interface {
	// Relay broadcasts the blob.
	Relay(ctx context.Context, blob []byte) error
}

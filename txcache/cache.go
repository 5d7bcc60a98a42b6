// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txcache provides an in-memory record of the wallet's outgoing
// transactions and the outputs they consume. It implements the
// wallet.TxCache interface and is the authority on which owned outputs are
// already claimed by an unconfirmed spend.
package txcache

import (
	"errors"
	"sync"
	"time"

	"github.com/cnsuite/cnwallet/pkg/cnunit"
	"github.com/cnsuite/cnwallet/wallet"
)

var (
	// ErrUnknownTx is returned when a transaction id is not present in
	// the cache.
	ErrUnknownTx = errors.New("unknown transaction id")

	// ErrAlreadyFinalized is returned when a transaction is finalized
	// twice.
	ErrAlreadyFinalized = errors.New("transaction already finalized")
)

// TxState describes where an outgoing transaction is in its lifecycle.
type TxState uint8

const (
	// TxStatePending means the transaction is registered but not yet
	// built.
	TxStatePending TxState = iota

	// TxStateBuilt means the transaction was built and its outputs are
	// reserved, but the relay has not resolved yet.
	TxStateBuilt

	// TxStateSent means the transaction was relayed successfully.
	TxStateSent

	// TxStateFailed means the send attempt terminated with an error.
	TxStateFailed
)

// String returns the string representation of a TxState.
func (s TxState) String() string {
	switch s {
	case TxStatePending:
		return "pending"

	case TxStateBuilt:
		return "built"

	case TxStateSent:
		return "sent"

	case TxStateFailed:
		return "failed"

	default:
		return "unknown tx state"
	}
}

// Record is a single outgoing transaction tracked by the cache.
type Record struct {
	// ID is the ordinal transaction id assigned at registration.
	ID wallet.TxID

	// Amount is the total transferred amount, fee included.
	Amount cnunit.Amount

	// Fee is the transaction fee.
	Fee cnunit.Amount

	// Extra is the opaque extra data embedded in the transaction.
	Extra []byte

	// Transfers is the submitted transfer list.
	Transfers []wallet.Transfer

	// UnlockTime is the requested unlock time of the new outputs.
	UnlockTime uint64

	// Hash is the transaction hash, set at finalization.
	Hash wallet.Hash

	// Change is the change amount returned to the wallet, set at
	// finalization.
	Change cnunit.Amount

	// SpentAmount is the total of the consumed outputs, set at
	// finalization.
	SpentAmount cnunit.Amount

	// State is the transaction's lifecycle state.
	State TxState

	// SendErr is the terminal error of the send attempt, nil on
	// success.
	SendErr error

	// Timestamp is the registration time.
	Timestamp time.Time
}

// spentKey identifies a consumed output. Global indexes are scoped per
// amount, so the pair is unique network wide.
type spentKey struct {
	amount      cnunit.Amount
	globalIndex uint64
}

// Cache is a thread-safe in-memory transaction cache.
type Cache struct {
	mu sync.Mutex

	// txs holds all records; a record's id is its index.
	txs []Record

	// spent maps consumed outputs to the transaction that consumed
	// them.
	spent map[spentKey]wallet.TxID
}

// A compile time check to ensure that Cache implements the interface.
var _ wallet.TxCache = (*Cache)(nil)

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		spent: make(map[spentKey]wallet.TxID),
	}
}

// RegisterPending records a new outgoing transaction and returns its id.
func (c *Cache) RegisterPending(amount, fee cnunit.Amount, extra []byte,
	transfers []wallet.Transfer, unlockTime uint64) wallet.TxID {

	c.mu.Lock()
	defer c.mu.Unlock()

	id := wallet.TxID(len(c.txs))
	c.txs = append(c.txs, Record{
		ID:         id,
		Amount:     amount,
		Fee:        fee,
		Extra:      extra,
		Transfers:  transfers,
		UnlockTime: unlockTime,
		State:      TxStatePending,
		Timestamp:  time.Now(),
	})

	return id
}

// Transaction returns a copy of the record for the given id.
func (c *Cache) Transaction(id wallet.TxID) (Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int(id) >= len(c.txs) {
		return Record{}, ErrUnknownTx
	}

	return c.txs[id], nil
}

// Finalize records the built transaction's hash and change and marks the
// consumed outputs as spent.
func (c *Cache) Finalize(id wallet.TxID, hash wallet.Hash,
	change cnunit.Amount, spent []wallet.SpendableOutput) error {

	c.mu.Lock()
	defer c.mu.Unlock()

	if int(id) >= len(c.txs) {
		return ErrUnknownTx
	}

	rec := &c.txs[id]
	if rec.State != TxStatePending {
		return ErrAlreadyFinalized
	}

	rec.Hash = hash
	rec.Change = change
	rec.State = TxStateBuilt

	for _, out := range spent {
		rec.SpentAmount += out.Amount
		c.spent[spentKey{out.Amount, out.GlobalIndex}] = id
	}

	return nil
}

// SetSendResult records the terminal outcome of the send attempt. A failed
// attempt releases the outputs it had claimed: the spend never reached the
// network, so the wallet state must show them as available again.
func (c *Cache) SetSendResult(id wallet.TxID, sendErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int(id) >= len(c.txs) {
		return ErrUnknownTx
	}

	rec := &c.txs[id]
	rec.SendErr = sendErr

	if sendErr == nil {
		rec.State = TxStateSent
		return nil
	}

	rec.State = TxStateFailed
	for key, owner := range c.spent {
		if owner == id {
			delete(c.spent, key)
		}
	}
	rec.SpentAmount = 0

	return nil
}

// IsSpent reports whether the output is consumed by an unconfirmed
// outgoing transaction. OutputSource implementations delegate their IsUsed
// checks here.
func (c *Cache) IsSpent(out wallet.SpendableOutput) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.spent[spentKey{out.Amount, out.GlobalIndex}]
	return ok
}

// UnconfirmedSpentAmount returns the total of the outputs consumed by
// transactions that were built but not yet confirmed.
func (c *Cache) UnconfirmedSpentAmount() cnunit.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total cnunit.Amount
	for i := range c.txs {
		if c.txs[i].State == TxStateBuilt ||
			c.txs[i].State == TxStateSent {

			total += c.txs[i].SpentAmount
		}
	}

	return total
}

// UnconfirmedTransactionsAmount returns the total amount transferred by
// unconfirmed outgoing transactions, fees included.
func (c *Cache) UnconfirmedTransactionsAmount() cnunit.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total cnunit.Amount
	for i := range c.txs {
		if c.txs[i].State == TxStateBuilt ||
			c.txs[i].State == TxStateSent {

			total += c.txs[i].Amount
		}
	}

	return total
}

// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import "github.com/cnsuite/cnwallet/pkg/cnunit"

// Event is a sealed interface for asynchronous wallet notifications
// delivered on the Sender's event channel. The sealed interface pattern is
// used here to provide compile-time safety, ensuring that only the
// intended implementations can be delivered.
type Event interface {
	// isEvent is a marker method that is part of the sealed interface
	// pattern. It is unexported, so it can only be implemented by types
	// within this package.
	isEvent()
}

// BalanceKind distinguishes the two balances reported by balance update
// events.
type BalanceKind uint8

const (
	// BalanceActual is the spendable balance: unlocked outputs minus
	// unconfirmed spends.
	BalanceActual BalanceKind = iota

	// BalancePending is the in-flight balance: locked outputs plus
	// unconfirmed change.
	BalancePending
)

// String returns the string representation of a BalanceKind.
func (k BalanceKind) String() string {
	switch k {
	case BalanceActual:
		return "actual"

	case BalancePending:
		return "pending"

	default:
		return "unknown balance kind"
	}
}

// BalanceUpdatedEvent reports a recomputed balance after a successful
// transaction build.
type BalanceUpdatedEvent struct {
	// Kind tells which balance was recomputed.
	Kind BalanceKind

	// Amount is the new balance value.
	Amount cnunit.Amount
}

// SendCompletedEvent is the terminal event of a send attempt. Exactly one
// is delivered per registered transaction id.
type SendCompletedEvent struct {
	// TxID is the transaction the attempt belongs to.
	TxID TxID

	// Err is nil on success, otherwise one of the package's recognized
	// error kinds.
	Err error
}

// isEvent marks BalanceUpdatedEvent as an implementation of the Event
// interface.
func (BalanceUpdatedEvent) isEvent() {}

// isEvent marks SendCompletedEvent as an implementation of the Event
// interface.
func (SendCompletedEvent) isEvent() {}

// A compile-time assertion to ensure that all types implementing the Event
// interface adhere to it.
var _ Event = BalanceUpdatedEvent{}
var _ Event = SendCompletedEvent{}

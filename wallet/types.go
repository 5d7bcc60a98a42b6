// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"encoding/hex"

	"github.com/cnsuite/cnwallet/pkg/cnunit"
)

// PublicKey is a 32-byte public key as used for output targets and
// transaction keys. The key material is opaque to this package; all curve
// operations happen behind the Signer interface.
type PublicKey [32]byte

// String returns the hex representation of the key.
func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// SecretKey is a 32-byte secret key. It is never inspected by this package
// and is only handed to the Signer.
type SecretKey [32]byte

// Hash is a 32-byte transaction hash.
type Hash [32]byte

// String returns the hex representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// TxID identifies a transaction registered in the transaction cache. IDs
// are ordinal and assigned by the cache at registration time.
type TxID uint64

// AccountAddress is the parsed form of a destination address.
type AccountAddress struct {
	// SpendPublicKey is the address owner's public spend key.
	SpendPublicKey PublicKey

	// ViewPublicKey is the address owner's public view key.
	ViewPublicKey PublicKey
}

// AccountKeys bundles the wallet's own address with the secret keys needed
// by the Signer to produce ring signatures.
type AccountKeys struct {
	// Address is the wallet's own public address. Change outputs are
	// sent here.
	Address AccountAddress

	// SpendSecretKey is the secret spend key.
	SpendSecretKey SecretKey

	// ViewSecretKey is the secret view key.
	ViewSecretKey SecretKey
}

// Transfer describes a single requested payment: an amount to a destination
// address. Transfers are immutable once submitted.
type Transfer struct {
	// Address is the destination address string.
	Address string

	// Amount is the amount to send, in atomic units. It must be nonzero
	// and representable as a positive signed value.
	Amount cnunit.Amount
}

// SpendableOutput is an unspent output owned by the wallet that is
// available for spending. Outputs are sourced from the wallet's output set
// and are never mutated by this package.
type SpendableOutput struct {
	// Amount is the output's value in atomic units.
	Amount cnunit.Amount

	// GlobalIndex is the output's position in the network-wide ordered
	// list of outputs of the same amount. It is used for ring
	// construction.
	GlobalIndex uint64

	// OutputKey is the one-time public key the output was sent to.
	OutputKey PublicKey

	// TxPublicKey is the public key of the transaction that created the
	// output.
	TxPublicKey PublicKey

	// TxIndex is the output's index within its owning transaction.
	TxIndex uint32
}

// RingMember is a candidate entry of a ring: an output identified by its
// global index together with its one-time output key.
type RingMember struct {
	// GlobalIndex is the member's global output index for its amount.
	GlobalIndex uint64

	// OutputKey is the member's one-time output key.
	OutputKey PublicKey
}

// DecoySet carries the decoy candidates fetched from the network for a
// single amount.
type DecoySet struct {
	// Amount is the output amount the candidates were fetched for.
	Amount cnunit.Amount

	// Outputs are the candidate ring members, in the order the network
	// returned them.
	Outputs []RingMember
}

// TxSource is a fully prepared ring signature input. The ring holds the
// decoy members and the real spent output, sorted by global index
// ascending, with the real output's position recorded in RealOutput.
type TxSource struct {
	// Amount is the spent amount.
	Amount cnunit.Amount

	// Ring is the ordered candidate list forming the ring. It contains
	// the real output exactly once and at most mixin decoys.
	Ring []RingMember

	// RealOutput is the index of the real spent output within Ring.
	RealOutput int

	// RealTxPublicKey is the public key of the transaction that created
	// the real output.
	RealTxPublicKey PublicKey

	// RealTxIndex is the real output's index within its owning
	// transaction.
	RealTxIndex uint32
}

// TxDestination is a single output of the transaction being built. It is
// produced only by the destination splitter so that every destination
// amount obeys the digit decomposition invariant.
type TxDestination struct {
	// Amount is the output value in atomic units.
	Amount cnunit.Amount

	// Address is the parsed destination address.
	Address AccountAddress
}

// DustPolicy controls how residual dust from the change decomposition is
// handled.
type DustPolicy struct {
	// Threshold is the dust threshold. Amounts at or below it are
	// considered dust.
	Threshold cnunit.Amount

	// AddToFee, when true, folds the change's dust into the transaction
	// fee instead of creating a dust-collection output.
	AddToFee bool

	// DustAddress is the fallback address that collects the change's
	// dust when AddToFee is false.
	DustAddress AccountAddress
}

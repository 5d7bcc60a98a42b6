// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import "errors"

var (
	// ErrZeroDestination is returned when a transfer list is empty or a
	// transfer carries a zero amount.
	ErrZeroDestination = errors.New("destination amount is zero")

	// ErrNegativeAmount is returned when a transfer amount, reinterpreted
	// as a signed value, is negative.
	ErrNegativeAmount = errors.New("destination amount is negative")

	// ErrSumOverflow is returned when summing the transfer amounts
	// overflows the fixed-width accumulator.
	ErrSumOverflow = errors.New("transfer amounts overflow")

	// ErrBadAddress is returned when a destination address fails to
	// parse.
	ErrBadAddress = errors.New("bad destination address")

	// ErrNotEnoughMoney is returned when the wallet's spendable outputs
	// cannot cover the needed amount.
	ErrNotEnoughMoney = errors.New("not enough money")

	// ErrMixinCountTooBig is returned when the network cannot supply the
	// requested number of decoy outputs for some spent amount.
	ErrMixinCountTooBig = errors.New("mixin count too big")

	// ErrTxSizeTooBig is returned when a constructed transaction exceeds
	// the upper size bound derived from the network block size limits.
	ErrTxSizeTooBig = errors.New("transaction size too big")

	// ErrTxCancelled is returned when a send attempt observes the
	// cancellation flag at one of its suspend points.
	ErrTxCancelled = errors.New("transaction cancelled")

	// ErrInternalWallet is returned for unrecognized internal failures,
	// such as signer errors, keeping the error surface stable.
	ErrInternalWallet = errors.New("internal wallet error")
)

// walletErrors enumerates the recognized error kinds that may be carried by
// a SendCompletedEvent as-is. Anything else is downgraded to
// ErrInternalWallet before crossing the package boundary.
var walletErrors = []error{
	ErrZeroDestination,
	ErrNegativeAmount,
	ErrSumOverflow,
	ErrBadAddress,
	ErrNotEnoughMoney,
	ErrMixinCountTooBig,
	ErrTxSizeTooBig,
	ErrTxCancelled,
	ErrInternalWallet,
}

// normalizeErr maps an arbitrary build-path failure onto the package's
// stable error surface. Recognized wallet errors pass through unchanged,
// everything else becomes ErrInternalWallet.
func normalizeErr(err error) error {
	if err == nil {
		return nil
	}

	for _, kind := range walletErrors {
		if errors.Is(err, kind) {
			return err
		}
	}

	return ErrInternalWallet
}

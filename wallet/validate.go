// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"fmt"

	"github.com/cnsuite/cnwallet/pkg/cnunit"
)

// countNeededMoney computes the total funds required to satisfy the
// transfer list plus the fee. Each transfer amount must be nonzero and
// positive when reinterpreted as a signed value, and the running total must
// never wrap around the signed range of the accumulator.
func countNeededMoney(fee cnunit.Amount,
	transfers []Transfer) (cnunit.Amount, error) {

	needed := fee
	for _, tr := range transfers {
		if tr.Amount == 0 {
			return 0, fmt.Errorf("%w: %s", ErrZeroDestination,
				tr.Address)
		}
		if int64(tr.Amount) < 0 {
			return 0, fmt.Errorf("%w: %s", ErrNegativeAmount,
				tr.Address)
		}

		needed += tr.Amount
		if int64(needed) < int64(tr.Amount) {
			return 0, ErrSumOverflow
		}
	}

	return needed, nil
}

// validateTransferAddresses parses every destination address up front so
// address failures surface synchronously, before any asynchronous step
// begins.
func (s *Sender) validateTransferAddresses(transfers []Transfer) error {
	for _, tr := range transfers {
		if _, err := s.cfg.Codec.ParseAddress(tr.Address); err != nil {
			return fmt.Errorf("%w: %q", ErrBadAddress, tr.Address)
		}
	}

	return nil
}

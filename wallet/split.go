// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"fmt"

	"github.com/cnsuite/cnwallet/pkg/cnunit"
)

// splitDestinations decomposes every transfer amount and the change amount
// into canonical digit chunks and returns the flat destination list for
// the transaction. A plain transfer's own dust is pushed as a destination
// of its own; only the change's dust is subject to the dust policy: it is
// either folded into the fee or emitted to the policy's dust-collection
// address.
//
// The change dust exceeding the policy threshold indicates a decomposition
// bug and fails with ErrInternalWallet.
func (s *Sender) splitDestinations(transfers []Transfer,
	change cnunit.Amount, policy DustPolicy) ([]TxDestination, error) {

	dests, dust, err := s.digitSplit(transfers, change, policy.Threshold)
	if err != nil {
		return nil, err
	}

	if policy.Threshold < dust {
		return nil, fmt.Errorf("%w: change dust %v exceeds "+
			"threshold %v", ErrInternalWallet, dust,
			policy.Threshold)
	}

	if dust != 0 && !policy.AddToFee {
		dests = append(dests, TxDestination{
			Amount:  dust,
			Address: policy.DustAddress,
		})
	}

	return dests, nil
}

// digitSplit applies the digit decomposition to the transfer amounts and
// the change amount. Transfer chunks and transfer dust both become
// destinations addressed to the transfer's recipient; change chunks go to
// the wallet's own address while the change's dust is returned to the
// caller for policy handling.
func (s *Sender) digitSplit(transfers []Transfer, change cnunit.Amount,
	threshold cnunit.Amount) ([]TxDestination, cnunit.Amount, error) {

	var dests []TxDestination
	for _, tr := range transfers {
		addr, err := s.cfg.Codec.ParseAddress(tr.Address)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %q", ErrBadAddress,
				tr.Address)
		}

		push := func(amount cnunit.Amount) {
			dests = append(dests, TxDestination{
				Amount:  amount,
				Address: addr,
			})
		}
		cnunit.DecomposeDigits(tr.Amount, threshold, push, push)
	}

	var dust cnunit.Amount
	cnunit.DecomposeDigits(change, threshold,
		func(chunk cnunit.Amount) {
			dests = append(dests, TxDestination{
				Amount:  chunk,
				Address: s.cfg.Keys.Address,
			})
		},
		func(changeDust cnunit.Amount) {
			dust = changeDust
		},
	)

	return dests, dust, nil
}

// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/cnsuite/cnwallet/pkg/cnunit"
	"github.com/stretchr/testify/require"
)

// destTotal sums the amounts of a destination list.
func destTotal(dests []TxDestination) cnunit.Amount {
	var total cnunit.Amount
	for _, d := range dests {
		total += d.Amount
	}

	return total
}

// TestSplitDestinationsDecomposition asserts that transfer amounts are
// decomposed into single-digit chunks addressed to the recipient and that
// change chunks are addressed to the wallet itself.
func TestSplitDestinationsDecomposition(t *testing.T) {
	t.Parallel()

	s, deps := newTestSender(t, nil)
	defer s.Stop()

	deps.codec.knowsTestAddresses()

	transfers := []Transfer{{Address: addrAlice, Amount: 340}}
	policy := DustPolicy{Threshold: 10, DustAddress: accountSelf}

	dests, err := s.splitDestinations(transfers, 200, policy)
	require.NoError(t, err)

	require.ElementsMatch(t, []TxDestination{
		{Amount: 40, Address: accountAlice},
		{Amount: 300, Address: accountAlice},
		{Amount: 200, Address: accountSelf},
	}, dests)
}

// TestSplitDestinationsTransferDust asserts that a transfer's own dust is
// paid to the recipient, not subjected to the dust policy.
func TestSplitDestinationsTransferDust(t *testing.T) {
	t.Parallel()

	s, deps := newTestSender(t, nil)
	defer s.Stop()

	deps.codec.knowsTestAddresses()

	// With a threshold of 100 the trailing 45 of the transfer amount is
	// dust, but it still belongs to the recipient.
	transfers := []Transfer{{Address: addrBob, Amount: 345}}
	policy := DustPolicy{Threshold: 100, DustAddress: accountSelf}

	dests, err := s.splitDestinations(transfers, 0, policy)
	require.NoError(t, err)

	require.ElementsMatch(t, []TxDestination{
		{Amount: 45, Address: accountBob},
		{Amount: 300, Address: accountBob},
	}, dests)
}

// TestSplitDestinationsChangeDust covers the two dust policy branches for
// change dust: collection at the dust address versus folding into the fee.
func TestSplitDestinationsChangeDust(t *testing.T) {
	t.Parallel()

	dustAddr := AccountAddress{
		SpendPublicKey: PublicKey{0xdd},
		ViewPublicKey:  PublicKey{0xde},
	}

	t.Run("dust to collection address", func(t *testing.T) {
		t.Parallel()

		s, deps := newTestSender(t, nil)
		defer s.Stop()

		deps.codec.knowsTestAddresses()

		policy := DustPolicy{Threshold: 100, DustAddress: dustAddr}

		// Change of 234 splits into a 200 chunk and 34 of dust.
		dests, err := s.splitDestinations(
			[]Transfer{{Address: addrAlice, Amount: 1000}},
			234, policy,
		)
		require.NoError(t, err)

		require.ElementsMatch(t, []TxDestination{
			{Amount: 1000, Address: accountAlice},
			{Amount: 200, Address: accountSelf},
			{Amount: 34, Address: dustAddr},
		}, dests)
	})

	t.Run("dust added to fee", func(t *testing.T) {
		t.Parallel()

		s, deps := newTestSender(t, nil)
		defer s.Stop()

		deps.codec.knowsTestAddresses()

		policy := DustPolicy{
			Threshold:   100,
			AddToFee:    true,
			DustAddress: dustAddr,
		}

		dests, err := s.splitDestinations(
			[]Transfer{{Address: addrAlice, Amount: 1000}},
			234, policy,
		)
		require.NoError(t, err)

		// The 34 dust units vanish from the outputs, implicitly
		// raising the fee.
		require.ElementsMatch(t, []TxDestination{
			{Amount: 1000, Address: accountAlice},
			{Amount: 200, Address: accountSelf},
		}, dests)
		require.Equal(t, cnunit.Amount(1200), destTotal(dests))
	})
}

// TestSplitDestinationsDustInvariant asserts that change dust above the
// policy threshold is reported as an internal error, since the digit
// decomposition can never legitimately produce it.
func TestSplitDestinationsDustInvariant(t *testing.T) {
	t.Parallel()

	s, deps := newTestSender(t, nil)
	defer s.Stop()

	deps.codec.knowsTestAddresses()

	// With a threshold that is not a decimal order, dust accumulated
	// over several digits can exceed it: change 49 with threshold 45
	// collects 9 and 40 into 49 units of dust.
	policy := DustPolicy{Threshold: 45, DustAddress: accountSelf}

	_, err := s.splitDestinations(
		[]Transfer{{Address: addrAlice, Amount: 1000}}, 49, policy,
	)
	require.ErrorIs(t, err, ErrInternalWallet)
}

// TestSplitDestinationsBadAddress asserts that an address failing to parse
// during splitting maps to ErrBadAddress.
func TestSplitDestinationsBadAddress(t *testing.T) {
	t.Parallel()

	s, deps := newTestSender(t, nil)
	defer s.Stop()

	deps.codec.On("ParseAddress", "bogus").Return(
		AccountAddress{}, errParseMock,
	)

	_, err := s.splitDestinations(
		[]Transfer{{Address: "bogus", Amount: 100}}, 0,
		DustPolicy{Threshold: 10, DustAddress: accountSelf},
	)
	require.ErrorIs(t, err, ErrBadAddress)
}

// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cnsuite/cnwallet/pkg/cnunit"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	errFetchMock = errors.New("fetch error")
	errRelayMock = errors.New("relay error")
	errSignMock  = errors.New("sign error")
	errParseMock = errors.New("parse error")
)

var (
	// addrAlice and friends are destination address strings used
	// throughout the tests. Their parsed forms are fixed by the mock
	// codec below.
	addrAlice = "cnAliceDestinationAddress"
	addrBob   = "cnBobDestinationAddress"
	addrSelf  = "cnWalletOwnAddress"

	accountAlice = AccountAddress{
		SpendPublicKey: PublicKey{0xa1},
		ViewPublicKey:  PublicKey{0xa2},
	}
	accountBob = AccountAddress{
		SpendPublicKey: PublicKey{0xb1},
		ViewPublicKey:  PublicKey{0xb2},
	}
	accountSelf = AccountAddress{
		SpendPublicKey: PublicKey{0x51},
		ViewPublicKey:  PublicKey{0x52},
	}

	testKeys = AccountKeys{
		Address:        accountSelf,
		SpendSecretKey: SecretKey{0x53},
		ViewSecretKey:  SecretKey{0x54},
	}
)

// mockCodec implements AddressCodec.
type mockCodec struct {
	mock.Mock
}

func (m *mockCodec) ParseAddress(address string) (AccountAddress, error) {
	args := m.Called(address)
	return args.Get(0).(AccountAddress), args.Error(1)
}

// knowsTestAddresses wires the common fixture addresses into the codec.
func (m *mockCodec) knowsTestAddresses() {
	m.On("ParseAddress", addrAlice).Return(accountAlice, nil).Maybe()
	m.On("ParseAddress", addrBob).Return(accountBob, nil).Maybe()
	m.On("ParseAddress", addrSelf).Return(accountSelf, nil).Maybe()
}

// mockOutputSource implements OutputSource.
type mockOutputSource struct {
	mock.Mock
}

func (m *mockOutputSource) UnlockedOutputs() []SpendableOutput {
	args := m.Called()
	return args.Get(0).([]SpendableOutput)
}

func (m *mockOutputSource) IsUsed(out SpendableOutput) bool {
	args := m.Called(out)
	return args.Bool(0)
}

func (m *mockOutputSource) Balance(filter BalanceFilter) cnunit.Amount {
	args := m.Called(filter)
	return args.Get(0).(cnunit.Amount)
}

// mockTxCache implements TxCache.
type mockTxCache struct {
	mock.Mock
}

func (m *mockTxCache) RegisterPending(amount, fee cnunit.Amount,
	extra []byte, transfers []Transfer, unlockTime uint64) TxID {

	args := m.Called(amount, fee, extra, transfers, unlockTime)
	return args.Get(0).(TxID)
}

func (m *mockTxCache) Finalize(id TxID, hash Hash, change cnunit.Amount,
	spent []SpendableOutput) error {

	args := m.Called(id, hash, change, spent)
	return args.Error(0)
}

func (m *mockTxCache) SetSendResult(id TxID, sendErr error) error {
	args := m.Called(id, sendErr)
	return args.Error(0)
}

func (m *mockTxCache) UnconfirmedSpentAmount() cnunit.Amount {
	args := m.Called()
	return args.Get(0).(cnunit.Amount)
}

func (m *mockTxCache) UnconfirmedTransactionsAmount() cnunit.Amount {
	args := m.Called()
	return args.Get(0).(cnunit.Amount)
}

// mockDecoyFetcher implements DecoyFetcher.
type mockDecoyFetcher struct {
	mock.Mock
}

func (m *mockDecoyFetcher) Fetch(ctx context.Context,
	amounts []cnunit.Amount, count uint64) ([]DecoySet, error) {

	args := m.Called(ctx, amounts, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]DecoySet), args.Error(1)
}

// mockSigner implements Signer.
type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) Build(keys AccountKeys, sources []TxSource,
	dests []TxDestination, extra []byte,
	unlockTime uint64) ([]byte, error) {

	args := m.Called(keys, sources, dests, extra, unlockTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockSigner) Size(blob []byte) int {
	args := m.Called(blob)
	return args.Int(0)
}

func (m *mockSigner) Hash(blob []byte) Hash {
	args := m.Called(blob)
	return args.Get(0).(Hash)
}

// mockRelayer implements Relayer.
type mockRelayer struct {
	mock.Mock
}

func (m *mockRelayer) Relay(ctx context.Context, blob []byte) error {
	args := m.Called(ctx, blob)
	return args.Error(0)
}

// mockSenderDeps holds the mocked collaborators of a Sender under test.
type mockSenderDeps struct {
	codec   *mockCodec
	outputs *mockOutputSource
	cache   *mockTxCache
	decoys  *mockDecoyFetcher
	signer  *mockSigner
	relayer *mockRelayer
}

// newTestSender creates a Sender with mocked collaborators. The dust
// policy defaults to a threshold of 10 atomic units with dust collected
// at the wallet's own address, so small test amounts exercise the digit
// decomposition.
func newTestSender(t *testing.T,
	policy *DustPolicy) (*Sender, *mockSenderDeps) {

	t.Helper()

	deps := &mockSenderDeps{
		codec:   &mockCodec{},
		outputs: &mockOutputSource{},
		cache:   &mockTxCache{},
		decoys:  &mockDecoyFetcher{},
		signer:  &mockSigner{},
		relayer: &mockRelayer{},
	}

	if policy == nil {
		policy = &DustPolicy{
			Threshold:   10,
			DustAddress: accountSelf,
		}
	}

	params := MainNetParams
	s, err := NewSender(&Config{
		Codec:      deps.codec,
		Outputs:    deps.outputs,
		Cache:      deps.cache,
		Decoys:     deps.decoys,
		Signer:     deps.signer,
		Relayer:    deps.relayer,
		Keys:       testKeys,
		Params:     &params,
		DustPolicy: policy,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		deps.codec.AssertExpectations(t)
		deps.outputs.AssertExpectations(t)
		deps.cache.AssertExpectations(t)
		deps.decoys.AssertExpectations(t)
		deps.signer.AssertExpectations(t)
		deps.relayer.AssertExpectations(t)
	})

	return s, deps
}

// makeOutput builds a spendable output with key material derived from the
// global index.
func makeOutput(amount cnunit.Amount, globalIndex uint64) SpendableOutput {
	return SpendableOutput{
		Amount:      amount,
		GlobalIndex: globalIndex,
		OutputKey:   PublicKey{byte(globalIndex), 0x01},
		TxPublicKey: PublicKey{byte(globalIndex), 0x02},
		TxIndex:     uint32(globalIndex % 4),
	}
}

// waitForCompletion consumes events until the completion event for id
// arrives and returns it. Balance updates seen along the way are appended
// to balances when it is non-nil.
func waitForCompletion(t *testing.T, s *Sender, id TxID,
	balances *[]BalanceUpdatedEvent) SendCompletedEvent {

	t.Helper()

	for {
		select {
		case e := <-s.Events():
			switch ev := e.(type) {
			case SendCompletedEvent:
				require.Equal(t, id, ev.TxID)
				return ev

			case BalanceUpdatedEvent:
				if balances != nil {
					*balances = append(*balances, ev)
				}
			}

		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for completion event")
		}
	}
}

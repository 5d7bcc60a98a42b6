// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet implements the spend path of a ring-signature wallet: it
// turns a list of requested transfers into a fully formed, signed and
// relayed transaction, orchestrating coin selection, decoy mixing,
// destination splitting and the asynchronous fetch/build/relay protocol.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cnsuite/cnwallet/pkg/cnunit"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd/queue"
)

var (
	// ErrInvalidConfig is returned when the sender configuration is
	// missing a required collaborator.
	ErrInvalidConfig = errors.New("invalid sender config")

	// ErrSenderStopped is returned when a send is submitted after Stop
	// has been called.
	ErrSenderStopped = errors.New("sender stopped")
)

// defaultEventQueueSize is the initial buffer size of the event queue. The
// queue grows without bound, so a slow event consumer can never block a
// send attempt.
const defaultEventQueueSize = 16

// sendState is the state of a single send attempt's orchestration.
type sendState uint8

const (
	// stateInit is the initial state: amounts validated, coins selected,
	// transaction registered.
	stateInit sendState = iota

	// stateAwaitingDecoys waits for the network to supply decoy
	// candidates. Skipped when the ring size is zero.
	stateAwaitingDecoys

	// stateBuilding prepares inputs, splits destinations and invokes the
	// signer.
	stateBuilding

	// stateAwaitingRelay waits for the relay of the built transaction to
	// resolve.
	stateAwaitingRelay

	// stateDone is the terminal state.
	stateDone
)

// String returns the string representation of a sendState.
func (st sendState) String() string {
	switch st {
	case stateInit:
		return "init"

	case stateAwaitingDecoys:
		return "awaiting decoys"

	case stateBuilding:
		return "building"

	case stateAwaitingRelay:
		return "awaiting relay"

	case stateDone:
		return "done"

	default:
		return "unknown send state"
	}
}

// outPoint identifies an owned output for in-flight reservation purposes.
type outPoint struct {
	amount      cnunit.Amount
	globalIndex uint64
}

// sendContext is the mutable per-attempt state shared across the
// orchestration steps. It is owned exclusively by one in-flight send and
// never shared across concurrent attempts.
type sendContext struct {
	// txID is the transaction id assigned by the cache.
	txID TxID

	// mixin is the requested ring size: the number of decoys bundled
	// with the real output of every input.
	mixin uint64

	// dustPolicy is the dust policy in effect for this attempt.
	dustPolicy DustPolicy

	// transfers is the submitted transfer list.
	transfers []Transfer

	// extra is opaque extra data embedded in the transaction.
	extra []byte

	// unlockTime is the requested unlock time of the new outputs.
	unlockTime uint64

	// neededMoney is fee plus the sum of the transfer amounts.
	neededMoney cnunit.Amount

	// foundMoney is the total of the selected outputs.
	foundMoney cnunit.Amount

	// selected is the list of spendable outputs chosen to fund the
	// transaction.
	selected []SpendableOutput

	// decoys holds the fetched decoy candidates, one set per selected
	// output, in selection order.
	decoys []DecoySet

	// blob is the signed transaction produced by the Signer.
	blob []byte
}

// Config holds the collaborators and parameters the Sender needs. All
// fields except DustPolicy are required.
type Config struct {
	// Codec parses destination address strings.
	Codec AddressCodec

	// Outputs exposes the wallet's owned output set.
	Outputs OutputSource

	// Cache tracks per-transaction records and spent outputs.
	Cache TxCache

	// Decoys fetches ring decoy candidates from the network.
	Decoys DecoyFetcher

	// Signer builds and signs transactions.
	Signer Signer

	// Relayer broadcasts finished transactions.
	Relayer Relayer

	// Keys is the wallet's own address and secret key material.
	Keys AccountKeys

	// Params are the network constants used to derive the transaction
	// size bound and the default dust threshold.
	Params *NetworkParams

	// DustPolicy optionally overrides the default dust policy, which
	// uses the network's default threshold and collects dust at the
	// wallet's own address.
	DustPolicy *DustPolicy
}

// validate checks that every required collaborator is present.
func (cfg *Config) validate() error {
	switch {
	case cfg.Codec == nil:
		return fmt.Errorf("%w: nil Codec", ErrInvalidConfig)
	case cfg.Outputs == nil:
		return fmt.Errorf("%w: nil Outputs", ErrInvalidConfig)
	case cfg.Cache == nil:
		return fmt.Errorf("%w: nil Cache", ErrInvalidConfig)
	case cfg.Decoys == nil:
		return fmt.Errorf("%w: nil Decoys", ErrInvalidConfig)
	case cfg.Signer == nil:
		return fmt.Errorf("%w: nil Signer", ErrInvalidConfig)
	case cfg.Relayer == nil:
		return fmt.Errorf("%w: nil Relayer", ErrInvalidConfig)
	case cfg.Params == nil:
		return fmt.Errorf("%w: nil Params", ErrInvalidConfig)
	}

	return nil
}

// SendRequest bundles the parameters of a single send submission.
type SendRequest struct {
	// Transfers is the non-empty list of requested payments.
	Transfers []Transfer

	// Fee is the transaction fee in atomic units.
	Fee cnunit.Amount

	// Extra is opaque extra data to embed in the transaction.
	Extra []byte

	// RingSize is the number of decoy outputs to mix with every spent
	// output. Zero disables mixing.
	RingSize uint64

	// UnlockTime is the unlock time for the created outputs.
	UnlockTime uint64
}

// Sender turns transfer requests into signed, relayed transactions. Each
// submitted request is validated and funded synchronously, then driven
// through the asynchronous fetch/build/relay protocol by a dedicated
// goroutine. Completion is reported exclusively through SendCompletedEvent
// on the event channel, exactly once per registered transaction id.
type Sender struct {
	cfg Config

	// dustPolicy is the effective dust policy.
	dustPolicy DustPolicy

	// maxTxSize is the upper transaction size bound in bytes.
	maxTxSize uint64

	// selectMtx serializes coin selection, output reservation and
	// transaction registration across concurrent sends. It is the
	// guarantee that a single output is never selected twice.
	selectMtx sync.Mutex

	// reserved tracks outputs selected by in-flight attempts that the
	// cache has not yet marked as used. Guarded by selectMtx.
	reserved map[outPoint]struct{}

	// stopped is the cancellation flag, observed at the orchestration
	// suspend points. Best effort: an already issued network call is not
	// aborted, only its result is discarded.
	stopped atomic.Bool

	// eventQueue decouples event production from consumption so send
	// attempts never block on a slow consumer.
	eventQueue *queue.ConcurrentQueue

	// events is the typed output channel fed from eventQueue.
	events chan Event

	wg       sync.WaitGroup
	fwdWg    sync.WaitGroup
	stopOnce sync.Once
}

// senderShutdown is an internal sentinel queued by Stop once every send
// attempt has terminated. Because the queue is FIFO, the forwarder has
// delivered all real events by the time it observes the sentinel.
type senderShutdown struct{}

// NewSender creates a Sender from the given config and starts its event
// delivery machinery.
func NewSender(cfg *Config) (*Sender, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dustPolicy := DustPolicy{
		Threshold:   cfg.Params.DefaultDustThreshold,
		DustAddress: cfg.Keys.Address,
	}
	if cfg.DustPolicy != nil {
		dustPolicy = *cfg.DustPolicy
	}

	s := &Sender{
		cfg:        *cfg,
		dustPolicy: dustPolicy,
		maxTxSize:  cfg.Params.maxTxSize(),
		reserved:   make(map[outPoint]struct{}),
		eventQueue: queue.NewConcurrentQueue(defaultEventQueueSize),
		events:     make(chan Event),
	}

	s.eventQueue.Start()

	s.fwdWg.Add(1)
	go s.forwardEvents()

	return s, nil
}

// Events returns the channel on which balance updates and send completions
// are delivered. Callers must keep consuming the channel until it is
// closed, which happens after Stop has been called and all in-flight
// attempts have reached their terminal event.
func (s *Sender) Events() <-chan Event {
	return s.events
}

// Stop sets the cancellation flag, waits for in-flight send attempts to
// reach their terminal event and shuts down event delivery. Cancellation
// is best effort: attempts blocked on an issued network call terminate
// once that call resolves.
func (s *Sender) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)

		// Any Send that passed the cancellation check has already
		// registered its goroutine under selectMtx, so taking the
		// lock here makes the following Wait cover every attempt.
		s.selectMtx.Lock()
		s.selectMtx.Unlock() //nolint:staticcheck // lock barrier

		// Wait for every orchestration goroutine to emit its
		// terminal event before tearing down the queue.
		s.wg.Wait()

		s.eventQueue.ChanIn() <- senderShutdown{}
		s.fwdWg.Wait()
		s.eventQueue.Stop()
		close(s.events)
	})
}

// forwardEvents drains the concurrent queue into the typed event channel
// until it observes the shutdown sentinel.
func (s *Sender) forwardEvents() {
	defer s.fwdWg.Done()

	for {
		item := <-s.eventQueue.ChanOut()
		if _, ok := item.(senderShutdown); ok {
			return
		}

		s.events <- item.(Event)
	}
}

// notify queues an event for delivery. It never blocks.
func (s *Sender) notify(e Event) {
	s.eventQueue.ChanIn() <- e
}

// Send validates and funds the request synchronously, registers the
// pending transaction in the cache and launches the asynchronous
// orchestration. The returned id identifies the eventual
// SendCompletedEvent; validation and funding failures are returned
// directly and produce no event.
func (s *Sender) Send(ctx context.Context, req *SendRequest) (TxID, error) {
	if s.stopped.Load() {
		return 0, ErrSenderStopped
	}

	if len(req.Transfers) == 0 {
		return 0, fmt.Errorf("%w: no transfers", ErrZeroDestination)
	}

	if err := s.validateTransferAddresses(req.Transfers); err != nil {
		return 0, err
	}

	needed, err := countNeededMoney(req.Fee, req.Transfers)
	if err != nil {
		return 0, err
	}

	sctx := &sendContext{
		mixin:       req.RingSize,
		dustPolicy:  s.dustPolicy,
		transfers:   req.Transfers,
		extra:       req.Extra,
		unlockTime:  req.UnlockTime,
		neededMoney: needed,
	}

	// Selection, reservation and registration form the serialization
	// point: no other send may observe a partially funded attempt.
	s.selectMtx.Lock()

	// Re-check under the lock so a concurrent Stop either sees this
	// attempt's goroutine registered or this submission is refused.
	if s.stopped.Load() {
		s.selectMtx.Unlock()
		return 0, ErrSenderStopped
	}

	addDust := req.RingSize == 0
	sctx.selected, sctx.foundMoney = s.selectOutputs(
		needed, addDust, s.dustPolicy.Threshold,
	)

	if sctx.foundMoney < needed {
		s.selectMtx.Unlock()
		return 0, fmt.Errorf("%w: found %v, needed %v",
			ErrNotEnoughMoney, sctx.foundMoney, needed)
	}

	s.reserveOutputs(sctx.selected)

	sctx.txID = s.cfg.Cache.RegisterPending(
		needed, req.Fee, req.Extra, req.Transfers, req.UnlockTime,
	)

	// Register the orchestration goroutine before releasing the lock so
	// Stop's wait is guaranteed to cover it.
	s.wg.Add(1)

	s.selectMtx.Unlock()

	log.Infof("Sending transaction %d: %d transfers, fee %v, ring "+
		"size %d", sctx.txID, len(req.Transfers), req.Fee,
		req.RingSize)

	go s.run(ctx, sctx)

	return sctx.txID, nil
}

// run drives a single send attempt through its states until a terminal
// event has been emitted.
func (s *Sender) run(ctx context.Context, sctx *sendContext) {
	defer s.wg.Done()

	state := stateInit
	for {
		next, err := s.advance(ctx, sctx, state)
		if err != nil || next == stateDone {
			s.complete(sctx, err)
			return
		}

		log.Tracef("Transaction %d: %v -> %v", sctx.txID, state,
			next)
		state = next
	}
}

// advance executes one state of the orchestration and returns the next
// state. A non-nil error terminates the attempt with that error as the
// completion outcome.
func (s *Sender) advance(ctx context.Context, sctx *sendContext,
	state sendState) (sendState, error) {

	switch state {
	case stateInit:
		if s.stopped.Load() {
			return stateDone, ErrTxCancelled
		}

		if sctx.mixin > 0 {
			return stateAwaitingDecoys, nil
		}

		return stateBuilding, nil

	case stateAwaitingDecoys:
		return s.awaitDecoys(ctx, sctx)

	case stateBuilding:
		// Cancellation observed after decoys arrive (or directly
		// after Init when no decoys are needed).
		if s.stopped.Load() {
			return stateDone, ErrTxCancelled
		}

		if err := s.buildTransaction(sctx); err != nil {
			return stateDone, normalizeErr(err)
		}

		s.notifyBalanceChanged()

		return stateAwaitingRelay, nil

	case stateAwaitingRelay:
		// Cancellation observed before the relay is dispatched. Once
		// dispatched, the relay result always completes the
		// lifecycle.
		if s.stopped.Load() {
			return stateDone, ErrTxCancelled
		}

		return stateDone, s.cfg.Relayer.Relay(ctx, sctx.blob)

	default:
		return stateDone, fmt.Errorf("%w: unexpected state %v",
			ErrInternalWallet, state)
	}
}

// awaitDecoys fetches decoy candidates for every selected amount and
// validates that the network satisfied the requested ring size. One extra
// candidate per amount is requested so the real output can be skipped
// without starving the ring. Candidates are counted by distinct global
// index, so a response padded with duplicates or with the real output
// itself cannot sneak an undersized ring past validation.
func (s *Sender) awaitDecoys(ctx context.Context,
	sctx *sendContext) (sendState, error) {

	amounts := make([]cnunit.Amount, len(sctx.selected))
	for i := range sctx.selected {
		amounts[i] = sctx.selected[i].Amount
	}

	decoys, err := s.cfg.Decoys.Fetch(ctx, amounts, sctx.mixin+1)

	// Cancellation wins over the fetch outcome; its result is discarded.
	if s.stopped.Load() {
		return stateDone, ErrTxCancelled
	}
	if err != nil {
		// Transport errors pass through to the completion event
		// unchanged.
		return stateDone, err
	}

	// Decoy sets pair with the selected outputs positionally, so a
	// response with a different set count cannot be attributed to its
	// inputs.
	if len(decoys) != len(sctx.selected) {
		return stateDone, fmt.Errorf("%w: got %d decoy sets for %d "+
			"inputs", ErrInternalWallet, len(decoys),
			len(sctx.selected))
	}

	for i, set := range decoys {
		distinct := distinctDecoys(
			set.Outputs, sctx.selected[i].GlobalIndex,
		)
		if distinct < sctx.mixin {
			return stateDone, fmt.Errorf("%w: got %d distinct "+
				"candidates for amount %v, need %d",
				ErrMixinCountTooBig, distinct, set.Amount,
				sctx.mixin)
		}
	}

	sctx.decoys = decoys

	return stateBuilding, nil
}

// buildTransaction prepares the ring inputs, computes the change, splits
// the destinations, invokes the signer and finalizes the cache record.
func (s *Sender) buildTransaction(sctx *sendContext) error {
	sources := prepareInputs(sctx.selected, sctx.decoys, sctx.mixin)

	var change cnunit.Amount
	if sctx.foundMoney > sctx.neededMoney {
		change = sctx.foundMoney - sctx.neededMoney
	}

	dests, err := s.splitDestinations(
		sctx.transfers, change, sctx.dustPolicy,
	)
	if err != nil {
		return err
	}

	blob, err := s.cfg.Signer.Build(
		s.cfg.Keys, sources, dests, sctx.extra, sctx.unlockTime,
	)
	if err != nil {
		return err
	}

	if size := uint64(s.cfg.Signer.Size(blob)); size >= s.maxTxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTxSizeTooBig,
			size, s.maxTxSize)
	}

	hash := s.cfg.Signer.Hash(blob)

	err = s.cfg.Cache.Finalize(sctx.txID, hash, change, sctx.selected)
	if err != nil {
		return err
	}

	sctx.blob = blob

	log.Debugf("Built transaction %d (%v): %d sources, %d "+
		"destinations, change %v", sctx.txID, hash, len(sources),
		len(dests), change)
	log.Tracef("Transaction %d sources: %v", sctx.txID,
		newLogClosure(func() string {
			return spew.Sdump(sources)
		}))

	return nil
}

// complete releases the attempt's output reservations, records the
// terminal outcome in the cache and emits the completion event. It runs
// exactly once per registered transaction id.
func (s *Sender) complete(sctx *sendContext, sendErr error) {
	s.releaseOutputs(sctx.selected)

	if err := s.cfg.Cache.SetSendResult(sctx.txID, sendErr); err != nil {
		log.Errorf("Unable to record send result for transaction "+
			"%d: %v", sctx.txID, err)
	}

	if sendErr != nil {
		log.Warnf("Transaction %d failed: %v", sctx.txID, sendErr)
	} else {
		log.Infof("Transaction %d relayed", sctx.txID)
	}

	s.notify(SendCompletedEvent{TxID: sctx.txID, Err: sendErr})
}

// reserveOutputs marks the outputs as claimed by an in-flight attempt.
// Callers must hold selectMtx.
func (s *Sender) reserveOutputs(outs []SpendableOutput) {
	for _, out := range outs {
		s.reserved[outPoint{out.Amount, out.GlobalIndex}] = struct{}{}
	}
}

// releaseOutputs removes the in-flight reservations. By the time an
// attempt completes, the cache either marked the outputs used (successful
// finalize) or the spend never happened, so the reservation is obsolete
// either way.
func (s *Sender) releaseOutputs(outs []SpendableOutput) {
	s.selectMtx.Lock()
	defer s.selectMtx.Unlock()

	for _, out := range outs {
		delete(s.reserved, outPoint{out.Amount, out.GlobalIndex})
	}
}

// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

// notifyBalanceChanged recomputes the actual and pending balances from the
// current output set and transaction cache state and queues one update
// event for each. It is a pure function of collaborator state: re-running
// it without intervening cache changes yields identical balances.
func (s *Sender) notifyBalanceChanged() {
	unconfirmedSpent := s.cfg.Cache.UnconfirmedSpentAmount()
	change := unconfirmedSpent - s.cfg.Cache.UnconfirmedTransactionsAmount()

	actual := s.cfg.Outputs.Balance(BalanceUnlocked) - unconfirmedSpent
	pending := s.cfg.Outputs.Balance(BalanceLocked) + change

	log.Debugf("Balance updated: actual=%v, pending=%v", actual, pending)

	s.notify(BalanceUpdatedEvent{Kind: BalanceActual, Amount: actual})
	s.notify(BalanceUpdatedEvent{Kind: BalancePending, Amount: pending})
}

// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"math/rand"

	"github.com/cnsuite/cnwallet/pkg/cnunit"
)

// popRandom removes and returns a uniformly random element of vec. Removal
// is O(1): the chosen element is swapped with the last one before the
// slice is shrunk, so element order is not preserved and must not be
// relied upon by callers.
func popRandom[T any](vec *[]T) T {
	v := *vec
	idx := rand.Intn(len(v))

	res := v[idx]
	v[idx] = v[len(v)-1]
	*vec = v[:len(v)-1]

	return res
}

// selectOutputs picks unused unlocked outputs until their total covers
// needed or the pools are exhausted. Outputs are partitioned into a normal
// pool (amount above dustThreshold) and a dust pool; picks are uniformly
// random without replacement, draining the normal pool first. When addDust
// is set and dust is available, a single random dust output is selected
// up front to preserve some output diversity in rings without decoys.
//
// The returned total may be below needed; it is the caller's
// responsibility to fail with ErrNotEnoughMoney in that case. Marking the
// selected outputs as used is the transaction cache's responsibility;
// outputs claimed by other in-flight attempts are excluded via the
// sender's reservation set, so the caller must hold selectMtx.
func (s *Sender) selectOutputs(needed cnunit.Amount, addDust bool,
	dustThreshold cnunit.Amount) ([]SpendableOutput, cnunit.Amount) {

	outputs := s.cfg.Outputs.UnlockedOutputs()

	var normal, dust []int
	for i := range outputs {
		if s.cfg.Outputs.IsUsed(outputs[i]) {
			continue
		}

		op := outPoint{outputs[i].Amount, outputs[i].GlobalIndex}
		if _, ok := s.reserved[op]; ok {
			continue
		}

		if outputs[i].Amount > dustThreshold {
			normal = append(normal, i)
		} else {
			dust = append(dust, i)
		}
	}

	selectOneDust := addDust && len(dust) != 0

	var (
		selected []SpendableOutput
		found    cnunit.Amount
	)
	for found < needed && (len(normal) != 0 || len(dust) != 0) {
		var idx int
		switch {
		case selectOneDust:
			idx = popRandom(&dust)
			selectOneDust = false

		case len(normal) != 0:
			idx = popRandom(&normal)

		default:
			idx = popRandom(&dust)
		}

		selected = append(selected, outputs[idx])
		found += outputs[idx].Amount
	}

	log.Debugf("Selected %d outputs totalling %v for needed %v",
		len(selected), found, needed)

	return selected, found
}

// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"sort"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// prepareInputs builds one ring signature source per selected output. The
// decoy candidates for selected[i] are decoys[i]; when no decoys were
// fetched (ring size 0) the ring consists of the real output alone.
//
// Candidates are sorted by global index ascending and appended to the ring
// until mixin decoys are collected, skipping the real output's own global
// index and any duplicates the network may have returned. The real output
// is then inserted at the position dictated by its global index, keeping
// the ring sorted: downstream verification requires rings ordered by
// global index, and that order is public information, so the real entry's
// position hides nothing and need not be randomized.
func prepareInputs(selected []SpendableOutput, decoys []DecoySet,
	mixin uint64) []TxSource {

	sources := make([]TxSource, 0, len(selected))
	for i := range selected {
		out := &selected[i]

		src := TxSource{
			Amount:          out.Amount,
			RealTxPublicKey: out.TxPublicKey,
			RealTxIndex:     out.TxIndex,
		}

		if len(decoys) != 0 {
			src.Ring = pickDecoys(
				decoys[i].Outputs, out.GlobalIndex, mixin,
			)
		}

		// Insert the real output at its sorted position.
		pos := sort.Search(len(src.Ring), func(j int) bool {
			return src.Ring[j].GlobalIndex >= out.GlobalIndex
		})

		src.Ring = append(src.Ring, RingMember{})
		copy(src.Ring[pos+1:], src.Ring[pos:])
		src.Ring[pos] = RingMember{
			GlobalIndex: out.GlobalIndex,
			OutputKey:   out.OutputKey,
		}
		src.RealOutput = pos

		sources = append(sources, src)
	}

	return sources
}

// distinctDecoys counts the candidates usable as ring decoys for the
// output at realIndex: duplicates and the real output's own index do not
// count.
func distinctDecoys(candidates []RingMember, realIndex uint64) uint64 {
	seen := fn.NewSet[uint64]()
	for _, cand := range candidates {
		if cand.GlobalIndex == realIndex {
			continue
		}
		seen.Add(cand.GlobalIndex)
	}

	return uint64(len(seen))
}

// pickDecoys returns up to mixin ring members drawn from candidates in
// ascending global index order, excluding realIndex and duplicate global
// indexes.
func pickDecoys(candidates []RingMember, realIndex uint64,
	mixin uint64) []RingMember {

	sorted := make([]RingMember, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].GlobalIndex < sorted[b].GlobalIndex
	})

	seen := fn.NewSet[uint64]()
	ring := make([]RingMember, 0, mixin)
	for _, cand := range sorted {
		if cand.GlobalIndex == realIndex {
			continue
		}
		if seen.Contains(cand.GlobalIndex) {
			continue
		}
		seen.Add(cand.GlobalIndex)

		ring = append(ring, cand)
		if uint64(len(ring)) >= mixin {
			break
		}
	}

	return ring
}

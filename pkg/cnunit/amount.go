// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cnunit provides a set of types for dealing with CryptoNote
// currency units. All amounts are expressed in indivisible atomic units.
package cnunit

import (
	"fmt"
	"strconv"
)

const (
	// DecimalPoint is the number of decimal places used when displaying
	// an amount in whole coins.
	DecimalPoint = 12

	// UnitsPerCoin is the number of atomic units in one whole coin.
	UnitsPerCoin = 1_000_000_000_000
)

// Amount represents a quantity of currency in atomic units.
type Amount uint64

// String returns the amount formatted as a fixed-point decimal number of
// whole coins, e.g. 1500000000000 -> "1.500000000000".
func (a Amount) String() string {
	coins := uint64(a) / UnitsPerCoin
	units := uint64(a) % UnitsPerCoin

	return strconv.FormatUint(coins, 10) + "." +
		fmt.Sprintf("%0*d", DecimalPoint, units)
}

// DecomposeDigits splits amount into canonical digit chunks, where each
// chunk is a single nonzero decimal digit multiplied by a power of ten
// (e.g. 340 -> 300 + 40). Chunks are reported through chunkFn. The low
// order digits that fall below dustThreshold are accumulated and reported
// once through dustFn; after the first chunk at or above the threshold is
// seen, all remaining chunks go through chunkFn regardless of size.
//
// The sum of all reported chunks and dust always equals amount. The dust
// value is strictly less than dustThreshold whenever the threshold is a
// power of ten, since it is a sum of distinct decimal orders each below
// the threshold.
func DecomposeDigits(amount, dustThreshold Amount,
	chunkFn func(Amount), dustFn func(Amount)) {

	if amount == 0 {
		return
	}

	var (
		dustHandled bool
		dust        Amount
		order       Amount = 1
	)

	for amount != 0 {
		chunk := (amount % 10) * order
		amount /= 10
		order *= 10

		if !dustHandled && chunk < dustThreshold {
			dust += chunk
			continue
		}

		if !dustHandled && dust != 0 {
			dustFn(dust)
			dustHandled = true
		}

		if chunk != 0 {
			chunkFn(chunk)
		}
	}

	if !dustHandled && dust != 0 {
		dustFn(dust)
	}
}

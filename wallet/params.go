// Copyright (c) 2025 The cnsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import "github.com/cnsuite/cnwallet/pkg/cnunit"

// NetworkParams holds the network constants the sender needs to derive its
// transaction size bound and default dust handling.
type NetworkParams struct {
	// BlockGrantedFullRewardZone is the block size, in bytes, up to
	// which a block is granted the full base reward.
	BlockGrantedFullRewardZone uint64

	// MinerTxBlobReservedSize is the number of bytes reserved in a block
	// for the miner transaction blob.
	MinerTxBlobReservedSize uint64

	// DefaultDustThreshold is the default dust threshold for coin
	// selection and destination splitting.
	DefaultDustThreshold cnunit.Amount
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = NetworkParams{
	BlockGrantedFullRewardZone: 20000,
	MinerTxBlobReservedSize:    600,
	DefaultDustThreshold:       1_000_000,
}

// maxTxSize returns the upper transaction size bound: a transaction larger
// than this cannot fit a block that still earns the full reward.
func (p *NetworkParams) maxTxSize() uint64 {
	return p.BlockGrantedFullRewardZone*2 - p.MinerTxBlobReservedSize
}

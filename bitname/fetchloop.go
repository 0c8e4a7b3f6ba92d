// Copyright 2014 The go-probeum Authors
// This file is part of the go-bitname library.
//
// The go-bitname library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-bitname library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-bitname library. If not, see <http://www.gnu.org/licenses/>.

package bitname

import (
	"context"
	"math/rand"
	"time"

	"github.com/bitname/go-bitname/common"
)

// minFetchSleep is the +100us floor spec.md §4.2/§9 and
// SPEC_FULL.md's SUPPLEMENTED FEATURES call for: a documented constant
// rather than a special case, since Go's time.Sleep(0) returns immediately
// and never blocks the way the original runtime's zero-sleep did.
const minFetchSleep = 100 * time.Microsecond

// fetchSleepSpread is the randomized range width added atop minFetchSleep,
// giving the [100, 20100) microsecond interval of spec.md §4.2.
const fetchSleepSpread = 20000 * time.Microsecond

// RunFetchLoop is spec.md §4.2's single cooperative task per channel: each
// iteration broadcasts inventory, issues at most one transaction fetch and
// at most one block fetch, then sleeps a
// randomized interval. It returns when ctx is cancelled, checked both at
// the top of each iteration and before the sleep (spec.md §4.2, §5).
func (cc *ChannelCore) RunFetchLoop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return ErrCancelled
		}

		cc.broadcastInv()

		if id, ok := cc.trxMgr.FindNextQuery(); ok {
			if cc.fetchFromBestConnection(NameFetchKind, fetchTarget{shortID: id}) {
				cc.trxMgr.ItemQueried(id)
			}
		}
		if id, ok := cc.blockMgr.FindNextQuery(); ok {
			if cc.fetchFromBestConnection(BlockFetchKind, fetchTarget{blockID: id}) {
				cc.blockMgr.ItemQueried(id)
			}
		}

		select {
		case <-ctx.Done():
			return ErrCancelled
		case <-time.After(minFetchSleep + time.Duration(rand.Int63n(int64(fetchSleepSpread)))):
		}
	}
}

// broadcastInv is spec.md §4.3: for each broadcast manager independently,
// if it has new content since the last broadcast, compute and send the
// per-peer inventory diff, then mark every peer as knowing the sent items
// regardless of send outcome, finally clearing the flag once after the
// per-peer loop.
func (cc *ChannelCore) broadcastInv() {
	conns := cc.connections()

	if cc.trxMgr.HasNewSinceBroadcast() {
		for _, conn := range conns {
			cd := cc.viewFor(conn)
			inv := cc.trxMgr.GetInventory(cd.TrxView)
			if len(inv) > 0 {
				if err := conn.Send(Message{Type: NameInvMsg, Payload: NameInvPayload{IDs: inv}}); err != nil {
					cc.log.Debug("name_inv send failed", "conn", conn.ID(), "err", err)
				}
			}
			cd.TrxView.UpdateKnown(inv)
		}
		cc.trxMgr.SetNewSinceBroadcast(false)
	}

	if cc.blockMgr.HasNewSinceBroadcast() {
		for _, conn := range conns {
			cd := cc.viewFor(conn)
			inv := cc.blockMgr.GetInventory(cd.BlockView)
			if len(inv) > 0 {
				if err := conn.Send(Message{Type: BlockInvMsg, Payload: BlockInvPayload{IDs: inv}}); err != nil {
					cc.log.Debug("block_inv send failed", "conn", conn.ID(), "err", err)
				}
			}
			cd.BlockView.UpdateKnown(inv)
		}
		cc.blockMgr.SetNewSinceBroadcast(false)
	}
}

// fetchKind distinguishes which PeerView/wire-message pair
// fetchFromBestConnection operates on.
type fetchKind int

const (
	NameFetchKind fetchKind = iota
	BlockFetchKind
)

type fetchTarget struct {
	shortID common.ShortHash
	blockID common.Hash
}

// fetchFromBestConnection is spec.md §4.4: select the first connection
// whose peer-view reports !knows(id) && !has_pending_request(); mark
// requested(id) and send the matching get_* message. If none qualifies,
// drop the request silently — the item remains Unknown and is retried next
// iteration. It reports whether a request was sent.
func (cc *ChannelCore) fetchFromBestConnection(kind fetchKind, t fetchTarget) bool {
	for _, conn := range cc.connections() {
		cd := cc.viewFor(conn)
		switch kind {
		case NameFetchKind:
			if cd.TrxView.Knows(t.shortID) || cd.TrxView.HasPendingRequest() {
				continue
			}
			cd.TrxView.Requested(t.shortID)
			if err := conn.Send(Message{Type: GetNameHeaderMsg, Payload: GetNameHeaderPayload{ID: t.shortID}}); err != nil {
				cc.log.Debug("get_name_header send failed", "conn", conn.ID(), "err", err)
			}
			return true
		case BlockFetchKind:
			if cd.BlockView.Knows(t.blockID) || cd.BlockView.HasPendingRequest() {
				continue
			}
			cd.BlockView.Requested(t.blockID)
			if err := conn.Send(Message{Type: GetBlockMsg, Payload: GetBlockPayload{ID: t.blockID}}); err != nil {
				cc.log.Debug("get_block send failed", "conn", conn.ID(), "err", err)
			}
			return true
		}
	}
	return false
}

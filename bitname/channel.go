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

// Package bitname is the gossip/sync engine of spec.md §1-2: the per-peer
// channel state, the two coupled broadcast managers, the block
// reconstruction download manager and the fetch loop, grounded on the
// original bts::bitname::name_channel_impl
// (_examples/original_source/src/bitname/bitname_channel.cpp) and on the
// handler/backend shape of go-probeum's probe package.
package bitname

import (
	"fmt"
	"sync"
	"time"

	"github.com/bitname/go-bitname/common"
	"github.com/bitname/go-bitname/log"
	"github.com/bitname/go-bitname/namedb"
	"github.com/bitname/go-bitname/nametype"
)

// defaultRetention bounds the BroadcastManager LRUs; see broadcast_manager.go.
const defaultRetention = 8192

// retentionHorizon is spec.md §4.1's "at least two confirmed-block epochs"
// used by ClearOldInventory's wall-clock sweep.
const retentionHorizon = 10 * time.Minute

// Delegate is the optional host observer of spec.md §6: "pending_name_trx(h),
// name_block_added(b)". Embed DefaultDelegate to get no-op defaults, the
// way spec.md §9 describes "an interface/trait with defaulted no-op
// methods."
type Delegate interface {
	PendingNameTrx(h *nametype.NameHeader)
	NameBlockAdded(b *nametype.NameBlock)
}

// DefaultDelegate is a no-op Delegate; embed it to implement only the
// callbacks a host cares about.
type DefaultDelegate struct{}

func (DefaultDelegate) PendingNameTrx(*nametype.NameHeader) {}
func (DefaultDelegate) NameBlockAdded(*nametype.NameBlock)   {}

// ChannelCore owns the two BroadcastManagers, the reassembler vector, the
// NameDB handle and the delegate (spec.md §3 "Ownership"). It is the single
// logical task runner spec.md §5 describes: every exported method here is
// meant to be called from that one task, except AddConnection/RemoveConnection
// which a host's connection-accept path may call from elsewhere and which
// take their own lock.
type ChannelCore struct {
	mu   sync.Mutex
	db   namedb.NameDB
	log  log.Logger

	trxMgr   *BroadcastManager[common.ShortHash, nametype.NameHeader]
	blockMgr *BroadcastManager[common.Hash, nametype.NameBlock]

	reassemblers []*BlockReassembler

	delegate Delegate

	connMu sync.Mutex
	conns  map[string]Connection

	viewsMu sync.Mutex
	views   map[string]*channelData

	cancelled bool
}

// NewChannelCore builds a channel bound to db. Configure is called
// separately per spec.md §6's two-step configure/set_delegate lifecycle.
func NewChannelCore(db namedb.NameDB) *ChannelCore {
	return &ChannelCore{
		db:       db,
		log:      log.New("module", "bitname"),
		trxMgr:   NewBroadcastManager[common.ShortHash, nametype.NameHeader](defaultRetention),
		blockMgr: NewBroadcastManager[common.Hash, nametype.NameBlock](defaultRetention),
		delegate: DefaultDelegate{},
		conns:    make(map[string]Connection),
		views:    make(map[string]*channelData),
	}
}

// Configure applies cfg. In this module NameDBDir is informational only:
// the NameDB handle is opened by the host before construction (spec.md §1
// scopes NameDB's own open() out of the core).
func (cc *ChannelCore) Configure(cfg Config) {
	cc.log.Info("channel configured", "name_db_dir", cfg.NameDBDir)
}

// SetDelegate installs d, or resets to a no-op delegate if d is nil
// (spec.md §9: "Nullable; nulled before destruction").
func (cc *ChannelCore) SetDelegate(d Delegate) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if d == nil {
		d = DefaultDelegate{}
	}
	cc.delegate = d
}

// AddConnection registers conn with the channel; its per-connection views
// are created lazily on first use (viewFor).
func (cc *ChannelCore) AddConnection(conn Connection) {
	cc.connMu.Lock()
	defer cc.connMu.Unlock()
	cc.conns[conn.ID()] = conn
}

// RemoveConnection unregisters conn and discards its views, mirroring
// spec.md §9's connection-before-channel teardown ordering.
func (cc *ChannelCore) RemoveConnection(conn Connection) {
	cc.connMu.Lock()
	delete(cc.conns, conn.ID())
	cc.connMu.Unlock()
	cc.dropView(conn)
}

func (cc *ChannelCore) connections() []Connection {
	cc.connMu.Lock()
	defer cc.connMu.Unlock()
	out := make([]Connection, 0, len(cc.conns))
	for _, c := range cc.conns {
		out = append(out, c)
	}
	return out
}

// submitName is spec.md §4.6's internal submit_name pipeline.
func (cc *ChannelCore) submitName(h *nametype.NameHeader) error {
	if err := cc.db.ValidateTrx(h); err != nil {
		cc.trxMgr.Validated(h.ShortID(), *h, false)
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	cc.trxMgr.Validated(h.ShortID(), *h, true)
	cc.mu.Lock()
	delegate := cc.delegate
	cc.mu.Unlock()
	delegate.PendingNameTrx(h)
	return nil
}

// submitBlockInternal is spec.md §4.6's internal submit_block pipeline.
func (cc *ChannelCore) submitBlockInternal(b *nametype.NameBlock) error {
	if err := cc.db.PushBlock(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	cc.trxMgr.InvalidateAll()
	cc.blockMgr.ClearOldInventory(retentionHorizon)
	cc.trxMgr.ClearOldInventory(retentionHorizon)
	cc.blockMgr.Validated(b.ID(), *b, true)

	cc.mu.Lock()
	delegate := cc.delegate
	cc.mu.Unlock()
	delegate.NameBlockAdded(b)
	return nil
}

// SubmitName is the public API entry of spec.md §6.
func (cc *ChannelCore) SubmitName(h *nametype.NameHeader) error {
	return cc.submitName(h)
}

// SubmitBlock is spec.md §4.7's public submit_block API entry: the dual
// interpretation. An artifact at or above target difficulty is a block; one
// below target is reinterpreted as a single bare name header.
func (cc *ChannelCore) SubmitBlock(b *nametype.NameBlock) error {
	target := cc.db.TargetDifficulty()
	if b.Difficulty().Cmp(target) >= 0 {
		return cc.submitBlockInternal(b)
	}
	return cc.submitName(b.Header.AsNameHeader())
}

// LookupName resolves a confirmed name binding, converting "not found" into
// (nil, false, nil) per spec.md §7's lookup_name contract; all other store
// errors propagate.
func (cc *ChannelCore) LookupName(name string) (*nametype.NameRecord, bool, error) {
	h, err := cc.db.FetchTrx(nametype.HashName(name))
	if err == namedb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rec := nametype.NewNameRecord(name, h)
	return &rec, true, nil
}

// GetHeadBlockNumber returns the locally confirmed chain height.
func (cc *ChannelCore) GetHeadBlockNumber() uint32 { return cc.db.HeadBlockNum() }

// GetHeadBlockID returns the locally confirmed chain head.
func (cc *ChannelCore) GetHeadBlockID() common.Hash { return cc.db.HeadBlockID() }

// GetPendingNameTrxs returns every currently Held, unconfirmed transaction
// (spec.md §6; the round-trip property of spec.md §8).
func (cc *ChannelCore) GetPendingNameTrxs() []nametype.NameHeader {
	return cc.trxMgr.GetInventoryValues()
}

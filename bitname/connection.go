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
	"sync"

	"github.com/google/uuid"

	"github.com/bitname/go-bitname/common"
)

// Connection is the peer/transport collaborator spec.md §1 scopes out of
// core: "the underlying peer/connection transport which delivers framed,
// type-tagged messages to this channel and accepts outbound sends." The
// core only ever calls Send; everything about framing, dialing and
// reconnection belongs to the host.
type Connection interface {
	ID() string
	Send(Message) error
}

// channelData is the per-connection blob this channel attaches to each
// Connection (spec.md §3: "a mapping channel_id -> per-channel blob";
// spec.md §9: "the channel's get_channel_data(c) returns a handle owned by
// c"). It holds the two PeerViews spec.md §3 specifies.
type channelData struct {
	TrxView   *PeerView[common.ShortHash]
	BlockView *PeerView[common.Hash]
}

func newChannelData() *channelData {
	return &channelData{
		TrxView:   NewPeerView[common.ShortHash](),
		BlockView: NewPeerView[common.Hash](),
	}
}

// viewFor lazily creates and returns the channelData for conn, mirroring
// the original's get_channel_data: "if !cd { cd = make(...) }" (spec.md §9,
// SPEC_FULL.md SUPPLEMENTED FEATURES).
func (cc *ChannelCore) viewFor(conn Connection) *channelData {
	cc.viewsMu.Lock()
	defer cc.viewsMu.Unlock()
	cd, ok := cc.views[conn.ID()]
	if !ok {
		cd = newChannelData()
		cc.views[conn.ID()] = cd
	}
	return cd
}

// dropView removes the per-connection state, called on disconnect.
func (cc *ChannelCore) dropView(conn Connection) {
	cc.viewsMu.Lock()
	defer cc.viewsMu.Unlock()
	delete(cc.views, conn.ID())
}

// MemoryConnection is a minimal in-process Connection used by tests
// (SPEC_FULL.md NON-GOALS: "a p2p transport
// implementation ... a minimal in-memory stub exists only to make bitname
// testable in isolation"). Sent messages are appended to Inbox for the test
// to inspect or hand to a peer's dispatcher.
type MemoryConnection struct {
	id string

	mu    sync.Mutex
	Inbox []Message
}

// NewMemoryConnection allocates a connection with a fresh id, the way
// go-probeum's peer set assigns a uuid to new connections.
func NewMemoryConnection() *MemoryConnection {
	return &MemoryConnection{id: uuid.NewString()}
}

func (m *MemoryConnection) ID() string { return m.id }

func (m *MemoryConnection) Send(msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inbox = append(m.Inbox, msg)
	return nil
}

// Drain returns and clears the accumulated inbox.
func (m *MemoryConnection) Drain() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.Inbox
	m.Inbox = nil
	return out
}

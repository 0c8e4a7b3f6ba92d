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

	mapset "github.com/deckarep/golang-set"
)

// PeerView is the per-connection projection of a BroadcastManager (spec.md
// §3, GLOSSARY "Peer view"): what a given peer is known to have, and
// whether a request to it is currently outstanding. The "knows" set is a
// deckarep/golang-set, the same set type go-probeum's handler.go uses for
// its peer knownTxs/knownBlocks bookkeeping.
type PeerView[K comparable] struct {
	mu      sync.Mutex
	known   mapset.Set
	pending map[K]bool
}

// NewPeerView returns an empty view.
func NewPeerView[K comparable]() *PeerView[K] {
	return &PeerView[K]{
		known:   mapset.NewThreadUnsafeSet(),
		pending: make(map[K]bool),
	}
}

// Knows reports whether this peer is known to possess or have been told of k.
func (pv *PeerView[K]) Knows(k K) bool {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	return pv.known.Contains(k)
}

// UpdateKnown marks every key in ks as known to this peer (spec.md §4.3:
// called unconditionally after every inv send, successful or not).
func (pv *PeerView[K]) UpdateKnown(ks []K) {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	for _, k := range ks {
		pv.known.Add(k)
	}
}

// HasPendingRequest reports whether any outbound fetch to this peer is in
// flight (spec.md §4.4: a precondition for selecting a fetch target).
func (pv *PeerView[K]) HasPendingRequest() bool {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	return len(pv.pending) > 0
}

// Requested records an outbound fetch of k to this peer.
func (pv *PeerView[K]) Requested(k K) {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	pv.pending[k] = true
	pv.known.Add(k) // a peer we asked is, by construction, now aware of k
}

// ReceivedResponse clears the pending flag for k once its body arrives.
func (pv *PeerView[K]) ReceivedResponse(k K) {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	delete(pv.pending, k)
}

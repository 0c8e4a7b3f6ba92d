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
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// itemState is the per-key lifecycle of spec.md §3's BroadcastManager<K,V>.
type itemState int

const (
	stateUnknown itemState = iota
	stateRequested
	stateHeld
	stateInvalid
)

type entry[V any] struct {
	state    itemState
	value    V
	seq      uint64
	touched  time.Time
}

// Known[K] is the subset of PeerView's contract a BroadcastManager needs to
// compute an inventory diff: spec.md §4.1, "!peer_view.knows(k)".
type Known[K comparable] interface {
	Knows(k K) bool
}

// BroadcastManager is the generic per-channel inventory cache of spec.md §3
// (BroadcastManager<K,V>), grounded on the lifecycle go-probeum's
// probe/handler.go keeps for pending transactions and block announcements
// (knownTxs/knownBlocks sets plus a download queue), generalized here into
// one reusable state machine shared by the transaction manager and the
// block-index manager. hashicorp/golang-lru bounds retention the way
// clear_old_inventory (spec.md §4.1) is specified to: entries fall out of
// the manager once evicted from the LRU, which approximates "older than a
// configurable horizon" without tracking wall-clock expiry per entry.
type BroadcastManager[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[V]
	order    []K // FIFO arrival order of Unknown keys, for find_next_query fairness
	nextSeq  uint64
	newSince bool
	retained *lru.Cache // bounds Held/Invalid retention; eviction drops the key from entries too
}

// NewBroadcastManager returns an empty manager. retentionSize bounds how
// many Held/Invalid entries are kept before the oldest are evicted,
// standing in for spec.md §4.1's "at least two confirmed-block epochs"
// horizon with an LRU capacity instead of wall-clock accounting.
func NewBroadcastManager[K comparable, V any](retentionSize int) *BroadcastManager[K, V] {
	bm := &BroadcastManager[K, V]{
		entries: make(map[K]*entry[V]),
	}
	// The callback runs synchronously inside retained.Add/Remove, and every
	// such call is made with bm.mu already held, so it must not lock again.
	bm.retained, _ = lru.NewWithEvict(retentionSize, func(key, _ interface{}) {
		delete(bm.entries, key.(K))
	})
	return bm
}

// ReceivedInventoryNotice records k as Unknown the first time it is seen
// (spec.md §4.1 received_inventory_notice); a re-advertisement of an
// already-tracked key is a no-op (spec.md §7: "inventory duplicates ...
// are no-ops").
func (bm *BroadcastManager[K, V]) ReceivedInventoryNotice(k K) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if _, ok := bm.entries[k]; ok {
		return
	}
	bm.entries[k] = &entry[V]{state: stateUnknown, touched: time.Now()}
	bm.order = append(bm.order, k)
	bm.newSince = true
}

// FindNextQuery returns an Unknown key with no in-flight request, rotating
// through arrival order so no item starves (spec.md §4.1 fairness note).
func (bm *BroadcastManager[K, V]) FindNextQuery() (K, bool) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	for len(bm.order) > 0 {
		k := bm.order[0]
		bm.order = bm.order[1:]
		e, ok := bm.entries[k]
		if !ok {
			continue // evicted since being queued
		}
		if e.state == stateUnknown {
			bm.order = append(bm.order, k) // rotate to the back for fairness
			return k, true
		}
	}
	var zero K
	return zero, false
}

// ItemQueried transitions Unknown -> Requested (spec.md §4.1). Transitioning
// an already-Held key is a no-op per spec.md §4.1's error-conditions note.
func (bm *BroadcastManager[K, V]) ItemQueried(k K) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	e, ok := bm.entries[k]
	if !ok || e.state == stateHeld {
		return
	}
	e.state = stateRequested
}

// Validated transitions k to Held(true) or Invalid, per spec.md §4.1. A
// second call with a conflicting ok is "last writer wins" (spec.md §4.1);
// callers must not rely on this.
func (bm *BroadcastManager[K, V]) Validated(k K, v V, ok bool) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	e, present := bm.entries[k]
	if !present {
		e = &entry[V]{}
		bm.entries[k] = e
	}
	e.value = v
	e.touched = time.Now()
	if ok {
		e.state = stateHeld
		if e.seq == 0 {
			bm.nextSeq++
			e.seq = bm.nextSeq
		}
		bm.newSince = true
	} else {
		e.state = stateInvalid
	}
	bm.retained.Add(k, struct{}{})
}

// GetValue returns the value for k iff its state is Held.
func (bm *BroadcastManager[K, V]) GetValue(k K) (V, bool) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	e, ok := bm.entries[k]
	if !ok || e.state != stateHeld {
		var zero V
		return zero, false
	}
	return e.value, true
}

// HasNewSinceBroadcast reports whether a Held transition has occurred since
// the flag was last cleared.
func (bm *BroadcastManager[K, V]) HasNewSinceBroadcast() bool {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.newSince
}

// SetNewSinceBroadcast clears (or sets) the flag.
func (bm *BroadcastManager[K, V]) SetNewSinceBroadcast(v bool) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.newSince = v
}

// GetInventory returns the Held keys that peer does not yet know, ordered
// by the sequence number assigned at first transition into Held (spec.md
// §4.1).
func (bm *BroadcastManager[K, V]) GetInventory(peer Known[K]) []K {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	type seqKey struct {
		k   K
		seq uint64
	}
	var held []seqKey
	for k, e := range bm.entries {
		if e.state == stateHeld && !peer.Knows(k) {
			held = append(held, seqKey{k, e.seq})
		}
	}
	for i := 1; i < len(held); i++ {
		for j := i; j > 0 && held[j-1].seq > held[j].seq; j-- {
			held[j-1], held[j] = held[j], held[j-1]
		}
	}
	out := make([]K, len(held))
	for i, sk := range held {
		out[i] = sk.k
	}
	return out
}

// GetInventoryValues returns every currently Held value.
func (bm *BroadcastManager[K, V]) GetInventoryValues() []V {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	var out []V
	for _, e := range bm.entries {
		if e.state == stateHeld {
			out = append(out, e.value)
		}
	}
	return out
}

// InvalidateAll purges every Held entry (spec.md §4.1): called when a block
// confirms and supersedes pending transactions (spec.md §4.6 step 2).
func (bm *BroadcastManager[K, V]) InvalidateAll() {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	for k, e := range bm.entries {
		if e.state == stateHeld {
			delete(bm.entries, k)
			bm.retained.Remove(k)
		}
	}
}

// ClearOldInventory evicts entries beyond the retention horizon. The LRU
// backing the manager already evicts on insert past capacity; this forces
// a bounded walk so a long-idle manager eventually sheds stale Invalid
// entries even without new insertions.
func (bm *BroadcastManager[K, V]) ClearOldInventory(horizon time.Duration) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	cutoff := time.Now().Add(-horizon)
	for k, e := range bm.entries {
		if e.state == stateInvalid && e.touched.Before(cutoff) {
			delete(bm.entries, k)
			bm.retained.Remove(k)
		}
	}
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastManagerLifecycle(t *testing.T) {
	bm := NewBroadcastManager[string, int](16)

	bm.ReceivedInventoryNotice("a")
	assert.True(t, bm.HasNewSinceBroadcast())

	k, ok := bm.FindNextQuery()
	require.True(t, ok)
	assert.Equal(t, "a", k)

	bm.ItemQueried("a")
	// Requested items are not reoffered by FindNextQuery.
	_, ok = bm.FindNextQuery()
	assert.False(t, ok)

	bm.Validated("a", 42, true)
	v, ok := bm.GetValue("a")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestBroadcastManagerDuplicateInventoryIsNoop(t *testing.T) {
	// Scenario 4 (spec §8): duplicate inv for the same key transitions
	// Unknown once; a second notice must not re-queue it.
	bm := NewBroadcastManager[string, int](16)
	bm.ReceivedInventoryNotice("x")
	bm.ReceivedInventoryNotice("x")

	count := 0
	for {
		if _, ok := bm.FindNextQuery(); ok {
			count++
			if count > 1 {
				break
			}
			bm.ItemQueried("x")
		} else {
			break
		}
	}
	assert.Equal(t, 1, count)
}

type fakeKnown map[string]bool

func (f fakeKnown) Knows(k string) bool { return f[k] }

func TestBroadcastManagerGetInventoryExcludesKnown(t *testing.T) {
	bm := NewBroadcastManager[string, int](16)
	bm.Validated("a", 1, true)
	bm.Validated("b", 2, true)

	inv := bm.GetInventory(fakeKnown{"a": true})
	assert.Equal(t, []string{"b"}, inv)
}

func TestBroadcastManagerInventoryOrderIsSequence(t *testing.T) {
	bm := NewBroadcastManager[string, int](16)
	bm.Validated("first", 1, true)
	bm.Validated("second", 2, true)
	bm.Validated("third", 3, true)

	inv := bm.GetInventory(fakeKnown{})
	assert.Equal(t, []string{"first", "second", "third"}, inv)
}

func TestBroadcastManagerInvalidateAll(t *testing.T) {
	bm := NewBroadcastManager[string, int](16)
	bm.Validated("a", 1, true)
	bm.Validated("b", 2, true)

	bm.InvalidateAll()
	assert.Empty(t, bm.GetInventoryValues())
}

func TestBroadcastManagerValidatedFalseIsInvalid(t *testing.T) {
	bm := NewBroadcastManager[string, int](16)
	bm.ReceivedInventoryNotice("a")
	bm.Validated("a", 0, false)

	_, ok := bm.GetValue("a")
	assert.False(t, ok, "an Invalid entry must not be returned as a held value")
}

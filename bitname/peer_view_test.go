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
)

func TestPeerViewKnowsAfterUpdate(t *testing.T) {
	pv := NewPeerView[string]()
	assert.False(t, pv.Knows("a"))

	pv.UpdateKnown([]string{"a", "b"})
	assert.True(t, pv.Knows("a"))
	assert.True(t, pv.Knows("b"))
	assert.False(t, pv.Knows("c"))
}

func TestPeerViewPendingRequestLifecycle(t *testing.T) {
	pv := NewPeerView[string]()
	assert.False(t, pv.HasPendingRequest())

	pv.Requested("x")
	assert.True(t, pv.HasPendingRequest())
	assert.True(t, pv.Knows("x"), "a requested key is implicitly known to the peer")

	pv.ReceivedResponse("x")
	assert.False(t, pv.HasPendingRequest())
}

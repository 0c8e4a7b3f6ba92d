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

package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

// known-answer test: Keccak256("") per the original (non-NIST) Keccak spec.
func TestKeccak256EmptyInput(t *testing.T) {
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"[:64]
	got := hex.EncodeToString(Keccak256(nil))
	assert.Equal(t, want, got)
}

func TestKeccak256HashMatchesKeccak256(t *testing.T) {
	data := []byte("alice")
	assert.Equal(t, Keccak256(data), Keccak256Hash(data).Bytes())
}

func TestKeccak256IsSensitiveToInput(t *testing.T) {
	assert.NotEqual(t, Keccak256([]byte("alice")), Keccak256([]byte("bob")))
}

func TestIsZeroPublicKeyNilIsZero(t *testing.T) {
	assert.True(t, IsZeroPublicKey(nil))
	assert.True(t, IsZeroPublicKey(&ZeroPublicKey))
}

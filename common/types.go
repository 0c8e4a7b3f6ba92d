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

package common

import (
	"encoding/hex"
	"fmt"
)

// HashLength is the expected length of the Keccak256 hash, in bytes.
const HashLength = 32

// Hash represents the 32 byte output of a Keccak256 hash, used both as a
// transaction's full_id and a block's id.
type Hash [HashLength]byte

// BytesToHash sets b as the trailing bytes of a Hash, left-padding or
// truncating from the left as needed.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns the raw bytes of h.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the hex string encoding of h, without a leading "0x".
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

// ShortHash is a 64 bit truncation of a Hash, used as a compact reference
// to a name transaction inside a block index (spec.md GLOSSARY: "short id").
type ShortHash uint64

func (s ShortHash) String() string { return fmt.Sprintf("%016x", uint64(s)) }

// ShortHashFromHash truncates a full Hash down to its ShortHash, taking the
// trailing 8 bytes, big-endian.
func ShortHashFromHash(h Hash) ShortHash {
	var v uint64
	for _, b := range h[HashLength-8:] {
		v = v<<8 | uint64(b)
	}
	return ShortHash(v)
}

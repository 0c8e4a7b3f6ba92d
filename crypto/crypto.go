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

// Package crypto provides the hashing and key primitives this module treats
// as an external collaborator per spec.md §1 ("cryptographic primitives
// (hash, ECC public keys, proof-of-work difficulty scoring)"), grounded on
// the teacher's crypto.go (same Keccak construction, trimmed to the subset
// the bitname gossip engine actually needs).
package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bitname/go-bitname/common"
	"golang.org/x/crypto/sha3"
)

// DigestLength is the length, in bytes, of a Keccak256 digest.
const DigestLength = 32

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input
// data, converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// ZeroPublicKey is the sentinel "revoked" key: a NameHeader carrying this
// key in place of an owner's real public key marks the name as revoked
// (spec.md §8 scenario 5).
var ZeroPublicKey btcec.PublicKey

// IsZeroPublicKey reports whether pub is the all-zero sentinel key.
func IsZeroPublicKey(pub *btcec.PublicKey) bool {
	if pub == nil {
		return true
	}
	x, y := pub.X(), pub.Y()
	return x.Sign() == 0 && y.Sign() == 0
}

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

// Package nametype holds the data model of spec.md §3: NameHeader,
// NameBlock and NameBlockIndex, grounded on the shape of the teacher's
// core/types/block.go (header + body, an id() derived from hashing the
// header) adapted from an EVM block to a name-registration one.
package nametype

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/holiman/uint256"
	"github.com/status-im/keycard-go/hexutils"

	"github.com/bitname/go-bitname/common"
	"github.com/bitname/go-bitname/crypto"
	"github.com/bitname/go-bitname/rlp"
)

// NameHeader is a single name transaction: a hashed name bound to an owner
// public key at a point in time, carrying the proof-of-work that justifies
// its acceptance (spec.md §3).
type NameHeader struct {
	NameHash []byte // Keccak256(name), fixed 32 bytes
	PubKey   []byte // compressed secp256k1 public key, or all-zero for a revocation
	UTCSec   uint64
	Age      uint32
	Repute   uint32
	Nonce    uint64
}

// ShortID is the 64 bit truncation used as a compact handle inside a
// NameBlockIndex (spec.md GLOSSARY: "short id"). It is a deterministic
// function of the header contents, satisfying the invariant in spec.md §3.
func (h *NameHeader) ShortID() common.ShortHash {
	return common.ShortHashFromHash(h.FullID())
}

// FullID is the header's content hash.
func (h *NameHeader) FullID() common.Hash {
	enc, err := rlp.EncodeToBytes(h)
	if err != nil {
		// Encoding a concrete NameHeader value cannot fail; a failure here
		// means the type itself is malformed, which is a programmer error.
		panic(fmt.Sprintf("nametype: encode NameHeader: %v", err))
	}
	return crypto.Keccak256Hash(enc)
}

// PublicKey decodes the header's raw public key bytes.
func (h *NameHeader) PublicKey() (*btcec.PublicKey, error) {
	if len(h.PubKey) == 0 {
		return nil, nil
	}
	return btcec.ParsePubKey(h.PubKey)
}

// Revoked reports whether this header carries the all-zero sentinel key
// (spec.md §8 scenario 5).
func (h *NameHeader) Revoked() bool {
	for _, b := range h.PubKey {
		if b != 0 {
			return false
		}
	}
	return true
}

// BlockHeader is a mined artifact: a full NameHeader (name/pubkey binding
// plus the nonce that was searched over) extended with chain linkage and
// aggregate proof-of-work. This mirrors the original's name_block, which
// extends name_header directly (_examples/original_source/src/bitname/bitname_channel.cpp:453-483
// passes a whole name_block where a "const name_header&" is expected, and
// reads last_trx.key/last_trx.name_hash straight off it) so the dual
// interpretation of spec.md §4.7 is a lossless reinterpretation of the same
// fields, never a synthesized substitute.
type BlockHeader struct {
	NameHeader
	PrevBlockID common.Hash
	PoW         []byte // big-endian aggregate proof-of-work magnitude
}

// Difficulty returns the block's aggregate proof-of-work as a uint256,
// matching go-probeum's use of holiman/uint256 for chain-weight arithmetic.
func (bh *BlockHeader) Difficulty() *uint256.Int {
	return new(uint256.Int).SetBytes(bh.PoW)
}

// AsNameHeader reinterprets the block header as a single bare NameHeader,
// the "dual interpretation" artifact of spec.md §4.7: a miner publishes one
// object, and whether it confirms a block or merely seeds a pending name
// depends only on whether its work crosses the target. The embedded
// NameHeader already carries the real name/pubkey binding, so this is a
// copy, not a reconstruction.
func (bh *BlockHeader) AsNameHeader() *NameHeader {
	h := bh.NameHeader
	return &h
}

// NameBlock is an ordered sequence of NameHeaders plus a BlockHeader
// (spec.md §3).
type NameBlock struct {
	Header  BlockHeader
	NameTrx []NameHeader
}

// ID is the block's content hash.
func (b *NameBlock) ID() common.Hash {
	enc, err := rlp.EncodeToBytes(&b.Header)
	if err != nil {
		panic(fmt.Sprintf("nametype: encode BlockHeader: %v", err))
	}
	return crypto.Keccak256Hash(enc)
}

// Difficulty delegates to the embedded header.
func (b *NameBlock) Difficulty() *uint256.Int { return b.Header.Difficulty() }

// NameBlockIndex is a compact block announcement: a block header plus the
// ordered short-ids of its constituent transactions, sent in lieu of a full
// block to exploit the receiver's transaction cache (spec.md §3).
type NameBlockIndex struct {
	Header  BlockHeader
	NameIDs []common.ShortHash
}

// ID mirrors NameBlock.ID: the index and the block it describes share an
// identity derived from the same header.
func (idx *NameBlockIndex) ID() common.Hash {
	enc, err := rlp.EncodeToBytes(&idx.Header)
	if err != nil {
		panic(fmt.Sprintf("nametype: encode BlockHeader: %v", err))
	}
	return crypto.Keccak256Hash(enc)
}

// NameRecord is the confirmed, queryable projection of a name's most recent
// binding (spec.md §6).
type NameRecord struct {
	LastUpdate int64 // UTC seconds
	PubKey     []byte
	Age        uint32
	Repute     uint32
	Revoked    bool
	NameHash   string // hex, via status-im/keycard-go's hexutils
	Name       string
}

// NewNameRecord builds the externally visible NameRecord for a validated
// NameHeader, hex-encoding the name hash the way
// probe/handler_probe.go formats hashes with hexutils.BytesToHex.
func NewNameRecord(name string, h *NameHeader) NameRecord {
	return NameRecord{
		LastUpdate: int64(h.UTCSec),
		PubKey:     h.PubKey,
		Age:        h.Age,
		Repute:     h.Repute,
		Revoked:    h.Revoked(),
		NameHash:   hexutils.BytesToHex(h.NameHash),
		Name:       name,
	}
}

// HashName returns the Keccak256 hash of a plaintext name, the key under
// which its NameHeader is stored and looked up.
func HashName(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}


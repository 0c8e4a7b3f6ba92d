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
	"fmt"

	"github.com/bitname/go-bitname/common"
	"github.com/bitname/go-bitname/nametype"
)

// BlockReassembler holds one in-flight block under reconstruction (spec.md
// §3 GLOSSARY "Reassembler"), grounded on the original's
// block_index_download_manager (_examples/original_source/src/bitname/bitname_channel.cpp):
// a partial block with fixed transaction slots plus a short-id -> slot
// index for the slots not yet filled.
type BlockReassembler struct {
	Index    *nametype.NameBlockIndex
	incomplete []nametype.NameHeader
	unknown  map[common.ShortHash]int
}

// NewBlockReassembler creates a reassembler for idx, pre-filling every slot
// whose transaction is already Held in trxMgr and recording the rest in
// unknown (spec.md §4.8). If every slot is already filled, the returned
// reassembler has an empty unknown map and the caller should submit the
// block immediately rather than register this reassembler.
func NewBlockReassembler(idx *nametype.NameBlockIndex, trxMgr *BroadcastManager[common.ShortHash, nametype.NameHeader]) (*BlockReassembler, error) {
	seen := make(map[common.ShortHash]bool, len(idx.NameIDs))
	for _, id := range idx.NameIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: short id %s appears twice in block index", ErrDuplicateShortID, id)
		}
		seen[id] = true
	}

	r := &BlockReassembler{
		Index:      idx,
		incomplete: make([]nametype.NameHeader, len(idx.NameIDs)),
		unknown:    make(map[common.ShortHash]int, len(idx.NameIDs)),
	}
	for i, id := range idx.NameIDs {
		if v, ok := trxMgr.GetValue(id); ok {
			r.incomplete[i] = v
		} else {
			r.unknown[id] = i
		}
	}
	return r, nil
}

// TryAccept places header in its slot if header.ShortID() is a key in
// unknown, returning true once every slot has been filled (spec.md §3
// try_accept).
func (r *BlockReassembler) TryAccept(header *nametype.NameHeader) bool {
	idx, ok := r.unknown[header.ShortID()]
	if !ok {
		return false
	}
	r.incomplete[idx] = *header
	delete(r.unknown, header.ShortID())
	return len(r.unknown) == 0
}

// Unresolved returns the short-ids still awaiting a body. AdmitBlockIndex
// registers them as Unknown in the transaction manager, from which FetchLoop
// issues targeted fetches (spec.md §4.8: "push the reassembler onto the
// channel's vector and issue fetches for each unknown short-id").
func (r *BlockReassembler) Unresolved() []common.ShortHash {
	out := make([]common.ShortHash, 0, len(r.unknown))
	for id := range r.unknown {
		out = append(out, id)
	}
	return out
}

// Block materializes the completed NameBlock. Callers must only call this
// once TryAccept has returned true (or the reassembler was constructed with
// an already-empty unknown set).
func (r *BlockReassembler) Block() *nametype.NameBlock {
	return &nametype.NameBlock{
		Header:  r.Index.Header,
		NameTrx: append([]nametype.NameHeader(nil), r.incomplete...),
	}
}

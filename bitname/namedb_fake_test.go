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

	"github.com/holiman/uint256"

	"github.com/bitname/go-bitname/common"
	"github.com/bitname/go-bitname/namedb"
	"github.com/bitname/go-bitname/nametype"
)

// fakeNameDB is an in-memory namedb.NameDB double, exercising the
// "ChannelCore depends only on the interface" contract so bitname's own
// tests don't need a real leveldb instance.
type fakeNameDB struct {
	mu     sync.Mutex
	blocks map[common.Hash]*nametype.NameBlock
	trxs   map[common.Hash]*nametype.NameHeader
	target *uint256.Int

	headNum uint32
	headID  common.Hash
}

func newFakeNameDB(target uint64) *fakeNameDB {
	return &fakeNameDB{
		blocks: make(map[common.Hash]*nametype.NameBlock),
		trxs:   make(map[common.Hash]*nametype.NameHeader),
		target: uint256.NewInt(target),
	}
}

func (f *fakeNameDB) ValidateTrx(h *nametype.NameHeader) error {
	if h == nil || len(h.NameHash) != common.HashLength {
		return namedb.ErrInvalidTransaction
	}
	return nil
}

func (f *fakeNameDB) PushBlock(b *nametype.NameBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.Difficulty().Cmp(f.target) < 0 {
		return namedb.ErrStaleBlock
	}
	id := b.ID()
	f.blocks[id] = b
	for i := range b.NameTrx {
		h := b.NameTrx[i]
		f.trxs[common.BytesToHash(h.NameHash)] = &h
	}
	f.headNum++
	f.headID = id
	return nil
}

func (f *fakeNameDB) FetchBlock(id common.Hash) (*nametype.NameBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blocks[id]
	if !ok {
		return nil, namedb.ErrNotFound
	}
	return b, nil
}

func (f *fakeNameDB) FetchTrx(nameHash common.Hash) (*nametype.NameHeader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.trxs[nameHash]
	if !ok {
		return nil, namedb.ErrNotFound
	}
	return h, nil
}

func (f *fakeNameDB) TargetDifficulty() *uint256.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target.Clone()
}

func (f *fakeNameDB) HeadBlockNum() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headNum
}

func (f *fakeNameDB) HeadBlockID() common.Hash {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headID
}

func (f *fakeNameDB) Dump() {}

var _ namedb.NameDB = (*fakeNameDB)(nil)

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

// Package namedb is the persistent name database spec.md §1 scopes as an
// external collaborator ("the persistent name database (NameDB) providing
// validate_trx, push_block, fetch_block, fetch_trx, target_difficulty,
// head_block_num, head_block_id"). SPEC_FULL.md's DOMAIN STACK section
// flashes this interface out to a concrete store so the module is runnable
// end to end: a leveldb-backed key/value store, the engine go-probeum
// itself links (syndtr/goleveldb), fronted by a fastcache of recently
// resolved records and writing snappy-compressed records, mirroring how
// go-ethereum's chain database layers a cache in front of leveldb.
package namedb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/golang/snappy"
	"github.com/holiman/uint256"
	"github.com/olekukonko/tablewriter"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitname/go-bitname/common"
	"github.com/bitname/go-bitname/log"
	"github.com/bitname/go-bitname/nametype"
	"github.com/bitname/go-bitname/rlp"
)

// Error kinds from spec.md §7 that originate in the persistent store.
var (
	ErrInvalidTransaction     = errors.New("namedb: invalid transaction")
	ErrInvalidBlock           = errors.New("namedb: invalid block")
	ErrStaleBlock             = errors.New("namedb: stale block")
	ErrNotFound               = errors.New("namedb: not found")
	ErrPersistentStoreFailure = errors.New("namedb: persistent store failure")
)

// NameDB is the interface spec.md §6 describes. ChannelCore depends only on
// this, never on *DB directly, so a test double can stand in for it.
type NameDB interface {
	ValidateTrx(h *nametype.NameHeader) error
	PushBlock(b *nametype.NameBlock) error
	FetchBlock(id common.Hash) (*nametype.NameBlock, error)
	FetchTrx(nameHash common.Hash) (*nametype.NameHeader, error)
	TargetDifficulty() *uint256.Int
	HeadBlockNum() uint32
	HeadBlockID() common.Hash
	Dump()
}

const cacheBytes = 32 * 1024 * 1024 // 32MB fastcache front, sized like a modest node's trie-node cache

var (
	blockPrefix = []byte("b") // blockPrefix + block id -> snappy(rlp(NameBlock))
	namePrefix  = []byte("n") // namePrefix + name hash  -> snappy(rlp(NameHeader))
	headKey     = []byte("head")
)

// DB is the leveldb-backed NameDB implementation.
type DB struct {
	mu     sync.RWMutex
	ldb    *leveldb.DB
	cache  *fastcache.Cache
	target *uint256.Int

	headNum uint32
	headID  common.Hash
}

// Open opens (and optionally creates) the leveldb store at dir, mirroring
// the NameDB.open(dir, create) contract of spec.md §6.
func Open(dir string, create bool) (*DB, error) {
	if create {
		if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
		}
	}
	ldb, err := leveldb.OpenFile(dir, &opt.Options{ErrorIfMissing: !create})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	db := &DB{
		ldb:    ldb,
		cache:  fastcache.New(cacheBytes),
		target: uint256.NewInt(1), // permissive default target; a real deployment sets this from genesis config
	}
	db.loadHead()
	return db, nil
}

func (db *DB) loadHead() {
	raw, err := db.ldb.Get(headKey, nil)
	if err != nil {
		return // fresh database, head stays zero
	}
	var h struct {
		Num uint32
		ID  common.Hash
	}
	if err := rlp.DecodeBytes(raw, &h); err != nil {
		log.Warn("namedb: corrupt head record, ignoring", "err", err)
		return
	}
	db.headNum, db.headID = h.Num, h.ID
}

// SetTargetDifficulty lets a host configure the PoW threshold; spec.md
// leaves difficulty scoring itself to an external collaborator, this only
// stores the resulting threshold for target_difficulty() to return.
func (db *DB) SetTargetDifficulty(target *uint256.Int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.target = target
}

// ValidateTrx checks a NameHeader against the confirmed state before it is
// accepted into the broadcast cache (spec.md §4.6 submit_name step 1).
func (db *DB) ValidateTrx(h *nametype.NameHeader) error {
	if h == nil {
		return fmt.Errorf("%w: nil header", ErrInvalidTransaction)
	}
	if len(h.NameHash) != common.HashLength {
		return fmt.Errorf("%w: name hash must be %d bytes", ErrInvalidTransaction, common.HashLength)
	}
	if !h.Revoked() {
		if _, err := h.PublicKey(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
		}
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	prior, err := db.fetchTrxLocked(common.BytesToHash(h.NameHash))
	if err == nil && prior.UTCSec > h.UTCSec {
		return fmt.Errorf("%w: supersedes a newer binding", ErrInvalidTransaction)
	}
	return nil
}

// PushBlock validates and persists a full block, advancing the head
// (spec.md §4.6 submit_block step 1).
func (db *DB) PushBlock(b *nametype.NameBlock) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if b.Header.PrevBlockID != db.headID && db.headNum != 0 {
		return fmt.Errorf("%w: parent %s does not match head %s", ErrInvalidBlock, b.Header.PrevBlockID, db.headID)
	}
	if b.Difficulty().Cmp(db.target) < 0 {
		return fmt.Errorf("%w: difficulty below target", ErrStaleBlock)
	}

	enc, err := rlp.EncodeToBytes(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	id := b.ID()
	if err := db.ldb.Put(append(blockPrefix, id.Bytes()...), snappy.Encode(nil, enc), nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	for i := range b.NameTrx {
		if err := db.putTrxLocked(&b.NameTrx[i]); err != nil {
			return err
		}
	}

	db.headNum++
	db.headID = id
	db.cache.Del(headKey)
	headEnc, _ := rlp.EncodeToBytes(&struct {
		Num uint32
		ID  common.Hash
	}{db.headNum, db.headID})
	if err := db.ldb.Put(headKey, headEnc, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	return nil
}

func (db *DB) putTrxLocked(h *nametype.NameHeader) error {
	enc, err := rlp.EncodeToBytes(h)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	key := append(namePrefix, h.NameHash...)
	compressed := snappy.Encode(nil, enc)
	if err := db.ldb.Put(key, compressed, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	db.cache.Set(key, compressed)
	return nil
}

// FetchBlock returns the block with the given id.
func (db *DB) FetchBlock(id common.Hash) (*nametype.NameBlock, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	raw, err := db.ldb.Get(append(blockPrefix, id.Bytes()...), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	dec, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	var b nametype.NameBlock
	if err := rlp.DecodeBytes(dec, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	return &b, nil
}

// FetchTrx returns the most recent confirmed header bound to nameHash.
// spec.md §4.5's get_name_header handler deliberately does NOT use this —
// individual transactions are served only from the live broadcast cache —
// but lookup_name (spec.md §6) does.
func (db *DB) FetchTrx(nameHash common.Hash) (*nametype.NameHeader, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.fetchTrxLocked(nameHash)
}

func (db *DB) fetchTrxLocked(nameHash common.Hash) (*nametype.NameHeader, error) {
	key := append(namePrefix, nameHash.Bytes()...)
	if cached, ok := db.cache.HasGet(nil, key); ok {
		return decodeTrx(cached)
	}
	raw, err := db.ldb.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	db.cache.Set(key, raw)
	return decodeTrx(raw)
}

func decodeTrx(compressed []byte) (*nametype.NameHeader, error) {
	dec, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	var h nametype.NameHeader
	if err := rlp.DecodeBytes(dec, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistentStoreFailure, err)
	}
	return &h, nil
}

// TargetDifficulty returns the current minimum PoW for a block submission
// to count as a block rather than a bare name publication (spec.md §4.7).
func (db *DB) TargetDifficulty() *uint256.Int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.target.Clone()
}

// HeadBlockNum returns the locally confirmed chain height.
func (db *DB) HeadBlockNum() uint32 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.headNum
}

// HeadBlockID returns the locally confirmed chain head.
func (db *DB) HeadBlockID() common.Hash {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.headID
}

// Dump renders a debug snapshot of the database state (spec.md §6), the
// way go-probeum's db layer offers a dump() for operators.
func (db *DB) Dump() {
	db.mu.RLock()
	defer db.mu.RUnlock()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"field", "value"})
	table.Append([]string{"head_block_num", fmt.Sprintf("%d", db.headNum)})
	table.Append([]string{"head_block_id", db.headID.Hex()})
	table.Append([]string{"target_difficulty", db.target.Hex()})
	table.Render()
}

// Close releases the underlying leveldb handle.
func (db *DB) Close() error {
	return db.ldb.Close()
}

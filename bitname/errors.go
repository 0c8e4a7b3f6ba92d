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

import "errors"

// Sentinel errors for the kinds enumerated in spec.md §7, following
// common/error.go's package-level Err* style.
var (
	ErrInvalidTransaction          = errors.New("bitname: invalid transaction")
	ErrInvalidBlock                = errors.New("bitname: invalid block")
	ErrStaleBlock                  = errors.New("bitname: stale block")
	ErrDuplicateShortID            = errors.New("bitname: duplicate short id in block index")
	ErrUnknownNameInBroadcastCache = errors.New("bitname: name not held in broadcast cache")
	ErrTransportFailure            = errors.New("bitname: transport failure")
	ErrPersistentStoreFailure      = errors.New("bitname: persistent store failure")
	ErrCancelled                   = errors.New("bitname: cancelled")
)

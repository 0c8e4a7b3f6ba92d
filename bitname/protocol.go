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
	"github.com/bitname/go-bitname/common"
	"github.com/bitname/go-bitname/nametype"
)

// MessageType is the wire tag of spec.md §6's nine protocol messages,
// mirroring how probe/handler_probe.go dispatches on a packet code.
type MessageType uint8

const (
	NameInvMsg MessageType = iota
	BlockInvMsg
	GetNameInvMsg
	GetHeadersMsg
	GetBlockMsg
	GetNameHeaderMsg
	NameHeaderMsg
	BlockMsg
	HeadersMsg
)

func (t MessageType) String() string {
	switch t {
	case NameInvMsg:
		return "name_inv"
	case BlockInvMsg:
		return "block_inv"
	case GetNameInvMsg:
		return "get_name_inv"
	case GetHeadersMsg:
		return "get_headers"
	case GetBlockMsg:
		return "get_block"
	case GetNameHeaderMsg:
		return "get_name_header"
	case NameHeaderMsg:
		return "name_header"
	case BlockMsg:
		return "block"
	case HeadersMsg:
		return "headers"
	default:
		return "unknown"
	}
}

// Message is the envelope MessageDispatcher routes: a type tag plus a
// payload whose concrete type depends on the tag (spec.md §6 table).
type Message struct {
	Type    MessageType
	Payload interface{}
}

// Payload shapes, one per message type in spec.md §6.
type (
	NameInvPayload struct {
		IDs []common.ShortHash
	}
	BlockInvPayload struct {
		IDs []common.Hash
	}
	GetNameInvPayload struct{}

	// HeaderRange is the "range spec" placeholder spec.md §6 reserves for
	// get_headers; the core never interprets it (spec.md §4.5, §9).
	HeaderRange struct {
		FromNum uint32
		ToNum   uint32
	}
	GetHeadersPayload struct {
		Range HeaderRange
	}
	GetBlockPayload struct {
		ID common.Hash
	}
	GetNameHeaderPayload struct {
		ID common.ShortHash
	}
	NameHeaderPayload struct {
		Header nametype.NameHeader
	}
	BlockPayload struct {
		Block nametype.NameBlock
	}
	HeadersPayload struct {
		Headers []nametype.NameHeader
	}
)

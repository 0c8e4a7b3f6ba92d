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

package rlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	A uint64
	B []byte
}

type outer struct {
	Name  string
	Items []inner
	Flag  bool
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := outer{
		Name:  "alice",
		Items: []inner{{A: 7, B: []byte{1, 2, 3}}, {A: 0, B: nil}},
		Flag:  true,
	}

	enc, err := EncodeToBytes(&want)
	require.NoError(t, err)

	var got outer
	require.NoError(t, DecodeBytes(enc, &got))
	assert.Equal(t, want, got)
}

func TestEncodeIsDeterministic(t *testing.T) {
	v := inner{A: 42, B: []byte("x")}
	a, err := EncodeToBytes(&v)
	require.NoError(t, err)
	b, err := EncodeToBytes(&v)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeBytesRequiresPointer(t *testing.T) {
	var v outer
	err := DecodeBytes([]byte{0}, v)
	assert.Error(t, err)
}

func TestDecodeTruncatedInputErrors(t *testing.T) {
	var v inner
	err := DecodeBytes([]byte{kindList, 0x05, 0x00}, &v)
	assert.ErrorIs(t, err, ErrTruncatedInput)
}

func TestUnexportedFieldsAreSkipped(t *testing.T) {
	type withUnexported struct {
		Visible uint64
		hidden  uint64 //nolint:unused
	}
	v := withUnexported{Visible: 9, hidden: 99}
	enc, err := EncodeToBytes(&v)
	require.NoError(t, err)

	var got withUnexported
	require.NoError(t, DecodeBytes(enc, &got))
	assert.Equal(t, uint64(9), got.Visible)
	assert.Equal(t, uint64(0), got.hidden)
}

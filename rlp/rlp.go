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

// Package rlp is the wire codec go-bitname uses to serialize protocol
// messages and persisted records, in the spirit of the teacher's own rlp
// package (github.com/probeum/go-probeum/rlp): a recursive length-prefixed
// byte-oriented encoding, reflection-driven so struct definitions don't
// need hand-written marshalers.
package rlp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
)

// ErrTruncatedInput is returned when a decode runs out of bytes mid-value.
var ErrTruncatedInput = errors.New("rlp: truncated input")

// EncodeToBytes returns the RLP encoding of val.
func EncodeToBytes(val interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, reflect.ValueOf(val)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBytes parses RLP-encoded data into val, which must be a pointer.
func DecodeBytes(data []byte, val interface{}) error {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("rlp: Decode requires a non-nil pointer")
	}
	r := bytes.NewReader(data)
	return decode(r, rv.Elem())
}

// encode writes a length-prefixed item: a one-byte kind tag, a varint
// length, then the payload. Composite kinds (struct, slice, array) recurse.
func encode(buf *bytes.Buffer, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return writeItem(buf, kindNil, nil)
		}
		return encode(buf, v.Elem())
	case reflect.Bool:
		b := byte(0)
		if v.Bool() {
			b = 1
		}
		return writeItem(buf, kindBool, []byte{b})
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return writeItem(buf, kindUint, encodeUint(v.Uint()))
	case reflect.String:
		return writeItem(buf, kindBytes, []byte(v.String()))
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return writeItem(buf, kindBytes, b)
		}
		var inner bytes.Buffer
		for i := 0; i < v.Len(); i++ {
			if err := encode(&inner, v.Index(i)); err != nil {
				return err
			}
		}
		return writeItem(buf, kindList, inner.Bytes())
	case reflect.Struct:
		var inner bytes.Buffer
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).PkgPath != "" {
				continue // unexported
			}
			if err := encode(&inner, v.Field(i)); err != nil {
				return err
			}
		}
		return writeItem(buf, kindList, inner.Bytes())
	default:
		return fmt.Errorf("rlp: unsupported kind %s", v.Kind())
	}
}

func decode(r *bytes.Reader, v reflect.Value) error {
	kind, payload, err := readItem(r)
	if err != nil {
		return err
	}
	switch v.Kind() {
	case reflect.Ptr:
		if kind == kindNil {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeInto(kind, payload, v.Elem())
	default:
		return decodeInto(kind, payload, v)
	}
}

func decodeInto(kind byte, payload []byte, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(len(payload) > 0 && payload[0] != 0)
		return nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		v.SetUint(decodeUint(payload))
		return nil
	case reflect.String:
		v.SetString(string(payload))
		return nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			if len(payload) == 0 {
				v.Set(reflect.Zero(v.Type())) // nil and empty encode alike; decode to nil
				return nil
			}
			b := make([]byte, len(payload))
			copy(b, payload)
			v.SetBytes(b)
			return nil
		}
		r := bytes.NewReader(payload)
		out := reflect.MakeSlice(v.Type(), 0, 0)
		for r.Len() > 0 {
			elem := reflect.New(v.Type().Elem()).Elem()
			if err := decode(r, elem); err != nil {
				return err
			}
			out = reflect.Append(out, elem)
		}
		v.Set(out)
		return nil
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			reflect.Copy(v, reflect.ValueOf(payload))
			return nil
		}
		r := bytes.NewReader(payload)
		for i := 0; i < v.Len() && r.Len() > 0; i++ {
			if err := decode(r, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		r := bytes.NewReader(payload)
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).PkgPath != "" {
				continue
			}
			if err := decode(r, v.Field(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("rlp: unsupported kind %s", v.Kind())
	}
}

const (
	kindNil   = 0
	kindBool  = 1
	kindUint  = 2
	kindBytes = 3
	kindList  = 4
)

func writeItem(buf *bytes.Buffer, kind byte, payload []byte) error {
	buf.WriteByte(kind)
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(payload)))
	buf.Write(lenBuf[:n])
	buf.Write(payload)
	return nil
}

func readItem(r *bytes.Reader) (byte, []byte, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return 0, nil, ErrTruncatedInput
	}
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, nil, ErrTruncatedInput
	}
	payload := make([]byte, length)
	if n, err := r.Read(payload); uint64(n) != length || (err != nil && length != 0) {
		return 0, nil, ErrTruncatedInput
	}
	return kind, payload, nil
}

func encodeUint(u uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u)
	i := 0
	for i < 7 && b[i] == 0 {
		i++
	}
	return b[i:]
}

func decodeUint(b []byte) uint64 {
	var full [8]byte
	copy(full[8-len(b):], b)
	return binary.BigEndian.Uint64(full[:])
}

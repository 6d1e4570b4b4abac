// Package rowcodec is a small tagged-value row codec for the CLI tools.
// It is deliberately not part of the storage core: row decoding is
// schema-driven glue, dispatched over a closed set of primitive types.
package rowcodec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tag identifies the wire type of one encoded row value.
type Tag byte

const (
	TagNil Tag = iota
	TagBool
	TagInt64
	TagFloat64
	TagString
	TagBytes
)

// Value is one decoded row cell. Exactly one of the fields is
// meaningful, selected by Tag.
type Value struct {
	Tag   Tag
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Bytes []byte
}

// Row is an ordered list of decoded cells, one per schema field.
type Row []Value

// MarshalRow encodes a row as tag-prefixed values, one after another.
func MarshalRow(row Row) []byte {
	var out []byte
	for _, v := range row {
		out = append(out, byte(v.Tag))
		switch v.Tag {
		case TagNil:
			// no payload
		case TagBool:
			if v.Bool {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		case TagInt64:
			buf := make([]byte, 8)
			binary.LittleEndian.PutUint64(buf, uint64(v.Int))
			out = append(out, buf...)
		case TagFloat64:
			buf := make([]byte, 8)
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v.Float))
			out = append(out, buf...)
		case TagString:
			out = append(out, encodeLenPrefixed([]byte(v.Str))...)
		case TagBytes:
			out = append(out, encodeLenPrefixed(v.Bytes)...)
		}
	}
	return out
}

// UnmarshalRow decodes n tagged values from b.
func UnmarshalRow(b []byte, n int) (Row, error) {
	row := make(Row, 0, n)
	off := 0
	for i := 0; i < n; i++ {
		if off >= len(b) {
			return nil, fmt.Errorf("rowcodec: short buffer decoding field %d", i)
		}
		tag := Tag(b[off])
		off++
		switch tag {
		case TagNil:
			row = append(row, Value{Tag: TagNil})
		case TagBool:
			if off >= len(b) {
				return nil, fmt.Errorf("rowcodec: short buffer decoding bool field %d", i)
			}
			row = append(row, Value{Tag: TagBool, Bool: b[off] != 0})
			off++
		case TagInt64:
			if off+8 > len(b) {
				return nil, fmt.Errorf("rowcodec: short buffer decoding int64 field %d", i)
			}
			row = append(row, Value{Tag: TagInt64, Int: int64(binary.LittleEndian.Uint64(b[off : off+8]))})
			off += 8
		case TagFloat64:
			if off+8 > len(b) {
				return nil, fmt.Errorf("rowcodec: short buffer decoding float64 field %d", i)
			}
			row = append(row, Value{Tag: TagFloat64, Float: math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8]))})
			off += 8
		case TagString:
			s, consumed, err := decodeLenPrefixed(b[off:])
			if err != nil {
				return nil, fmt.Errorf("rowcodec: field %d: %w", i, err)
			}
			row = append(row, Value{Tag: TagString, Str: string(s)})
			off += consumed
		case TagBytes:
			s, consumed, err := decodeLenPrefixed(b[off:])
			if err != nil {
				return nil, fmt.Errorf("rowcodec: field %d: %w", i, err)
			}
			row = append(row, Value{Tag: TagBytes, Bytes: s})
			off += consumed
		default:
			return nil, fmt.Errorf("rowcodec: unknown tag %d at field %d", tag, i)
		}
	}
	return row, nil
}

func encodeLenPrefixed(b []byte) []byte {
	buf := make([]byte, 4+len(b))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(b)))
	copy(buf[4:], b)
	return buf
}

func decodeLenPrefixed(b []byte) ([]byte, int, error) {
	if len(b) < 4 {
		return nil, 0, fmt.Errorf("short length prefix")
	}
	n := binary.LittleEndian.Uint32(b[:4])
	if uint32(len(b)) < 4+n {
		return nil, 0, fmt.Errorf("short payload")
	}
	out := make([]byte, n)
	copy(out, b[4:4+n])
	return out, 4 + int(n), nil
}


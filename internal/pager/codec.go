package pager

import (
	"cmp"
	"encoding/binary"

	"github.com/google/uuid"
)

// Codec bundles the encoding, sizing, and ordering operations a key type
// needs. Go generics cannot express a bound requiring T's own methods to
// decode a T from bytes, so every index page is instead parameterized by
// a Codec[T] supplied at construction time — the same injected-function
// idiom as the standard library's slices.SortFunc/cmp.Compare.
type Codec[T any] interface {
	// Size returns the exact encoded size of v (SizeMeasurable.AlignedSize
	// for T, specialized to this Codec's concrete T).
	Size(v T) int
	// Encode writes v's wire form. The returned slice length must equal
	// Size(v).
	Encode(v T) []byte
	// Decode reads a value of T from the front of b. It returns the
	// value and error; on success b[:Size(v)] was consumed.
	Decode(b []byte) (T, error)
	// Compare orders two T values the way the owning B-tree orders keys.
	Compare(a, b T) int
	// Zero returns the zero value of T, used to detect empty slots.
	Zero() T
	// IsZero reports whether v is the zero value.
	IsZero(v T) bool
}

// Uint64Codec implements Codec[uint64]: the common fixed-width primary
// key type.
type Uint64Codec struct{}

func (Uint64Codec) Size(uint64) int { return SizeOfUint64 }

func (Uint64Codec) Encode(v uint64) []byte {
	buf := make([]byte, SizeOfUint64)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func (Uint64Codec) Decode(b []byte) (uint64, error) {
	if len(b) < SizeOfUint64 {
		return 0, newErr(ErrDecode, "uint64: short buffer", nil)
	}
	return binary.LittleEndian.Uint64(b[:SizeOfUint64]), nil
}

func (Uint64Codec) Compare(a, b uint64) int { return cmp.Compare(a, b) }
func (Uint64Codec) Zero() uint64            { return 0 }
func (Uint64Codec) IsZero(v uint64) bool    { return v == 0 }

// UUIDCodec implements Codec[uuid.UUID]: a 16-byte identifier key type.
type UUIDCodec struct{}

func (UUIDCodec) Size(uuid.UUID) int { return SizeOfUUID }

func (UUIDCodec) Encode(v uuid.UUID) []byte {
	b := make([]byte, SizeOfUUID)
	copy(b, v[:])
	return b
}

func (UUIDCodec) Decode(b []byte) (uuid.UUID, error) {
	if len(b) < SizeOfUUID {
		return uuid.UUID{}, newErr(ErrDecode, "uuid: short buffer", nil)
	}
	var u uuid.UUID
	copy(u[:], b[:SizeOfUUID])
	return u, nil
}

func (UUIDCodec) Compare(a, b uuid.UUID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (UUIDCodec) Zero() uuid.UUID         { return uuid.UUID{} }
func (UUIDCodec) IsZero(v uuid.UUID) bool { return v == uuid.UUID{} }

// StringCodec implements Codec[string] at the StringAlignedSize layout
// (length <= 8 -> 8 bytes, else Align(length+8)). A length <= 8 string
// has no room left for a separate length field once its own bytes fill
// the 8-byte slot, so it is stored as raw bytes zero-padded on the
// right and recovered by trimming trailing zero bytes on decode — a
// string whose real content ends in a NUL byte at exactly the 8-byte
// boundary is not representable, a limitation accepted for node-id/key
// strings. Longer strings carry an explicit u32 length prefix. Decode
// expects an exactly-sized slice (Size(v) bytes), not an arbitrary
// prefix of a longer buffer.
type StringCodec struct{}

func (StringCodec) Size(v string) int { return StringAlignedSize(len(v)) }

func (StringCodec) Encode(v string) []byte {
	size := StringAlignedSize(len(v))
	buf := make([]byte, size)
	if len(v) <= 8 {
		copy(buf, v)
		return buf
	}
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(v)))
	copy(buf[4:], v)
	return buf
}

func (StringCodec) Decode(b []byte) (string, error) {
	if len(b) < 8 {
		return "", newErr(ErrDecode, "string: short buffer", nil)
	}
	if len(b) == 8 {
		i := 8
		for i > 0 && b[i-1] == 0 {
			i--
		}
		return string(b[:i]), nil
	}
	n := binary.LittleEndian.Uint32(b[0:4])
	size := StringAlignedSize(int(n))
	if len(b) < size || 4+int(n) > len(b) {
		return "", newErr(ErrDecode, "string: truncated buffer", nil)
	}
	return string(b[4 : 4+n]), nil
}

func (StringCodec) Compare(a, b string) int { return cmp.Compare(a, b) }
func (StringCodec) Zero() string            { return "" }
func (StringCodec) IsZero(v string) bool    { return v == "" }

// ── Self-delimiting string codec ──────────────────────────────────────────

// LengthPrefixedStringCodec implements Codec[string] like StringCodec, but
// self-delimiting: it writes an explicit 4-byte raw-length marker ahead of
// StringCodec's own encoding, so Decode can be handed an open-ended buffer
// (more fields following) rather than an exactly-sized slice. Bare
// StringCodec cannot do this — its <= 8 byte form is raw zero-padded
// content with no marker, indistinguishable from the length-prefixed form
// by buffer length alone once trailing bytes belong to later fields.
// Use this codec, not StringCodec, anywhere a string is a ToC key or is
// embedded in a composite page format decoded field-by-field (see
// SpaceInfoPage).
type LengthPrefixedStringCodec struct{}

func (LengthPrefixedStringCodec) Size(v string) int {
	return 4 + StringCodec{}.Size(v)
}

func (LengthPrefixedStringCodec) Encode(v string) []byte {
	inner := StringCodec{}.Encode(v)
	buf := make([]byte, 4+len(inner))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(v)))
	copy(buf[4:], inner)
	return buf
}

func (LengthPrefixedStringCodec) Decode(b []byte) (string, error) {
	if len(b) < 4 {
		return "", newErr(ErrDecode, "length-prefixed string: short buffer", nil)
	}
	rawLen := int(binary.LittleEndian.Uint32(b[:4]))
	slotSize := StringAlignedSize(rawLen)
	if 4+slotSize > len(b) {
		return "", newErr(ErrDecode, "length-prefixed string: truncated buffer", nil)
	}
	return StringCodec{}.Decode(b[4 : 4+slotSize])
}

func (LengthPrefixedStringCodec) Compare(a, b string) int { return cmp.Compare(a, b) }
func (LengthPrefixedStringCodec) Zero() string            { return "" }
func (LengthPrefixedStringCodec) IsZero(v string) bool    { return v == "" }

// LinkCodec implements Codec[Link], used where a Link itself is part of
// an index key (e.g. a TableOfContentsPage keyed by (uint64, Link)
// pairs).
type LinkCodec struct{}

func (LinkCodec) Size(Link) int        { return LinkSize }
func (LinkCodec) Encode(v Link) []byte { return v.Encode() }
func (LinkCodec) Decode(b []byte) (Link, error) {
	return DecodeLink(b)
}
func (LinkCodec) Compare(a, b Link) int {
	if a.PageID != b.PageID {
		return cmp.Compare(a.PageID, b.PageID)
	}
	if a.Offset != b.Offset {
		return cmp.Compare(a.Offset, b.Offset)
	}
	return cmp.Compare(a.Length, b.Length)
}
func (LinkCodec) Zero() Link         { return Link{} }
func (LinkCodec) IsZero(v Link) bool { return v == (Link{}) }

// PageIDCodec implements Codec[PageID], used by TableOfContentsPage's
// empty-page list and as the value half of the ToC's records map.
type PageIDCodec struct{}

func (PageIDCodec) Size(PageID) int { return SizeOfUint32 }
func (PageIDCodec) Encode(v PageID) []byte {
	buf := make([]byte, SizeOfUint32)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}
func (PageIDCodec) Decode(b []byte) (PageID, error) {
	if len(b) < SizeOfUint32 {
		return 0, newErr(ErrDecode, "page id: short buffer", nil)
	}
	return PageID(binary.LittleEndian.Uint32(b[:SizeOfUint32])), nil
}
func (PageIDCodec) Compare(a, b PageID) int { return cmp.Compare(a, b) }
func (PageIDCodec) Zero() PageID            { return NilPageID }
func (PageIDCodec) IsZero(v PageID) bool    { return v == NilPageID }

// Pair is a generic (T1, T2) tuple, used e.g. as a TableOfContentsPage
// key type ((uint64, Link) -> PageID).
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairCodec implements Codec[Pair[A, B]] given codecs for A and B:
// align(size(a)+size(b)) unless either part requires 8-byte alignment.
type PairCodec[A, B any] struct {
	A              Codec[A]
	B              Codec[B]
	RequiresAlign8 bool
}

func (c PairCodec[A, B]) Size(v Pair[A, B]) int {
	return PairAlignedSize(c.A.Size(v.First), c.B.Size(v.Second), c.RequiresAlign8)
}

func (c PairCodec[A, B]) Encode(v Pair[A, B]) []byte {
	a := c.A.Encode(v.First)
	b := c.B.Encode(v.Second)
	size := c.Size(v)
	buf := make([]byte, size)
	copy(buf, a)
	copy(buf[len(a):], b)
	return buf
}

func (c PairCodec[A, B]) Decode(b []byte) (Pair[A, B], error) {
	var zero Pair[A, B]
	first, err := c.A.Decode(b)
	if err != nil {
		return zero, err
	}
	aSize := c.A.Size(first)
	if len(b) < aSize {
		return zero, newErr(ErrDecode, "pair: short buffer", nil)
	}
	second, err := c.B.Decode(b[aSize:])
	if err != nil {
		return zero, err
	}
	return Pair[A, B]{First: first, Second: second}, nil
}

func (c PairCodec[A, B]) Compare(x, y Pair[A, B]) int {
	if r := c.A.Compare(x.First, y.First); r != 0 {
		return r
	}
	return c.B.Compare(x.Second, y.Second)
}

func (c PairCodec[A, B]) Zero() Pair[A, B] {
	return Pair[A, B]{First: c.A.Zero(), Second: c.B.Zero()}
}

func (c PairCodec[A, B]) IsZero(v Pair[A, B]) bool {
	return c.A.IsZero(v.First) && c.B.IsZero(v.Second)
}

// Option is an optional value: a presence flag plus a payload, always
// persisted at T's full width.
type Option[T any] struct {
	Present bool
	Value   T
}

// OptionCodec implements Codec[Option[T]] given a codec for T. An
// Option[T] always occupies its native fixed size whether or not a value
// is present.
type OptionCodec[T any] struct {
	Inner          Codec[T]
	RequiresAlign8 bool
}

func (c OptionCodec[T]) Size(Option[T]) int {
	return OptionAlignedSize(c.Inner.Size(c.Inner.Zero()), c.RequiresAlign8)
}

func (c OptionCodec[T]) Encode(v Option[T]) []byte {
	size := c.Size(v)
	buf := make([]byte, size)
	if v.Present {
		buf[0] = 1
		copy(buf[1:], c.Inner.Encode(v.Value))
	}
	return buf
}

func (c OptionCodec[T]) Decode(b []byte) (Option[T], error) {
	if len(b) < 1 {
		return Option[T]{}, newErr(ErrDecode, "option: short buffer", nil)
	}
	if b[0] == 0 {
		return Option[T]{Present: false, Value: c.Inner.Zero()}, nil
	}
	value, err := c.Inner.Decode(b[1:])
	if err != nil {
		return Option[T]{}, err
	}
	return Option[T]{Present: true, Value: value}, nil
}

func (c OptionCodec[T]) Compare(a, b Option[T]) int {
	if a.Present != b.Present {
		if !a.Present {
			return -1
		}
		return 1
	}
	if !a.Present {
		return 0
	}
	return c.Inner.Compare(a.Value, b.Value)
}

func (c OptionCodec[T]) Zero() Option[T] { return Option[T]{Present: false, Value: c.Inner.Zero()} }

func (c OptionCodec[T]) IsZero(v Option[T]) bool {
	return !v.Present
}

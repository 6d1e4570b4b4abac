package pager

// SizeMeasurable is implemented by fixed-layout values: AlignedSize
// reports the exact number of bytes the value occupies once the archive
// codec encodes it. Types that force 8-byte alignment also implement
// Align8Required.
type SizeMeasurable interface {
	AlignedSize() int
}

// Align8Required is implemented by SizeMeasurable types whose encoding
// must start on an 8-byte boundary within a composite.
type Align8Required interface {
	RequiresAlign8() bool
}

// VariableSizeMeasurable is implemented by variable-length values (and
// composites built over them): AlignedSizeFor reports the exact encoded
// size for a value of the given logical length, without requiring a
// concrete value in hand — used to predict a page's post-insert
// footprint before the value to insert has been constructed.
type VariableSizeMeasurable interface {
	AlignedSizeFor(length int) int
}

// StringSize is the VariableSizeMeasurable implementation for strings:
// callers that only know a prospective string's byte length (e.g.
// deciding whether an insert would overflow a page) can ask
// StringSize{}.AlignedSizeFor(length) instead of constructing the string.
type StringSize struct{}

func (StringSize) AlignedSizeFor(length int) int { return StringAlignedSize(length) }

// Align rounds n up to the next multiple of 4.
func Align(n int) int {
	if n%4 == 0 {
		return n
	}
	return n + (4 - n%4)
}

// Align8 rounds n up to the next multiple of 8.
func Align8(n int) int {
	if n%8 == 0 {
		return n
	}
	return n + (8 - n%8)
}

// SizeOfUint8 through SizeOfFloat64 name the native byte widths used
// throughout the codec; primitives occupy exactly their native width.
const (
	SizeOfUint8   = 1
	SizeOfUint16  = 2
	SizeOfUint32  = 4
	SizeOfUint64  = 8
	SizeOfFloat32 = 4
	SizeOfFloat64 = 8
	SizeOfUUID    = 16
)

// StringAlignedSize gives the encoded size of a string: length <= 8
// encodes to 8 bytes; otherwise Align(length + 8).
func StringAlignedSize(length int) int {
	if length <= 8 {
		return 8
	}
	return Align(length + 8)
}

// VecAlignedSize gives the encoded size of a vector: align(n*e) + 8,
// where e is the per-element encoded width passed in by the caller
// (2, 4, or Align8(elemSize) depending on T's width/alignment class).
func VecAlignedSize(n, elemWidth int) int {
	return Align(n*elemWidth) + 8
}

// PairAlignedSize gives the encoded size of a (T1, T2) tuple: align(a+b)
// unless either operand requires 8-byte alignment, in which case
// align8(a+b).
func PairAlignedSize(a, b int, requiresAlign8 bool) int {
	if requiresAlign8 {
		return Align8(a + b)
	}
	return Align(a + b)
}

// IndexValueAlignedSize computes the size of IndexValue<T> = key + Link,
// which is the per-entry width index pages use: align8 of the key size
// plus the 12-byte link.
func IndexValueAlignedSize(keySize int) int {
	return Align8(keySize + LinkSize)
}

// OptionAlignedSize gives the native size of Option<T>, modeled the same
// way as the (T1,T2) tuple layout with a
// 1-byte present/absent discriminant in the T1 slot — Option<T> is
// always persisted at its full discriminant+payload width regardless of
// whether a given value is present, so the size is fixed per T.
func OptionAlignedSize(innerSize int, requiresAlign8 bool) int {
	return PairAlignedSize(1, innerSize, requiresAlign8)
}

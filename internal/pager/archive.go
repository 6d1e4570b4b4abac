package pager

import "encoding/binary"

// Persistable is implemented by values with a by-parts wire
// representation: a fixed-size prefix of one or more "size" fields
// followed by variable-length tails. AsBytes must return exactly
// AlignedSize() bytes.
type Persistable interface {
	SizeMeasurable
	AsBytes() []byte
}

// VecHeaderSize is the 8-byte bookkeeping header every vector carries in
// front of its (aligned) element data: a u32 element count and a u32
// reserved field, the "+ 8" in VecAlignedSize.
const VecHeaderSize = 8

// EncodeVecHeader writes the 8-byte Vec<T> header for n elements.
func EncodeVecHeader(n int) []byte {
	buf := make([]byte, VecHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	return buf
}

// DecodeVecHeader reads the element count from the front of b.
func DecodeVecHeader(b []byte) (int, error) {
	if len(b) < VecHeaderSize {
		return 0, newErr(ErrDecode, "vec header: short buffer", nil)
	}
	return int(binary.LittleEndian.Uint32(b[0:4])), nil
}

// putUint16 and putUint32 are tiny helpers used throughout the by-parts
// encoders to avoid repeating binary.LittleEndian boilerplate.
func putUint16(buf []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(buf[off:off+2], v)
}

func putUint32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

func getUint16(buf []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(buf[off : off+2])
}

func getUint32(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off : off+4])
}

package pager

import "encoding/binary"

// GeneralHeader appears at the start of every page. Its serialized size
// is exactly GeneralHeaderSize (28) bytes, with 2 bytes of implicit
// trailing padding.
type GeneralHeader struct {
	DataVersion  uint32
	SpaceID      SpaceID
	PageID       PageID
	PreviousID   PageID
	NextID       PageID
	PageType     PageType
	DataLength   uint32
}

// NewGeneralHeader builds a header stamped with the compiled-in
// DataVersion and no chain neighbors (previous_id = next_id = NilPageID).
func NewGeneralHeader(spaceID SpaceID, pageID PageID, pageType PageType) GeneralHeader {
	return GeneralHeader{
		DataVersion: DataVersion,
		SpaceID:     spaceID,
		PageID:      pageID,
		PreviousID:  NilPageID,
		NextID:      NilPageID,
		PageType:    pageType,
	}
}

// Encode writes the header's 28-byte little-endian wire form.
func (h GeneralHeader) Encode() []byte {
	buf := make([]byte, GeneralHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.DataVersion)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.SpaceID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.PageID))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.PreviousID))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(h.NextID))
	binary.LittleEndian.PutUint16(buf[20:22], uint16(h.PageType))
	binary.LittleEndian.PutUint32(buf[22:26], h.DataLength)
	// buf[26:28] is implementation-determined padding, left zero.
	return buf
}

// DecodeGeneralHeader reads a GeneralHeader from the first
// GeneralHeaderSize bytes of b. It validates DataVersion and surfaces a
// VersionMismatch error if it does not match the compiled-in constant.
func DecodeGeneralHeader(b []byte) (GeneralHeader, error) {
	var h GeneralHeader
	if len(b) < GeneralHeaderSize {
		return h, newErr(ErrDecode, "general header: short buffer", nil)
	}
	h.DataVersion = binary.LittleEndian.Uint32(b[0:4])
	h.SpaceID = SpaceID(binary.LittleEndian.Uint32(b[4:8]))
	h.PageID = PageID(binary.LittleEndian.Uint32(b[8:12]))
	h.PreviousID = PageID(binary.LittleEndian.Uint32(b[12:16]))
	h.NextID = PageID(binary.LittleEndian.Uint32(b[16:20]))
	h.PageType = PageType(binary.LittleEndian.Uint16(b[20:22]))
	h.DataLength = binary.LittleEndian.Uint32(b[22:26])
	if h.DataVersion != DataVersion {
		return h, newErr(ErrVersionMismatch, "unexpected data_version", nil)
	}
	return h, nil
}

// IsChainTerminus reports whether NextID marks the end of this page's
// previous_id/next_id chain.
func (h GeneralHeader) IsChainTerminus() bool { return h.NextID == NilPageID }

// GeneralPage wraps a typed inner payload with the page-framing header.
// GeneralPage exclusively owns Inner; nothing else holds a reference to
// it once constructed.
type GeneralPage[T any] struct {
	Header GeneralHeader
	Inner  T
}

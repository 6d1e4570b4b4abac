package pager

import "encoding/binary"

// LinkSize is the exact wire size of a Link: 4 bytes page id, 4 bytes
// offset, 4 bytes length.
const LinkSize = 12

// Link is the on-disk pointer into a page's payload: which page, at what
// byte offset, for how many bytes.
type Link struct {
	PageID PageID
	Offset uint32
	Length uint32
}

// AlignedSize implements SizeMeasurable: a Link always encodes to 12 bytes.
func (Link) AlignedSize() int { return LinkSize }

// Encode writes the link's 12-byte little-endian wire form.
func (l Link) Encode() []byte {
	buf := make([]byte, LinkSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(l.PageID))
	binary.LittleEndian.PutUint32(buf[4:8], l.Offset)
	binary.LittleEndian.PutUint32(buf[8:12], l.Length)
	return buf
}

// DecodeLink reads a Link from the first 12 bytes of b.
func DecodeLink(b []byte) (Link, error) {
	if len(b) < LinkSize {
		return Link{}, newErr(ErrDecode, "link: short buffer", nil)
	}
	return Link{
		PageID: PageID(binary.LittleEndian.Uint32(b[0:4])),
		Offset: binary.LittleEndian.Uint32(b[4:8]),
		Length: binary.LittleEndian.Uint32(b[8:12]),
	}, nil
}

// Unitable reports whether a and b describe adjacent byte ranges within
// the same page such that they can be merged into a single Link.
func (a Link) Unitable(b Link) bool {
	return a.PageID == b.PageID && a.Offset+a.Length == b.Offset
}

// Union merges two unitable links, keeping the left offset and summing
// the lengths. Callers must check Unitable first; Union does not.
func (a Link) Union(b Link) Link {
	return Link{PageID: a.PageID, Offset: a.Offset, Length: a.Length + b.Length}
}

// End returns the byte offset one past the end of the link's range.
func (l Link) End() uint32 { return l.Offset + l.Length }

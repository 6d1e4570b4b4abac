package pager

// DataPage is a fixed-capacity byte buffer addressable by Link, plus a
// high-water mark recording how many bytes have ever been written. Go
// has no const generics, so the capacity is carried as a runtime field
// fixed at construction instead of a type parameter.
type DataPage struct {
	Capacity int
	Length   int
	Buf      []byte
}

// NewDataPage allocates an empty DataPage with the given capacity.
func NewDataPage(capacity int) *DataPage {
	return &DataPage{Capacity: capacity, Buf: make([]byte, capacity)}
}

// UpdateAt requires len(bytes) == link.Length and
// link.Offset+link.Length <= Capacity; it writes bytes at
// [offset, offset+length) and raises Length to max(Length, offset+length).
func (d *DataPage) UpdateAt(link Link, bytes []byte) error {
	if uint32(len(bytes)) != link.Length {
		return newErr(ErrInvalidLink, "update_at: bytes length does not match link length", nil)
	}
	end := link.Offset + link.Length
	if end > uint32(d.Capacity) {
		return newErr(ErrInvalidLink, "update_at: link crosses page boundary", nil)
	}
	copy(d.Buf[link.Offset:end], bytes)
	if int(end) > d.Length {
		d.Length = int(end)
	}
	return nil
}

// GetAt returns the slice described by link.
func (d *DataPage) GetAt(link Link) ([]byte, error) {
	end := link.Offset + link.Length
	if end > uint32(d.Capacity) {
		return nil, newErr(ErrInvalidLink, "get_at: link crosses page boundary", nil)
	}
	out := make([]byte, link.Length)
	copy(out, d.Buf[link.Offset:end])
	return out, nil
}

// AlignedSize implements SizeMeasurable for the inner payload: the full
// fixed buffer, nothing more (the DataPage always occupies its whole
// capacity on disk; Length is bookkeeping, not part of the wire size).
func (d *DataPage) AlignedSize() int { return d.Capacity }

// AsBytes implements Persistable.
func (d *DataPage) AsBytes() []byte {
	out := make([]byte, d.Capacity)
	copy(out, d.Buf)
	return out
}

// DecodeDataPage builds a DataPage from its on-disk bytes. length is the
// high-water mark recorded separately by the caller (the page header's
// data_length field does not itself carry DataPage.Length, since the
// DataPage always persists its whole fixed buffer).
func DecodeDataPage(b []byte, capacity, length int) (*DataPage, error) {
	if len(b) < capacity {
		return nil, newErr(ErrDecode, "data page: short buffer", nil)
	}
	d := &DataPage{Capacity: capacity, Length: length, Buf: make([]byte, capacity)}
	copy(d.Buf, b[:capacity])
	return d, nil
}

// ParseDataPage reads page id as a DataPage of the given capacity. The
// high-water mark is recovered from the page header's DataLength field,
// which PersistDataPage stamps with the DataPage's own Length (not the
// full capacity) so a subsequent parse can resume appending correctly.
func ParseDataPage(s Storage, id PageID, capacity int) (GeneralPage[*DataPage], error) {
	header, err := ParseGeneralHeaderByIndex(s, id)
	if err != nil {
		return GeneralPage[*DataPage]{}, err
	}
	buf := make([]byte, capacity)
	if _, err := s.ReadAt(buf, SeekToPageStart(id)+GeneralHeaderSize); err != nil {
		return GeneralPage[*DataPage]{}, newErr(ErrIo, "parse_data_page: read", err)
	}
	d, err := DecodeDataPage(buf, capacity, int(header.DataLength))
	if err != nil {
		return GeneralPage[*DataPage]{}, err
	}
	return GeneralPage[*DataPage]{Header: header, Inner: d}, nil
}

// PersistDataPage writes a DataPage, stamping the header's DataLength
// with the page's high-water mark rather than its full capacity.
func PersistDataPage(s Storage, header GeneralHeader, d *DataPage) error {
	header.DataLength = uint32(d.Length)
	buf := make([]byte, PageSize)
	copy(buf, header.Encode())
	copy(buf[GeneralHeaderSize:], d.Buf)
	if _, err := s.WriteAt(buf, SeekToPageStart(header.PageID)); err != nil {
		return newErr(ErrIo, "persist_data_page: write", err)
	}
	return nil
}

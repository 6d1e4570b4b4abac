package pager

import "io"

// Storage is the minimal file abstraction the page-framing layer needs:
// random-access reads and writes keyed by absolute byte offset. A real
// file, or an in-memory buffer for tests, both satisfy it.
type Storage interface {
	io.ReaderAt
	io.WriterAt
}

// SeekToPageStart returns the absolute byte offset of the start of page
// id within the file.
func SeekToPageStart(id PageID) int64 { return int64(id) * PageSize }

// SeekByLink returns the absolute byte offset addressed by link: the
// start of its page, past the general header, plus the link's own
// offset.
func SeekByLink(link Link) int64 {
	return SeekToPageStart(link.PageID) + GeneralHeaderSize + int64(link.Offset)
}

// ParseGeneralHeaderByIndex reads and decodes only the 28-byte header of
// page id, without touching the rest of the page.
func ParseGeneralHeaderByIndex(s Storage, id PageID) (GeneralHeader, error) {
	buf := make([]byte, GeneralHeaderSize)
	if _, err := s.ReadAt(buf, SeekToPageStart(id)); err != nil {
		return GeneralHeader{}, newErr(ErrIo, "read general header", err)
	}
	return DecodeGeneralHeader(buf)
}

// readPageInner reads a page's header, then exactly header.DataLength
// bytes of inner payload, or the whole inner region when DataLength is
// zero.
func readPageInner(s Storage, id PageID) (GeneralHeader, []byte, error) {
	header, err := ParseGeneralHeaderByIndex(s, id)
	if err != nil {
		return GeneralHeader{}, nil, err
	}
	n := int(header.DataLength)
	if n == 0 {
		n = InnerPageSize
	}
	inner := make([]byte, n)
	if _, err := s.ReadAt(inner, SeekToPageStart(id)+GeneralHeaderSize); err != nil {
		return GeneralHeader{}, nil, newErr(ErrIo, "read page inner", err)
	}
	return header, inner, nil
}

// ParsePage reads page id's header and inner bytes and decodes the inner
// payload with decode. Failures from I/O surface as ErrIo; decode
// failures propagate as returned by decode (expected to be ErrDecode).
func ParsePage[T any](s Storage, id PageID, decode func(header GeneralHeader, inner []byte) (T, error)) (GeneralPage[T], error) {
	header, inner, err := readPageInner(s, id)
	if err != nil {
		return GeneralPage[T]{}, err
	}
	value, err := decode(header, inner)
	if err != nil {
		return GeneralPage[T]{}, err
	}
	return GeneralPage[T]{Header: header, Inner: value}, nil
}

// PersistPage stamps header.DataLength and writes the header followed by
// the inner bytes at page id's absolute offset. It never writes past
// PageSize; bytes beyond data_length are undefined filler and are left
// zero.
func PersistPage(s Storage, header GeneralHeader, asBytes []byte) error {
	if len(asBytes) > InnerPageSize {
		return newErr(ErrInvalidLink, "persist_page: inner payload exceeds inner page size", nil)
	}
	header.DataLength = uint32(len(asBytes))
	buf := make([]byte, PageSize)
	copy(buf, header.Encode())
	copy(buf[GeneralHeaderSize:], asBytes)
	if _, err := s.WriteAt(buf, SeekToPageStart(header.PageID)); err != nil {
		return newErr(ErrIo, "persist_page: write", err)
	}
	return nil
}

// UpdateAt seeks by link and writes bytes, validating bytes.len ==
// link.Length before touching the file.
func UpdateAt(s Storage, link Link, bytes []byte) error {
	if uint32(len(bytes)) != link.Length {
		return newErr(ErrInvalidLink, "update_at: bytes length does not match link length", nil)
	}
	if link.End() > InnerPageSize {
		return newErr(ErrInvalidLink, "update_at: link crosses page boundary", nil)
	}
	if _, err := s.WriteAt(bytes, SeekByLink(link)); err != nil {
		return newErr(ErrIo, "update_at: write", err)
	}
	return nil
}

// ReadAtLink reads exactly link.Length bytes from the position link
// addresses.
func ReadAtLink(s Storage, link Link) ([]byte, error) {
	buf := make([]byte, link.Length)
	if _, err := s.ReadAt(buf, SeekByLink(link)); err != nil {
		return nil, newErr(ErrIo, "read at link", err)
	}
	return buf, nil
}

// PersistPages writes a batch of pages. A seek-based file handle would
// use one absolute seek for the first page and relative seeks after it;
// Storage's WriterAt/ReaderAt interface already takes an absolute offset
// per call, so that optimization collapses to "issue writes in id order"
// here — sequential calls to an *os.File at increasing offsets avoid
// redundant backward seeks in the underlying descriptor. Batch order is
// preserved as the visible contract.
func PersistPages(s Storage, pages []struct {
	Header  GeneralHeader
	AsBytes []byte
}) error {
	for _, p := range pages {
		if err := PersistPage(s, p.Header, p.AsBytes); err != nil {
			return err
		}
	}
	return nil
}

// ParsePages reads and decodes a batch of page ids with the same
// relative-seek contract as PersistPages: Storage's ReaderAt already
// takes an absolute offset per call, so the "avoid redundant absolute
// seeks" optimization collapses to issuing the reads in id order, which
// is what this does. Batch order is preserved as the visible contract;
// a failure on any page aborts the batch.
func ParsePages[T any](s Storage, ids []PageID, decode func(header GeneralHeader, inner []byte) (T, error)) ([]GeneralPage[T], error) {
	out := make([]GeneralPage[T], 0, len(ids))
	for _, id := range ids {
		page, err := ParsePage(s, id, decode)
		if err != nil {
			return out, err
		}
		out = append(out, page)
	}
	return out, nil
}

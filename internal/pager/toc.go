package pager

import "sort"

// tocHeaderSize is the 8-byte (recordCount, emptyPageCount) prefix every
// TableOfContentsPage persists before its two variable-length arrays.
const tocHeaderSize = 8

type tocRecord[T any] struct {
	Key    T
	PageID PageID
}

// TableOfContentsPage is an ordered map from T (a node-id key) to
// PageID, plus a list of empty/reclaimable page ids and a running
// estimated-size cache. Go has no sorted-map container in the standard
// library, so it is kept as a slice ordered by codec.Compare and
// searched with sort.Search.
//
// Decode reads each record's key via codec.Decode(b[off:]), an
// open-ended buffer (further records and the empty-page list follow).
// A Codec[T] used here must be able to tell where its own encoding ends
// without being handed an exactly-sized slice; fixed-width codecs
// (Uint64Codec, UUIDCodec, LinkCodec, PairCodec over those) already do,
// since their Size is constant. A string-keyed ToC must use
// LengthPrefixedStringCodec, not bare StringCodec — see its doc comment.
type TableOfContentsPage[T any] struct {
	codec      Codec[T]
	records    []tocRecord[T]
	emptyPages []PageID
	estSize    int

	// isLast tracks whether this is the final page in a chain of
	// table-of-contents pages; the chaining policy itself lives with the
	// caller that decides when one page is no longer enough.
	isLast bool
}

// NewTableOfContentsPage constructs an empty ToC. Its EstimatedSize
// starts at the 8-byte header every persisted ToC carries.
func NewTableOfContentsPage[T any](codec Codec[T]) *TableOfContentsPage[T] {
	return &TableOfContentsPage[T]{codec: codec, estSize: tocHeaderSize, isLast: true}
}

func (t *TableOfContentsPage[T]) pairSize(key T) int {
	keySize := t.codec.Size(key)
	align8 := false
	if a, ok := any(t.codec).(Align8Required); ok {
		align8 = a.RequiresAlign8()
	}
	return PairAlignedSize(keySize, SizeOfUint32, align8)
}

func (t *TableOfContentsPage[T]) search(key T) (int, bool) {
	i := sort.Search(len(t.records), func(i int) bool {
		return t.codec.Compare(t.records[i].Key, key) >= 0
	})
	if i < len(t.records) && t.codec.Compare(t.records[i].Key, key) == 0 {
		return i, true
	}
	return i, false
}

// Insert adds an entry, keeping records ordered by key.
// estimated_size += aligned_size((val, page_id)).
func (t *TableOfContentsPage[T]) Insert(key T, pageID PageID) {
	i, found := t.search(key)
	if found {
		t.records[i].PageID = pageID
		return
	}
	t.records = append(t.records, tocRecord[T]{})
	copy(t.records[i+1:], t.records[i:])
	t.records[i] = tocRecord[T]{Key: key, PageID: pageID}
	t.estSize += t.pairSize(key)
}

// Remove removes the entry and pushes its page id to the empty-page
// list. Net size delta: -align(aligned_size(val)+aligned_size(page_id))
// + aligned_size(page_id).
func (t *TableOfContentsPage[T]) Remove(key T) (PageID, bool) {
	pageID, ok := t.removeRecord(key)
	if !ok {
		return 0, false
	}
	t.emptyPages = append(t.emptyPages, pageID)
	t.estSize += SizeOfUint32
	return pageID, true
}

// RemoveWithoutRecord removes the entry without recycling its page id —
// used when the page is truly destroyed, not recycled.
func (t *TableOfContentsPage[T]) RemoveWithoutRecord(key T) (PageID, bool) {
	return t.removeRecord(key)
}

func (t *TableOfContentsPage[T]) removeRecord(key T) (PageID, bool) {
	i, found := t.search(key)
	if !found {
		return 0, false
	}
	pageID := t.records[i].PageID
	t.estSize -= t.pairSize(key)
	t.records = append(t.records[:i], t.records[i+1:]...)
	return pageID, true
}

// PushEmptyPage records id as reclaimable without touching records —
// used by the change-event dispatcher's RemoveNode handling, which
// removes the ToC entry via RemoveWithoutRecord and then separately
// marks the freed id empty.
func (t *TableOfContentsPage[T]) PushEmptyPage(id PageID) {
	t.emptyPages = append(t.emptyPages, id)
	t.estSize += SizeOfUint32
}

// PopEmptyPage returns and removes the last empty page id.
// estimated_size -= aligned_size(page_id).
func (t *TableOfContentsPage[T]) PopEmptyPage() (PageID, bool) {
	n := len(t.emptyPages)
	if n == 0 {
		return 0, false
	}
	id := t.emptyPages[n-1]
	t.emptyPages = t.emptyPages[:n-1]
	t.estSize -= SizeOfUint32
	return id, true
}

// Get looks up the page id for key.
func (t *TableOfContentsPage[T]) Get(key T) (PageID, bool) {
	i, found := t.search(key)
	if !found {
		return 0, false
	}
	return t.records[i].PageID, true
}

// Contains reports whether key has an entry.
func (t *TableOfContentsPage[T]) Contains(key T) bool {
	_, found := t.search(key)
	return found
}

// UpdateKey renames an existing entry's key in place, preserving its
// page id and the ordering invariant.
func (t *TableOfContentsPage[T]) UpdateKey(oldKey, newKey T) bool {
	pageID, ok := t.removeRecord(oldKey)
	if !ok {
		return false
	}
	t.Insert(newKey, pageID)
	return true
}

// Iter returns the records in ascending key order.
func (t *TableOfContentsPage[T]) Iter() []struct {
	Key    T
	PageID PageID
} {
	out := make([]struct {
		Key    T
		PageID PageID
	}, len(t.records))
	for i, r := range t.records {
		out[i] = struct {
			Key    T
			PageID PageID
		}{Key: r.Key, PageID: r.PageID}
	}
	return out
}

// EstimatedSize returns the cached byte-length oracle, which must always
// equal len(AsBytes()).
func (t *TableOfContentsPage[T]) EstimatedSize() int { return t.estSize }

// IsLast reports whether this is the final page in its chain.
func (t *TableOfContentsPage[T]) IsLast() bool { return t.isLast }

// MarkNotLast flips IsLast to false, for a caller that decides to chain
// another ToC page after this one.
func (t *TableOfContentsPage[T]) MarkNotLast() { t.isLast = false }

// AlignedSize implements SizeMeasurable; by construction it always
// equals EstimatedSize.
func (t *TableOfContentsPage[T]) AlignedSize() int { return t.estSize }

// AsBytes implements Persistable: header (record count, empty-page
// count) then the records array then the empty-pages array.
func (t *TableOfContentsPage[T]) AsBytes() []byte {
	buf := make([]byte, 0, t.estSize)
	header := make([]byte, tocHeaderSize)
	putUint32(header, 0, uint32(len(t.records)))
	putUint32(header, 4, uint32(len(t.emptyPages)))
	buf = append(buf, header...)
	for _, r := range t.records {
		size := t.pairSize(r.Key)
		entry := make([]byte, size)
		keyBytes := t.codec.Encode(r.Key)
		copy(entry, keyBytes)
		putUint32(entry, len(keyBytes), uint32(r.PageID))
		buf = append(buf, entry...)
	}
	for _, id := range t.emptyPages {
		idBuf := make([]byte, SizeOfUint32)
		putUint32(idBuf, 0, uint32(id))
		buf = append(buf, idBuf...)
	}
	return buf
}

// DecodeTableOfContentsPage decodes a ToC from its on-disk bytes.
func DecodeTableOfContentsPage[T any](codec Codec[T], b []byte) (*TableOfContentsPage[T], error) {
	if len(b) < tocHeaderSize {
		return nil, newErr(ErrDecode, "toc: short buffer", nil)
	}
	recordCount := int(getUint32(b, 0))
	emptyCount := int(getUint32(b, 4))
	t := NewTableOfContentsPage(codec)
	off := tocHeaderSize
	for i := 0; i < recordCount; i++ {
		key, err := codec.Decode(b[off:])
		if err != nil {
			return nil, err
		}
		size := t.pairSize(key)
		if off+size > len(b) {
			return nil, newErr(ErrDecode, "toc: short record", nil)
		}
		keySize := codec.Size(key)
		pageID := PageID(getUint32(b, off+keySize))
		t.records = append(t.records, tocRecord[T]{Key: key, PageID: pageID})
		t.estSize += size
		off += size
	}
	for i := 0; i < emptyCount; i++ {
		if off+SizeOfUint32 > len(b) {
			return nil, newErr(ErrDecode, "toc: short empty-page list", nil)
		}
		t.emptyPages = append(t.emptyPages, PageID(getUint32(b, off)))
		t.estSize += SizeOfUint32
		off += SizeOfUint32
	}
	return t, nil
}

package pager

// unsizedSlot is one entry of an UnsizedIndexPage's slot vector: the
// byte offset of its value measured backward from the page's logical
// end, and the value's encoded length.
type unsizedSlot struct {
	OffsetFromEnd uint32
	Length        uint16
}

// unsizedSlotEntrySize is the on-disk width of one (u32, u16) slot
// pair, padded per the tuple layout: align(4+2) = 8.
const unsizedSlotEntrySize = 8

// UnsizedIndexPage is a variable-key slotted node page that grows two
// ends toward the middle: a head of fixed-layout metadata, and a tail of
// encoded IndexValue<T> records packed from the high address toward the
// low address. DataLength is the page's fixed byte capacity, carried as
// a runtime field since Go has no const generics.
type UnsizedIndexPage[T any] struct {
	codec Codec[T]

	DataLength      int
	NodeID          IndexValue[T]
	LastValueOffset int // bytes consumed from the page tail
	Slots           []unsizedSlot
	IndexValues     []IndexValue[T]
	RemovedLen      int // reclaimable bytes awaiting a Rebuild
}

func (p *UnsizedIndexPage[T]) valueEncode(v IndexValue[T]) []byte {
	out := make([]byte, p.codec.Size(v.Key)+LinkSize)
	copy(out, p.codec.Encode(v.Key))
	copy(out[p.codec.Size(v.Key):], v.Link.Encode())
	return out
}

func (p *UnsizedIndexPage[T]) valueLen(v IndexValue[T]) int {
	return p.codec.Size(v.Key) + LinkSize
}

func (p *UnsizedIndexPage[T]) decodeValue(b []byte) (IndexValue[T], error) {
	if len(b) < LinkSize {
		return IndexValue[T]{}, newErr(ErrDecode, "unsized index value: short buffer", nil)
	}
	keyLen := len(b) - LinkSize
	key, err := p.codec.Decode(b[:keyLen])
	if err != nil {
		return IndexValue[T]{}, err
	}
	link, err := DecodeLink(b[keyLen:])
	if err != nil {
		return IndexValue[T]{}, err
	}
	return IndexValue[T]{Key: key, Link: link}, nil
}

// NewUnsizedIndexPage constructs a one-entry page: nodeID is its sole
// index value, with a single slot covering it.
func NewUnsizedIndexPage[T any](codec Codec[T], dataLength int, nodeID IndexValue[T]) *UnsizedIndexPage[T] {
	p := &UnsizedIndexPage[T]{codec: codec, DataLength: dataLength, NodeID: nodeID}
	length := p.valueLen(nodeID)
	p.LastValueOffset = length
	p.Slots = []unsizedSlot{{OffsetFromEnd: uint32(length), Length: uint16(length)}}
	p.IndexValues = []IndexValue[T]{nodeID}
	return p
}

func (p *UnsizedIndexPage[T]) slotsVecSize() int {
	return VecAlignedSize(len(p.Slots), unsizedSlotEntrySize)
}

func (p *UnsizedIndexPage[T]) headSize() int {
	return 2 /*slots_size*/ + 2 /*node_id_size*/ + p.valueLen(p.NodeID) + 4 /*last_value_offset*/ + p.slotsVecSize()
}

// AlignedSize implements SizeMeasurable: UnsizedIndexPage always
// occupies its full fixed DataLength on disk, regardless of live entry
// count.
func (p *UnsizedIndexPage[T]) AlignedSize() int { return p.DataLength }

// AsBytes implements Persistable, writing the head from byte 0 and the
// tail entries from the high end of the DataLength-byte buffer backward.
func (p *UnsizedIndexPage[T]) AsBytes() []byte {
	buf := make([]byte, p.DataLength)
	off := 0
	putUint16(buf, off, uint16(len(p.Slots)))
	off += 2
	nodeIDKeySize := p.codec.Size(p.NodeID.Key)
	putUint16(buf, off, uint16(nodeIDKeySize))
	off += 2
	copy(buf[off:], p.valueEncode(p.NodeID))
	off += p.valueLen(p.NodeID)
	putUint32(buf, off, uint32(p.LastValueOffset))
	off += 4
	copy(buf[off:], EncodeVecHeader(len(p.Slots)))
	off += VecHeaderSize
	for _, s := range p.Slots {
		entry := make([]byte, unsizedSlotEntrySize)
		putUint32(entry, 0, s.OffsetFromEnd)
		putUint16(entry, 4, s.Length)
		copy(buf[off:], entry)
		off += unsizedSlotEntrySize
	}
	for i, s := range p.Slots {
		valueBytes := p.valueEncode(p.IndexValues[i])
		start := p.DataLength - int(s.OffsetFromEnd)
		copy(buf[start:start+int(s.Length)], valueBytes)
	}
	return buf
}

// DecodeUnsizedIndexPage decodes a full UnsizedIndexPage from its
// on-disk bytes, given the page's fixed DataLength.
func DecodeUnsizedIndexPage[T any](codec Codec[T], dataLength int, b []byte) (*UnsizedIndexPage[T], error) {
	if len(b) < dataLength {
		return nil, newErr(ErrDecode, "unsized index page: short buffer", nil)
	}
	p := &UnsizedIndexPage[T]{codec: codec, DataLength: dataLength}
	off := 0
	slotsSize := int(getUint16(b, off))
	off += 2
	nodeIDKeySize := int(getUint16(b, off))
	off += 2
	nodeIDValue, err := p.decodeValue(b[off : off+nodeIDKeySize+LinkSize])
	if err != nil {
		return nil, err
	}
	p.NodeID = nodeIDValue
	off += nodeIDKeySize + LinkSize
	p.LastValueOffset = int(getUint32(b, off))
	off += 4
	if _, err := DecodeVecHeader(b[off:]); err != nil {
		return nil, err
	}
	off += VecHeaderSize
	p.Slots = make([]unsizedSlot, slotsSize)
	for i := 0; i < slotsSize; i++ {
		entryOff := off + i*unsizedSlotEntrySize
		p.Slots[i] = unsizedSlot{
			OffsetFromEnd: getUint32(b, entryOff),
			Length:        getUint16(b, entryOff+4),
		}
	}
	p.IndexValues = make([]IndexValue[T], slotsSize)
	for i, s := range p.Slots {
		start := dataLength - int(s.OffsetFromEnd)
		if start < 0 || start+int(s.Length) > dataLength {
			return nil, newErr(ErrDecode, "unsized index page: slot out of range", nil)
		}
		v, err := p.decodeValue(b[start : start+int(s.Length)])
		if err != nil {
			return nil, err
		}
		p.IndexValues[i] = v
	}
	return p, nil
}

// ReadValueWithOffset seeks to the logical page end and back by offset,
// then decodes length bytes as an IndexValue<T>.
func ReadValueWithOffset[T any](s Storage, codec Codec[T], id PageID, offset, length int) (IndexValue[T], error) {
	pos := SeekToPageStart(id) + PageSize - int64(offset)
	buf := make([]byte, length)
	if _, err := s.ReadAt(buf, pos); err != nil {
		return IndexValue[T]{}, newErr(ErrIo, "read_value_with_offset: read", err)
	}
	p := &UnsizedIndexPage[T]{codec: codec}
	return p.decodeValue(buf)
}

// PersistUnsizedValue appends value just before the existing tail
// (growing the tail downward) and returns the new cumulative tail
// offset.
func PersistUnsizedValue[T any](s Storage, codec Codec[T], id PageID, currentOffset int, value IndexValue[T]) (int, error) {
	p := &UnsizedIndexPage[T]{codec: codec}
	encoded := p.valueEncode(value)
	newOffset := currentOffset + len(encoded)
	pos := SeekToPageStart(id) + PageSize - int64(newOffset)
	if _, err := s.WriteAt(encoded, pos); err != nil {
		return 0, newErr(ErrIo, "persist_value: write", err)
	}
	return newOffset, nil
}

// GetNode materializes the ordered sequence of (key, link) pairs.
func (p *UnsizedIndexPage[T]) GetNode() []IndexValue[T] {
	out := make([]IndexValue[T], len(p.IndexValues))
	copy(out, p.IndexValues)
	return out
}

// FromUnsizedNode builds a page from an ordered sequence of values, packing the
// tail consecutively from the end.
func FromUnsizedNode[T any](codec Codec[T], dataLength int, values []IndexValue[T]) *UnsizedIndexPage[T] {
	p := &UnsizedIndexPage[T]{codec: codec, DataLength: dataLength}
	p.IndexValues = make([]IndexValue[T], len(values))
	p.Slots = make([]unsizedSlot, len(values))
	offset := 0
	for i, v := range values {
		length := p.valueLen(v)
		offset += length
		p.Slots[i] = unsizedSlot{OffsetFromEnd: uint32(offset), Length: uint16(length)}
		p.IndexValues[i] = v
	}
	p.LastValueOffset = offset
	if len(values) > 0 {
		p.NodeID = values[len(values)-1]
	}
	return p
}

// Split splits at logical position index: the second half becomes a new
// page populated from index_values[index:]; the receiver is rebuilt from
// its retained prefix.
func (p *UnsizedIndexPage[T]) Split(index int) *UnsizedIndexPage[T] {
	newPage := FromUnsizedNode(p.codec, p.DataLength, append([]IndexValue[T]{}, p.IndexValues[index:]...))
	rebuilt := FromUnsizedNode(p.codec, p.DataLength, append([]IndexValue[T]{}, p.IndexValues[:index]...))
	*p = *rebuilt
	return newPage
}

// Rebuild recompacts the tail: every live value is rewritten consecutive
// from the end, slots and LastValueOffset are regenerated, and
// RemovedLen returns to zero. It is the only operation that rewrites
// tail bytes.
func (p *UnsizedIndexPage[T]) Rebuild() {
	rebuilt := FromUnsizedNode(p.codec, p.DataLength, p.IndexValues)
	p.Slots = rebuilt.Slots
	p.LastValueOffset = rebuilt.LastValueOffset
	p.RemovedLen = 0
}

// ApplyChangeEvent applies InsertAt/RemoveAt events in place, triggering
// a lazy Rebuild once RemovedLen crosses the half-page threshold.
func (p *UnsizedIndexPage[T]) ApplyChangeEvent(event ChangeEvent[T]) error {
	switch event.Kind {
	case EventInsertAt:
		return p.applyInsertAt(event)
	case EventRemoveAt:
		return p.applyRemoveAt(event)
	default:
		return newErr(ErrInvalidEvent, "unsized index page: node-level change event applied to a page", nil)
	}
}

func (p *UnsizedIndexPage[T]) applyInsertAt(event ChangeEvent[T]) error {
	idx := event.Index
	if idx < 0 || idx > len(p.Slots) {
		return newErr(ErrInvalidEvent, "insert_at: index out of range", nil)
	}
	length := p.valueLen(event.Value)
	p.LastValueOffset += length
	slot := unsizedSlot{OffsetFromEnd: uint32(p.LastValueOffset), Length: uint16(length)}

	p.Slots = append(p.Slots, unsizedSlot{})
	copy(p.Slots[idx+1:], p.Slots[idx:len(p.Slots)-1])
	p.Slots[idx] = slot

	p.IndexValues = append(p.IndexValues, IndexValue[T]{})
	copy(p.IndexValues[idx+1:], p.IndexValues[idx:len(p.IndexValues)-1])
	p.IndexValues[idx] = event.Value

	isTailPosition := idx == len(p.Slots)-1
	if p.codec.Compare(event.Value.Key, p.NodeID.Key) > 0 || isTailPosition {
		p.NodeID = event.Value
	}
	return nil
}

func (p *UnsizedIndexPage[T]) applyRemoveAt(event ChangeEvent[T]) error {
	idx := event.Index
	if idx < 0 || idx >= len(p.Slots) {
		return newErr(ErrInvalidEvent, "remove_at: index out of range", nil)
	}
	removed := p.IndexValues[idx]
	p.Slots = append(p.Slots[:idx], p.Slots[idx+1:]...)
	p.IndexValues = append(p.IndexValues[:idx], p.IndexValues[idx+1:]...)

	p.RemovedLen += p.valueLen(removed) + unsizedSlotEntrySize
	if p.RemovedLen > p.DataLength/2 {
		p.Rebuild()
	}
	if p.codec.Compare(removed.Key, event.MaxValue.Key) == 0 && idx != 0 {
		p.NodeID = p.IndexValues[idx-1]
	}
	return nil
}

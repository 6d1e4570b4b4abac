package pager

// IndexValue is the leaf payload of a B-tree node: a key paired with the
// Link addressing the row it points at.
type IndexValue[T any] struct {
	Key  T
	Link Link
}

func zeroIndexValue[T any](codec Codec[T]) IndexValue[T] {
	return IndexValue[T]{Key: codec.Zero(), Link: Link{}}
}

func isZeroIndexValue[T any](codec Codec[T], v IndexValue[T]) bool {
	return codec.IsZero(v.Key) && v.Link == (Link{})
}

// IndexPage is a slotted B-tree node page for fixed-size keys. T is
// expected to have a constant encoded width regardless of value (a
// genuine "fixed-key" type such as uint64 or uuid.UUID); codec is
// injected rather than bound on T itself (see Codec's doc comment).
type IndexPage[T any] struct {
	codec Codec[T]

	Size          int // slot capacity
	NodeID        T   // the max key that addresses this node in the ToC
	CurrentIndex  uint16
	CurrentLength uint16
	Slots         []uint16         // len == Size
	IndexValues   []IndexValue[T]  // len == Size
}

// GetIndexPageSizeFromDataLength derives the slot capacity an IndexPage
// should use so that its utility header plus Size entries fit within
// dataLength bytes.
func GetIndexPageSizeFromDataLength[T any](codec Codec[T], dataLength int) int {
	nodeIDSize := codec.Size(codec.Zero())
	const slotSize = 2
	indexValueSize := Align8(nodeIDSize + LinkSize)
	headerOverhead := nodeIDSize + 2 /*size*/ + 2 /*current_index*/ + 2 /*current_length*/ + VecHeaderSize /*slots*/ + VecHeaderSize /*index_values*/
	return (dataLength - headerOverhead) / (slotSize + indexValueSize)
}

// NewIndexPage constructs an empty IndexPage: all slots zero, all values
// the zero value, current_index = current_length = 0.
func NewIndexPage[T any](codec Codec[T], nodeID T, size int) *IndexPage[T] {
	p := &IndexPage[T]{
		codec:       codec,
		Size:        size,
		NodeID:      nodeID,
		Slots:       make([]uint16, size),
		IndexValues: make([]IndexValue[T], size),
	}
	for i := range p.IndexValues {
		p.IndexValues[i] = zeroIndexValue(codec)
	}
	return p
}

func (p *IndexPage[T]) nodeIDSize() int        { return p.codec.Size(p.codec.Zero()) }
func (p *IndexPage[T]) indexValueWidth() int   { return Align8(p.nodeIDSize() + LinkSize) }
func (p *IndexPage[T]) slotsRegionSize() int   { return VecAlignedSize(p.Size, 2) }
func (p *IndexPage[T]) utilitySize() int {
	return 2 /*size*/ + p.nodeIDSize() + 2 /*current_index*/ + 2 /*current_length*/ + p.slotsRegionSize()
}

// AlignedSize implements SizeMeasurable: the exact byte length this page
// occupies once encoded (utility prefix + index_values vector).
func (p *IndexPage[T]) AlignedSize() int {
	return p.utilitySize() + VecAlignedSize(p.Size, p.indexValueWidth())
}

// IsFull reports whether the page has no reusable slot left for another
// insert. Callers must split before inserting into a full page.
func (p *IndexPage[T]) IsFull() bool {
	return int(p.CurrentLength) >= p.Size || int(p.CurrentIndex) >= p.Size
}

func (p *IndexPage[T]) encodeUtility() []byte {
	buf := make([]byte, p.utilitySize())
	off := 0
	putUint16(buf, off, uint16(p.Size))
	off += 2
	copy(buf[off:], p.codec.Encode(p.NodeID))
	off += p.nodeIDSize()
	putUint16(buf, off, p.CurrentIndex)
	off += 2
	putUint16(buf, off, p.CurrentLength)
	off += 2
	copy(buf[off:], EncodeVecHeader(p.Size))
	off += VecHeaderSize
	for _, s := range p.Slots {
		putUint16(buf, off, s)
		off += 2
	}
	return buf
}

func decodeIndexPageUtility[T any](codec Codec[T], b []byte) (*IndexPage[T], int, error) {
	if len(b) < 2 {
		return nil, 0, newErr(ErrDecode, "index page utility: short buffer", nil)
	}
	size := int(getUint16(b, 0))
	nodeIDSize := codec.Size(codec.Zero())
	off := 2
	if len(b) < off+nodeIDSize+4 {
		return nil, 0, newErr(ErrDecode, "index page utility: short buffer", nil)
	}
	nodeID, err := codec.Decode(b[off : off+nodeIDSize])
	if err != nil {
		return nil, 0, err
	}
	off += nodeIDSize
	currentIndex := getUint16(b, off)
	off += 2
	currentLength := getUint16(b, off)
	off += 2
	if _, err := DecodeVecHeader(b[off:]); err != nil {
		return nil, 0, err
	}
	off += VecHeaderSize
	slots := make([]uint16, size)
	slotsBytes := Align(size * 2)
	if len(b) < off+slotsBytes {
		return nil, 0, newErr(ErrDecode, "index page utility: short slots", nil)
	}
	for i := 0; i < size; i++ {
		slots[i] = getUint16(b, off+i*2)
	}
	off += slotsBytes
	p := &IndexPage[T]{
		codec:         codec,
		Size:          size,
		NodeID:        nodeID,
		CurrentIndex:  currentIndex,
		CurrentLength: currentLength,
		Slots:         slots,
	}
	return p, off, nil
}

// AsBytes implements Persistable.
func (p *IndexPage[T]) AsBytes() []byte {
	utility := p.encodeUtility()
	ivWidth := p.indexValueWidth()
	tail := make([]byte, p.Size*ivWidth+VecHeaderSize)
	copy(tail, EncodeVecHeader(p.Size))
	off := VecHeaderSize
	for _, v := range p.IndexValues {
		entry := make([]byte, ivWidth)
		copy(entry, p.codec.Encode(v.Key))
		copy(entry[p.nodeIDSize():], v.Link.Encode())
		copy(tail[off:], entry)
		off += ivWidth
	}
	return append(utility, tail...)
}

// DecodeIndexPage decodes a full IndexPage from its on-disk bytes.
func DecodeIndexPage[T any](codec Codec[T], b []byte) (*IndexPage[T], error) {
	p, off, err := decodeIndexPageUtility(codec, b)
	if err != nil {
		return nil, err
	}
	if _, err := DecodeVecHeader(b[off:]); err != nil {
		return nil, err
	}
	off += VecHeaderSize
	ivWidth := p.indexValueWidth()
	nodeIDSize := p.nodeIDSize()
	p.IndexValues = make([]IndexValue[T], p.Size)
	for i := 0; i < p.Size; i++ {
		start := off + i*ivWidth
		if start+ivWidth > len(b) {
			return nil, newErr(ErrDecode, "index page: short index_values", nil)
		}
		key, err := codec.Decode(b[start : start+nodeIDSize])
		if err != nil {
			return nil, err
		}
		link, err := DecodeLink(b[start+nodeIDSize : start+ivWidth])
		if err != nil {
			return nil, err
		}
		p.IndexValues[i] = IndexValue[T]{Key: key, Link: link}
	}
	return p, nil
}

// ParseIndexPageUtility reads only the fixed-size prefix of the page
// (size, node_id, current_index, current_length, slots) without reading
// index_values.
func ParseIndexPageUtility[T any](s Storage, codec Codec[T], id PageID) (*IndexPage[T], error) {
	header, err := ParseGeneralHeaderByIndex(s, id)
	if err != nil {
		return nil, err
	}
	// The utility size depends on the page's own declared Size, which we
	// don't know until we read the first 2 bytes; read generously, then
	// trim.
	buf := make([]byte, InnerPageSize)
	if _, err := s.ReadAt(buf, SeekToPageStart(id)+GeneralHeaderSize); err != nil {
		return nil, newErr(ErrIo, "parse_index_page_utility: read", err)
	}
	p, _, err := decodeIndexPageUtility(codec, buf)
	if err != nil {
		return nil, err
	}
	_ = header
	return p, nil
}

// PersistIndexPageUtility writes the utility prefix in place, without
// touching the index_values region.
func PersistIndexPageUtility[T any](s Storage, header GeneralHeader, p *IndexPage[T]) error {
	utility := p.encodeUtility()
	if _, err := s.WriteAt(utility, SeekToPageStart(header.PageID)+GeneralHeaderSize); err != nil {
		return newErr(ErrIo, "persist_index_page_utility: write", err)
	}
	return nil
}

// ReadValueWithIndex seeks directly to index_values[i] and decodes it.
func ReadValueWithIndex[T any](s Storage, codec Codec[T], id PageID, utilitySize, i int) (IndexValue[T], error) {
	ivWidth := Align8(codec.Size(codec.Zero()) + LinkSize)
	nodeIDSize := codec.Size(codec.Zero())
	off := SeekToPageStart(id) + GeneralHeaderSize + int64(utilitySize) + VecHeaderSize + int64(i)*int64(ivWidth)
	buf := make([]byte, ivWidth)
	if _, err := s.ReadAt(buf, off); err != nil {
		return IndexValue[T]{}, newErr(ErrIo, "read_value_with_index: read", err)
	}
	key, err := codec.Decode(buf[:nodeIDSize])
	if err != nil {
		return IndexValue[T]{}, err
	}
	link, err := DecodeLink(buf[nodeIDSize:])
	if err != nil {
		return IndexValue[T]{}, err
	}
	return IndexValue[T]{Key: key, Link: link}, nil
}

// PersistValue writes value at index_values[valueIndex], then advances
// past already-occupied entries to find the next current_index.
// full=true means no zero slot was found before the end of the page —
// an explicit signal, so callers never mistake "reached end" for "found
// an empty entry".
func PersistValue[T any](s Storage, codec Codec[T], id PageID, utilitySize, size, valueIndex int, value IndexValue[T]) (nextIndex int, full bool, err error) {
	ivWidth := Align8(codec.Size(codec.Zero()) + LinkSize)
	nodeIDSize := codec.Size(codec.Zero())
	entry := make([]byte, ivWidth)
	copy(entry, codec.Encode(value.Key))
	copy(entry[nodeIDSize:], value.Link.Encode())
	off := SeekToPageStart(id) + GeneralHeaderSize + int64(utilitySize) + VecHeaderSize + int64(valueIndex)*int64(ivWidth)
	if _, err := s.WriteAt(entry, off); err != nil {
		return 0, false, newErr(ErrIo, "persist_value: write", err)
	}
	next := valueIndex + 1
	for next < size {
		v, err := ReadValueWithIndex(s, codec, id, utilitySize, next)
		if err != nil {
			return 0, false, err
		}
		if isZeroIndexValue(codec, v) {
			return next, false, nil
		}
		next++
	}
	return size, true, nil
}

// RemoveValue overwrites index_values[valueIndex] with the zero value.
func RemoveValue[T any](s Storage, codec Codec[T], id PageID, utilitySize, valueIndex int) error {
	zero := zeroIndexValue(codec)
	ivWidth := Align8(codec.Size(codec.Zero()) + LinkSize)
	entry := make([]byte, ivWidth)
	copy(entry, codec.Encode(zero.Key))
	off := SeekToPageStart(id) + GeneralHeaderSize + int64(utilitySize) + VecHeaderSize + int64(valueIndex)*int64(ivWidth)
	if _, err := s.WriteAt(entry, off); err != nil {
		return newErr(ErrIo, "remove_value: write", err)
	}
	return nil
}

// GetNode materializes the ordered sequence of (key, link) pairs.
func (p *IndexPage[T]) GetNode() []IndexValue[T] {
	out := make([]IndexValue[T], 0, p.CurrentLength)
	for i := 0; i < int(p.CurrentLength); i++ {
		out = append(out, p.IndexValues[p.Slots[i]])
	}
	return out
}

// FromNode builds a page from an ordered sequence of values, packing
// them physically so slots[j] == j.
func FromNode[T any](codec Codec[T], size int, values []IndexValue[T]) *IndexPage[T] {
	var nodeID T
	if len(values) > 0 {
		nodeID = values[len(values)-1].Key
	} else {
		nodeID = codec.Zero()
	}
	p := NewIndexPage(codec, nodeID, size)
	for j, v := range values {
		p.IndexValues[j] = v
		p.Slots[j] = uint16(j)
	}
	p.CurrentLength = uint16(len(values))
	p.CurrentIndex = uint16(len(values))
	return p
}

// Split performs the in-memory split at logical position index: the
// second half becomes a new page (slots repacked so slots[j] == j); the
// receiver keeps entries [0, index) and its bookkeeping is updated in
// place.
func (p *IndexPage[T]) Split(index int) *IndexPage[T] {
	oldLen := int(p.CurrentLength)
	movedSlots := append([]uint16(nil), p.Slots[index:oldLen]...)
	newValues := make([]IndexValue[T], len(movedSlots))
	for j, slot := range movedSlots {
		newValues[j] = p.IndexValues[slot]
		p.IndexValues[slot] = zeroIndexValue(p.codec)
	}
	newPage := FromNode(p.codec, p.Size, newValues)

	for i := index; i < len(p.Slots); i++ {
		p.Slots[i] = 0
	}
	p.CurrentLength = uint16(index)
	if index > 0 {
		p.NodeID = p.IndexValues[p.Slots[index-1]].Key
	}
	if len(movedSlots) > 0 {
		min := movedSlots[0]
		for _, v := range movedSlots[1:] {
			if v < min {
				min = v
			}
		}
		p.CurrentIndex = min
	}
	return newPage
}

// ApplyChangeEvent applies InsertAt/RemoveAt events in place. Node-level
// events (SplitNode/CreateNode/RemoveNode) are rejected with
// ErrInvalidEvent: they are handled one level up, by the table of
// contents.
func (p *IndexPage[T]) ApplyChangeEvent(event ChangeEvent[T]) error {
	switch event.Kind {
	case EventInsertAt:
		return p.applyInsertAt(event)
	case EventRemoveAt:
		return p.applyRemoveAt(event)
	default:
		return newErr(ErrInvalidEvent, "index page: node-level change event applied to a page", nil)
	}
}

func (p *IndexPage[T]) applyInsertAt(event ChangeEvent[T]) error {
	idx := event.Index
	if idx < 0 || idx >= len(p.Slots) {
		return newErr(ErrInvalidEvent, "insert_at: index out of range", nil)
	}
	if p.IsFull() {
		return newErr(ErrInvalidEvent, "insert_at: page is full, caller must split before inserting", nil)
	}
	if p.codec.Compare(event.Value.Key, p.NodeID) > 0 {
		p.NodeID = event.Value.Key
	}
	ci := p.CurrentIndex
	copy(p.Slots[idx+1:], p.Slots[idx:len(p.Slots)-1])
	p.Slots[idx] = ci
	p.CurrentLength++
	p.IndexValues[ci] = event.Value

	next := int(ci) + 1
	for next < p.Size {
		if isZeroIndexValue(p.codec, p.IndexValues[next]) {
			break
		}
		next++
	}
	p.CurrentIndex = uint16(next)
	return nil
}

func (p *IndexPage[T]) applyRemoveAt(event ChangeEvent[T]) error {
	idx := event.Index
	if idx < 0 || idx >= len(p.Slots) {
		return newErr(ErrInvalidEvent, "remove_at: index out of range", nil)
	}
	valuePosition := p.Slots[idx]
	copy(p.Slots[idx:], p.Slots[idx+1:])
	p.Slots[len(p.Slots)-1] = 0
	p.CurrentLength--
	if valuePosition < p.CurrentIndex {
		p.CurrentIndex = valuePosition
	}
	p.IndexValues[valuePosition] = zeroIndexValue(p.codec)
	if p.codec.Compare(event.Value.Key, event.MaxValue.Key) == 0 && p.CurrentLength > 0 {
		p.NodeID = p.IndexValues[p.Slots[idx-1]].Key
	}
	return nil
}

package pager

import "testing"

// IndexPage round trip at the full inner-page capacity.
func TestIndexPageRoundTrip(t *testing.T) {
	codec := Uint64Codec{}
	size := GetIndexPageSizeFromDataLength[uint64](codec, InnerPageSize)
	p := NewIndexPage(codec, uint64(1), size)

	// seed a few entries via ApplyChangeEvent so the page isn't trivially
	// empty.
	for i, key := range []uint64{5, 9, 1} {
		p.ApplyChangeEvent(ChangeEvent[uint64]{
			Kind:     EventInsertAt,
			MaxValue: IndexValue[uint64]{Key: key},
			Value:    IndexValue[uint64]{Key: key, Link: Link{PageID: 1, Offset: uint32(i), Length: 4}},
			Index:    i,
		})
	}

	encoded := p.AsBytes()
	if len(encoded) != p.AlignedSize() {
		t.Fatalf("AsBytes length %d != AlignedSize %d", len(encoded), p.AlignedSize())
	}
	decoded, err := DecodeIndexPage(codec, encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.NodeID != p.NodeID {
		t.Fatalf("node id mismatch: got %v want %v", decoded.NodeID, p.NodeID)
	}
	if decoded.CurrentIndex != p.CurrentIndex || decoded.Size != p.Size {
		t.Fatalf("utility mismatch: got %+v want %+v", decoded, p)
	}
	for i := range p.Slots {
		if decoded.Slots[i] != p.Slots[i] {
			t.Fatalf("slot %d mismatch: got %d want %d", i, decoded.Slots[i], p.Slots[i])
		}
	}
	for i := range p.IndexValues {
		if decoded.IndexValues[i] != p.IndexValues[i] {
			t.Fatalf("index value %d mismatch: got %+v want %+v", i, decoded.IndexValues[i], p.IndexValues[i])
		}
	}
}

// Split at the midpoint of a full 8-slot page.
func TestIndexPageSplitAtMidpoint(t *testing.T) {
	codec := Uint64Codec{}
	p := NewIndexPage(codec, uint64(7), 8)
	for i := 0; i < 8; i++ {
		p.IndexValues[i] = IndexValue[uint64]{Key: uint64(i), Link: Link{PageID: 1, Offset: uint32(i), Length: 1}}
		p.Slots[i] = uint16(i)
	}
	p.CurrentIndex = 8
	p.CurrentLength = 8

	newPage := p.Split(4)

	if p.CurrentLength != 4 || p.CurrentIndex != 4 {
		t.Fatalf("original page bookkeeping wrong: length=%d index=%d", p.CurrentLength, p.CurrentIndex)
	}
	for i := 0; i < 4; i++ {
		if p.IndexValues[p.Slots[i]].Key != uint64(i) {
			t.Fatalf("original key %d wrong: got %d", i, p.IndexValues[p.Slots[i]].Key)
		}
	}

	if newPage.CurrentLength != 4 || newPage.CurrentIndex != 4 {
		t.Fatalf("new page bookkeeping wrong: length=%d index=%d", newPage.CurrentLength, newPage.CurrentIndex)
	}
	for i := 0; i < 4; i++ {
		if newPage.Slots[i] != uint16(i) {
			t.Fatalf("new page slot %d wrong: got %d", i, newPage.Slots[i])
		}
		if newPage.IndexValues[i].Key != uint64(i+4) {
			t.Fatalf("new page key %d wrong: got %d", i, newPage.IndexValues[i].Key)
		}
	}
}

// Inserting a new maximum updates node_id; removing it restores the
// previous maximum.
func TestIndexPageChangeEventInsertThenRemoveMax(t *testing.T) {
	codec := Uint64Codec{}
	p := NewIndexPage(codec, uint64(1), 10)

	err := p.ApplyChangeEvent(ChangeEvent[uint64]{
		Kind:     EventInsertAt,
		MaxValue: IndexValue[uint64]{Key: 1},
		Value:    IndexValue[uint64]{Key: 1},
		Index:    0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.NodeID != 1 || p.IndexValues[0].Key != 1 {
		t.Fatalf("unexpected state after first insert: node_id=%d values[0]=%+v", p.NodeID, p.IndexValues[0])
	}

	err = p.ApplyChangeEvent(ChangeEvent[uint64]{
		Kind:     EventInsertAt,
		MaxValue: IndexValue[uint64]{Key: 1},
		Value:    IndexValue[uint64]{Key: 2},
		Index:    1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.NodeID != 2 {
		t.Fatalf("expected node_id 2 after second insert, got %d", p.NodeID)
	}
	if p.IndexValues[0].Key != 1 || p.IndexValues[1].Key != 2 {
		t.Fatalf("unexpected values after second insert: %+v", p.IndexValues[:2])
	}

	err = p.ApplyChangeEvent(ChangeEvent[uint64]{
		Kind:     EventRemoveAt,
		MaxValue: IndexValue[uint64]{Key: 2},
		Value:    IndexValue[uint64]{Key: 2},
		Index:    1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.NodeID != 1 {
		t.Fatalf("expected node_id 1 after remove max, got %d", p.NodeID)
	}
	if !isZeroIndexValue(codec, p.IndexValues[1]) {
		t.Fatalf("expected index_values[1] zeroed, got %+v", p.IndexValues[1])
	}
}

func TestIndexPageApplyChangeEventRejectsNodeLevelEvents(t *testing.T) {
	codec := Uint64Codec{}
	p := NewIndexPage(codec, uint64(0), 4)
	err := p.ApplyChangeEvent(ChangeEvent[uint64]{Kind: EventSplitNode})
	if err == nil {
		t.Fatal("expected InvalidEvent error")
	}
	pe, ok := err.(*Error)
	if !ok || pe.Kind != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

// Inserting into a full page must fail, not panic.
func TestIndexPageApplyChangeEventRejectsInsertWhenFull(t *testing.T) {
	codec := Uint64Codec{}
	p := NewIndexPage(codec, uint64(0), 4)
	for i, key := range []uint64{1, 2, 3, 4} {
		if err := p.ApplyChangeEvent(ChangeEvent[uint64]{
			Kind:     EventInsertAt,
			MaxValue: IndexValue[uint64]{Key: key},
			Value:    IndexValue[uint64]{Key: key, Link: Link{PageID: 1, Offset: uint32(i), Length: 1}},
			Index:    i,
		}); err != nil {
			t.Fatalf("insert %d: unexpected error: %v", i, err)
		}
	}
	if !p.IsFull() {
		t.Fatal("expected page to report full after filling all slots")
	}

	// Insert at a valid logical position (idx < Size) rather than idx ==
	// Size: this is the case where the old idx-range guard alone did not
	// catch a full page, and CurrentIndex == Size used to index one past
	// IndexValues.
	err := p.ApplyChangeEvent(ChangeEvent[uint64]{
		Kind:     EventInsertAt,
		MaxValue: IndexValue[uint64]{Key: 5},
		Value:    IndexValue[uint64]{Key: 5, Link: Link{PageID: 1, Offset: 4, Length: 1}},
		Index:    2,
	})
	if err == nil {
		t.Fatal("expected an error inserting into a full page, got nil")
	}
	pe, ok := err.(*Error)
	if !ok || pe.Kind != ErrInvalidEvent {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestIndexPagePersistAndReadViaStorage(t *testing.T) {
	codec := Uint64Codec{}
	size := 16
	p := NewIndexPage(codec, uint64(0), size)
	s := newMemStorage()
	header := NewGeneralHeader(1, 5, PageTypeIndex)

	if err := PersistPage(s, header, p.AsBytes()); err != nil {
		t.Fatal(err)
	}

	utility, err := ParseIndexPageUtility(s, codec, 5)
	if err != nil {
		t.Fatal(err)
	}
	if utility.Size != size {
		t.Fatalf("expected size %d, got %d", size, utility.Size)
	}

	value := IndexValue[uint64]{Key: 42, Link: Link{PageID: 1, Offset: 0, Length: 4}}
	next, full, err := PersistValue(s, codec, 5, p.utilitySize(), size, 0, value)
	if err != nil {
		t.Fatal(err)
	}
	if full {
		t.Fatal("did not expect page full")
	}
	if next != 1 {
		t.Fatalf("expected next index 1, got %d", next)
	}

	got, err := ReadValueWithIndex(s, codec, 5, p.utilitySize(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != value {
		t.Fatalf("read back mismatch: got %+v want %+v", got, value)
	}

	if err := RemoveValue(s, codec, 5, p.utilitySize(), 0); err != nil {
		t.Fatal(err)
	}
	got, err = ReadValueWithIndex(s, codec, 5, p.utilitySize(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !isZeroIndexValue(codec, got) {
		t.Fatalf("expected zero value after remove, got %+v", got)
	}
}

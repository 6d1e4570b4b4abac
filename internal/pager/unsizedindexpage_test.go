package pager

import "testing"

// UnsizedIndexPage always occupies its fixed DataLength, and round-trips
// byte for byte.
func TestUnsizedIndexPageRoundTrip(t *testing.T) {
	codec := StringCodec{}
	nodeID := IndexValue[string]{Key: "abc", Link: Link{PageID: 1, Offset: 0, Length: 3}}
	p := NewUnsizedIndexPage(codec, 128, nodeID)

	encoded := p.AsBytes()
	if len(encoded) != 128 {
		t.Fatalf("expected 128 bytes, got %d", len(encoded))
	}
	if p.AlignedSize() != 128 {
		t.Fatalf("expected AlignedSize 128, got %d", p.AlignedSize())
	}

	decoded, err := DecodeUnsizedIndexPage(codec, 128, encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.NodeID != p.NodeID {
		t.Fatalf("node id mismatch: got %+v want %+v", decoded.NodeID, p.NodeID)
	}
	if decoded.LastValueOffset != p.LastValueOffset {
		t.Fatalf("last_value_offset mismatch: got %d want %d", decoded.LastValueOffset, p.LastValueOffset)
	}
	if len(decoded.IndexValues) != 1 || decoded.IndexValues[0] != p.IndexValues[0] {
		t.Fatalf("index values mismatch: got %+v want %+v", decoded.IndexValues, p.IndexValues)
	}
}

// The same round trip at a full 1024-byte page with a long key that
// takes the length-prefixed string form.
func TestUnsizedIndexPageRoundTripLongKey(t *testing.T) {
	codec := StringCodec{}
	nodeID := IndexValue[string]{Key: "Someone from somewhere"}
	p := NewUnsizedIndexPage(codec, 1024, nodeID)

	encoded := p.AsBytes()
	if len(encoded) != 1024 {
		t.Fatalf("expected 1024 bytes, got %d", len(encoded))
	}
	decoded, err := DecodeUnsizedIndexPage(codec, 1024, encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.NodeID != p.NodeID {
		t.Fatalf("node id mismatch: got %+v want %+v", decoded.NodeID, p.NodeID)
	}
	if len(decoded.Slots) != 1 || decoded.Slots[0] != p.Slots[0] {
		t.Fatalf("slots mismatch: got %+v want %+v", decoded.Slots, p.Slots)
	}
}

func TestUnsizedIndexPageInsertAndRemove(t *testing.T) {
	codec := StringCodec{}
	nodeID := IndexValue[string]{Key: "mmm", Link: Link{PageID: 1, Offset: 0, Length: 3}}
	p := NewUnsizedIndexPage(codec, 512, nodeID)

	err := p.ApplyChangeEvent(ChangeEvent[string]{
		Kind:     EventInsertAt,
		MaxValue: nodeID,
		Value:    IndexValue[string]{Key: "zzz", Link: Link{PageID: 1, Offset: 3, Length: 3}},
		Index:    1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.NodeID.Key != "zzz" {
		t.Fatalf("expected node_id updated to zzz (tail insert), got %q", p.NodeID.Key)
	}
	if len(p.IndexValues) != 2 || len(p.Slots) != 2 {
		t.Fatalf("expected 2 entries after insert, got %d values %d slots", len(p.IndexValues), len(p.Slots))
	}
	if p.AlignedSize() != 512 {
		t.Fatalf("AlignedSize must stay pinned to DataLength, got %d", p.AlignedSize())
	}

	err = p.ApplyChangeEvent(ChangeEvent[string]{
		Kind:     EventRemoveAt,
		MaxValue: IndexValue[string]{Key: "zzz"},
		Value:    IndexValue[string]{Key: "zzz"},
		Index:    1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.IndexValues) != 1 || p.IndexValues[0].Key != "mmm" {
		t.Fatalf("expected single remaining entry mmm, got %+v", p.IndexValues)
	}
	if p.NodeID.Key != "mmm" {
		t.Fatalf("expected node_id to fall back to mmm after removing the max, got %q", p.NodeID.Key)
	}
}

func TestUnsizedIndexPageRebuildTriggersOnRemovedLenThreshold(t *testing.T) {
	codec := StringCodec{}
	nodeID := IndexValue[string]{Key: "a", Link: Link{PageID: 1, Offset: 0, Length: 1}}
	p := NewUnsizedIndexPage(codec, 128, nodeID)

	// Each of "a".."e" occupies 20 value bytes + 8 slot bytes == 28 bytes
	// of reclaimable space once removed; removing "a", "b", "c" in turn
	// gives 28, 56, 84, and 128/2 == 64, so the third removal (84 > 64)
	// must trip an automatic Rebuild.
	for i, k := range []string{"b", "c", "d", "e"} {
		if err := p.ApplyChangeEvent(ChangeEvent[string]{
			Kind:     EventInsertAt,
			MaxValue: p.NodeID,
			Value:    IndexValue[string]{Key: k, Link: Link{PageID: 1, Offset: uint32(i + 1), Length: 1}},
			Index:    len(p.Slots),
		}); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 3; i++ {
		if err := p.ApplyChangeEvent(ChangeEvent[string]{
			Kind:     EventRemoveAt,
			MaxValue: p.IndexValues[0],
			Value:    p.IndexValues[0],
			Index:    0,
		}); err != nil {
			t.Fatal(err)
		}
	}
	if p.RemovedLen != 0 {
		t.Fatalf("expected RemovedLen reset to 0 by automatic Rebuild, got %d", p.RemovedLen)
	}
	if len(p.IndexValues) != 2 {
		t.Fatalf("expected 2 entries remaining, got %d", len(p.IndexValues))
	}
}

func TestUnsizedIndexPageSplit(t *testing.T) {
	codec := StringCodec{}
	nodeID := IndexValue[string]{Key: "a", Link: Link{PageID: 1, Offset: 0, Length: 1}}
	p := NewUnsizedIndexPage(codec, 256, nodeID)
	for i, k := range []string{"b", "c", "d"} {
		if err := p.ApplyChangeEvent(ChangeEvent[string]{
			Kind:     EventInsertAt,
			MaxValue: p.NodeID,
			Value:    IndexValue[string]{Key: k, Link: Link{PageID: 1, Offset: uint32(i + 1), Length: 1}},
			Index:    len(p.Slots),
		}); err != nil {
			t.Fatal(err)
		}
	}

	newPage := p.Split(2)
	if len(p.IndexValues) != 2 || len(newPage.IndexValues) != 2 {
		t.Fatalf("expected 2/2 split, got %d/%d", len(p.IndexValues), len(newPage.IndexValues))
	}
	if p.AlignedSize() != 256 || newPage.AlignedSize() != 256 {
		t.Fatal("split halves must both keep the original DataLength")
	}
	if newPage.IndexValues[0].Key != "c" {
		t.Fatalf("expected new page to start at c, got %q", newPage.IndexValues[0].Key)
	}
}

package pager

import "testing"

// A Link fits in exactly 12 bytes.
func TestLinkEncodeSize(t *testing.T) {
	l := Link{PageID: 1, Offset: 10, Length: 20}
	encoded := l.Encode()
	if len(encoded) != 12 {
		t.Fatalf("expected 12 bytes, got %d", len(encoded))
	}
	if l.AlignedSize() != 12 {
		t.Fatalf("expected AlignedSize 12, got %d", l.AlignedSize())
	}
	decoded, err := DecodeLink(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != l {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, l)
	}
}

func TestLinkUnitableUnion(t *testing.T) {
	a := Link{PageID: 1, Offset: 0, Length: 10}
	b := Link{PageID: 1, Offset: 10, Length: 5}
	if !a.Unitable(b) {
		t.Fatal("expected a and b to be unitable")
	}
	u := a.Union(b)
	if u != (Link{PageID: 1, Offset: 0, Length: 15}) {
		t.Fatalf("unexpected union: %+v", u)
	}

	c := Link{PageID: 1, Offset: 11, Length: 5}
	if a.Unitable(c) {
		t.Fatal("a and c should not be unitable (gap)")
	}
}

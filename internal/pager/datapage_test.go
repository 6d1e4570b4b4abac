package pager

import "testing"

func TestDataPageUpdateAtBoundaries(t *testing.T) {
	d := NewDataPage(16)

	if err := d.UpdateAt(Link{Offset: 0, Length: 4}, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	if d.Length != 4 {
		t.Fatalf("expected high-water mark 4, got %d", d.Length)
	}

	// exact end of capacity succeeds
	if err := d.UpdateAt(Link{Offset: 12, Length: 4}, []byte{5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}
	if d.Length != 16 {
		t.Fatalf("expected high-water mark 16, got %d", d.Length)
	}

	// one byte beyond capacity fails
	if err := d.UpdateAt(Link{Offset: 13, Length: 4}, []byte{1, 2, 3, 4}); err == nil {
		t.Fatal("expected link-crosses-boundary error")
	}

	// mismatched bytes length fails
	if err := d.UpdateAt(Link{Offset: 0, Length: 4}, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected invalid link error for length mismatch")
	}

	got, err := d.GetAt(Link{Offset: 12, Length: 4})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{5, 6, 7, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetAt mismatch at %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestDataPagePersistParseRoundTrip(t *testing.T) {
	s := newMemStorage()
	d := NewDataPage(64)
	if err := d.UpdateAt(Link{Offset: 0, Length: 3}, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	header := NewGeneralHeader(1, 2, PageTypeData)
	if err := PersistDataPage(s, header, d); err != nil {
		t.Fatal(err)
	}

	page, err := ParseDataPage(s, 2, 64)
	if err != nil {
		t.Fatal(err)
	}
	if page.Header.DataLength != 3 {
		t.Fatalf("expected stamped data_length 3, got %d", page.Header.DataLength)
	}
	if page.Inner.Length != 3 {
		t.Fatalf("expected recovered high-water mark 3, got %d", page.Inner.Length)
	}
	got, err := page.Inner.GetAt(Link{Offset: 0, Length: 3})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Fatalf("expected 'abc', got %q", got)
	}
}

package pager

import "testing"

func TestPageIDNextAndIsEmpty(t *testing.T) {
	if !NilPageID.IsEmpty() {
		t.Fatal("expected NilPageID to report empty")
	}
	if PageID(3).IsEmpty() {
		t.Fatal("did not expect page 3 to report empty")
	}
	if got := PageID(3).Next(); got != 4 {
		t.Fatalf("expected Next() == 4, got %d", got)
	}
}

func TestIntervalContainsAndLen(t *testing.T) {
	iv := Interval{Start: 2, End: 5}
	if iv.Len() != 4 {
		t.Fatalf("expected length 4, got %d", iv.Len())
	}
	for _, id := range []PageID{2, 3, 5} {
		if !iv.Contains(id) {
			t.Fatalf("expected interval to contain page %d", id)
		}
	}
	for _, id := range []PageID{1, 6} {
		if iv.Contains(id) {
			t.Fatalf("did not expect interval to contain page %d", id)
		}
	}
}

func TestPageTypeString(t *testing.T) {
	cases := map[PageType]string{
		PageTypeEmpty:                "Empty",
		PageTypeSpaceInfo:            "SpaceInfo",
		PageTypeData:                 "Data",
		PageTypeIndex:                "Index",
		PageTypeIndexTableOfContents: "IndexTableOfContents",
		PageType(999):                "PageType(999)",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("PageType(%d).String() = %q, want %q", uint16(typ), got, want)
		}
	}
}

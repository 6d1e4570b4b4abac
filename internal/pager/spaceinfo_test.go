package pager

import "testing"

// SpaceInfoPage round trip, using exactly the shapes a real space writes:
// short (<= 8 byte) field/type/pk names alongside longer ones, so the
// short-string decode path is actually exercised end to end.
func TestSpaceInfoPageRoundTrip(t *testing.T) {
	s := &SpaceInfoPage{
		SpaceID:    1,
		PageCount:  3,
		PKGenState: 42,
		Name:       "space",
		RowSchema: []FieldSchema{
			{Name: "id", Type: "int64"},
			{Name: "payload", Type: "string"},
			{Name: "created_at_long_name", Type: "timestamp"},
		},
		PKFields:     []string{"id"},
		SecondaryIdx: []FieldSchema{{Name: "payload", Type: "string"}},
		FreeLinks:    []Link{{PageID: 2, Offset: 10, Length: 20}},
	}

	encoded := s.AsBytes()
	if len(encoded) != s.AlignedSize() {
		t.Fatalf("AsBytes length %d != AlignedSize %d", len(encoded), s.AlignedSize())
	}

	decoded, err := DecodeSpaceInfoPage(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.SpaceID != s.SpaceID || decoded.PageCount != s.PageCount || decoded.PKGenState != s.PKGenState {
		t.Fatalf("scalar fields mismatch: got %+v want %+v", decoded, s)
	}
	if decoded.Name != s.Name {
		t.Fatalf("name mismatch: got %q want %q", decoded.Name, s.Name)
	}
	if len(decoded.RowSchema) != len(s.RowSchema) {
		t.Fatalf("row schema length mismatch: got %d want %d", len(decoded.RowSchema), len(s.RowSchema))
	}
	for i, f := range s.RowSchema {
		if decoded.RowSchema[i] != f {
			t.Fatalf("row schema %d mismatch: got %+v want %+v", i, decoded.RowSchema[i], f)
		}
	}
	if len(decoded.PKFields) != 1 || decoded.PKFields[0] != "id" {
		t.Fatalf("pk fields mismatch: got %v", decoded.PKFields)
	}
	if len(decoded.SecondaryIdx) != 1 || decoded.SecondaryIdx[0] != s.SecondaryIdx[0] {
		t.Fatalf("secondary index mismatch: got %+v", decoded.SecondaryIdx)
	}
	if len(decoded.FreeLinks) != 1 || decoded.FreeLinks[0] != s.FreeLinks[0] {
		t.Fatalf("free links mismatch: got %+v", decoded.FreeLinks)
	}
}

// A SpaceInfoPage whose every string field is short (<= 8 bytes) must
// still round trip: this is the exact shape space.Create writes, and a
// codec that silently assumes every field is the last in the buffer
// (rather than self-delimiting) breaks on it.
func TestSpaceInfoPageRoundTripAllShortStrings(t *testing.T) {
	s := &SpaceInfoPage{
		SpaceID: 1,
		Name:    "space",
		RowSchema: []FieldSchema{
			{Name: "id", Type: "int64"},
			{Name: "payload", Type: "string"},
		},
		PKFields: []string{"id"},
	}

	encoded := s.AsBytes()
	decoded, err := DecodeSpaceInfoPage(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Name != "space" {
		t.Fatalf("expected name %q, got %q", "space", decoded.Name)
	}
	if len(decoded.RowSchema) != 2 || decoded.RowSchema[0].Name != "id" || decoded.RowSchema[1].Name != "payload" {
		t.Fatalf("row schema mismatch: got %+v", decoded.RowSchema)
	}
}

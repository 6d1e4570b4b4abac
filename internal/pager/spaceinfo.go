package pager

// FieldSchema names one row field and the type name used to decode it
// (see internal/rowcodec for the closed set of type names the CLI
// dumper understands).
type FieldSchema struct {
	Name string
	Type string
}

// SpaceInfoPage is the page at page_id = 0: the space's own metadata,
// its row schema, primary-key field names, secondary indexes, and the
// list of free (reclaimable) data Links.
type SpaceInfoPage struct {
	SpaceID      SpaceID
	PageCount    uint32
	PKGenState   uint64 // implementation-defined primary-key generator state
	Name         string
	RowSchema    []FieldSchema
	PKFields     []string
	SecondaryIdx []FieldSchema
	FreeLinks    []Link
}

// stringField is the one Codec[string] every field of this page uses:
// since each string here sits in front of further fields in an open-ended
// buffer, it must be self-delimiting (see LengthPrefixedStringCodec's doc
// comment) — bare StringCodec cannot be decoded that way.
var stringField = LengthPrefixedStringCodec{}

// AlignedSize implements SizeMeasurable by summing the by-parts layout
// this type persists (see AsBytes).
func (s *SpaceInfoPage) AlignedSize() int {
	size := 4 /*space_id*/ + 4 /*page_count*/ + 8 /*pk_gen_state*/
	size += stringField.Size(s.Name)
	size += VecHeaderSize
	for _, f := range s.RowSchema {
		size += Align(stringField.Size(f.Name) + stringField.Size(f.Type))
	}
	size += VecHeaderSize
	for _, n := range s.PKFields {
		size += stringField.Size(n)
	}
	size += VecHeaderSize
	for _, f := range s.SecondaryIdx {
		size += Align(stringField.Size(f.Name) + stringField.Size(f.Type))
	}
	size += VecHeaderSize
	size += len(s.FreeLinks) * LinkSize
	return size
}

func encodeFieldSchema(f FieldSchema) []byte {
	name := stringField.Encode(f.Name)
	typ := stringField.Encode(f.Type)
	buf := make([]byte, len(name)+len(typ))
	copy(buf, name)
	copy(buf[len(name):], typ)
	return buf
}

func decodeFieldSchema(b []byte) (FieldSchema, int, error) {
	name, err := stringField.Decode(b)
	if err != nil {
		return FieldSchema{}, 0, err
	}
	nameSize := stringField.Size(name)
	typ, err := stringField.Decode(b[nameSize:])
	if err != nil {
		return FieldSchema{}, 0, err
	}
	typSize := stringField.Size(typ)
	return FieldSchema{Name: name, Type: typ}, nameSize + typSize, nil
}

// AsBytes implements Persistable.
func (s *SpaceInfoPage) AsBytes() []byte {
	buf := make([]byte, 0, s.AlignedSize())
	head := make([]byte, 8)
	putUint32(head, 0, uint32(s.SpaceID))
	putUint32(head, 4, s.PageCount)
	buf = append(buf, head...)
	pk := make([]byte, 8)
	putUint32(pk, 0, uint32(s.PKGenState))
	putUint32(pk, 4, uint32(s.PKGenState>>32))
	buf = append(buf, pk...)
	buf = append(buf, stringField.Encode(s.Name)...)

	buf = append(buf, EncodeVecHeader(len(s.RowSchema))...)
	for _, f := range s.RowSchema {
		buf = append(buf, encodeFieldSchema(f)...)
	}

	buf = append(buf, EncodeVecHeader(len(s.PKFields))...)
	for _, n := range s.PKFields {
		buf = append(buf, stringField.Encode(n)...)
	}

	buf = append(buf, EncodeVecHeader(len(s.SecondaryIdx))...)
	for _, f := range s.SecondaryIdx {
		buf = append(buf, encodeFieldSchema(f)...)
	}

	buf = append(buf, EncodeVecHeader(len(s.FreeLinks))...)
	for _, l := range s.FreeLinks {
		buf = append(buf, l.Encode()...)
	}
	return buf
}

// DecodeSpaceInfoPage decodes a SpaceInfoPage from its on-disk bytes.
func DecodeSpaceInfoPage(b []byte) (*SpaceInfoPage, error) {
	if len(b) < 16 {
		return nil, newErr(ErrDecode, "space info: short buffer", nil)
	}
	s := &SpaceInfoPage{}
	s.SpaceID = SpaceID(getUint32(b, 0))
	s.PageCount = getUint32(b, 4)
	lo := getUint32(b, 8)
	hi := getUint32(b, 12)
	s.PKGenState = uint64(hi)<<32 | uint64(lo)
	off := 16

	name, err := stringField.Decode(b[off:])
	if err != nil {
		return nil, err
	}
	s.Name = name
	off += stringField.Size(name)

	n, err := DecodeVecHeader(b[off:])
	if err != nil {
		return nil, err
	}
	off += VecHeaderSize
	for i := 0; i < n; i++ {
		f, consumed, err := decodeFieldSchema(b[off:])
		if err != nil {
			return nil, err
		}
		s.RowSchema = append(s.RowSchema, f)
		off += Align(consumed)
	}

	n, err = DecodeVecHeader(b[off:])
	if err != nil {
		return nil, err
	}
	off += VecHeaderSize
	for i := 0; i < n; i++ {
		name, err := stringField.Decode(b[off:])
		if err != nil {
			return nil, err
		}
		s.PKFields = append(s.PKFields, name)
		off += stringField.Size(name)
	}

	n, err = DecodeVecHeader(b[off:])
	if err != nil {
		return nil, err
	}
	off += VecHeaderSize
	for i := 0; i < n; i++ {
		f, consumed, err := decodeFieldSchema(b[off:])
		if err != nil {
			return nil, err
		}
		s.SecondaryIdx = append(s.SecondaryIdx, f)
		off += Align(consumed)
	}

	n, err = DecodeVecHeader(b[off:])
	if err != nil {
		return nil, err
	}
	off += VecHeaderSize
	for i := 0; i < n; i++ {
		link, err := DecodeLink(b[off:])
		if err != nil {
			return nil, err
		}
		s.FreeLinks = append(s.FreeLinks, link)
		off += LinkSize
	}

	return s, nil
}

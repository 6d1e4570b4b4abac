// Package space sequences pager-core operations into "build a data
// file" and "read a data file" — just enough glue for the
// create-data-file/dump-data-file CLIs, not a general-purpose space
// manager.
package space

import (
	"fmt"
	"os"

	"github.com/tinyspace/spaceengine/internal/pager"
	"github.com/tinyspace/spaceengine/internal/rowcodec"
)

const (
	pageSpaceInfo = pager.PageID(0)
	pageData      = pager.PageID(1)
	pageToC       = pager.PageID(2)
	pageIndexBase = pager.PageID(3)
)

// Row is one synthesized or decoded record: a primary key plus an
// arbitrary payload string, the minimal shape the CLI surface needs.
type Row struct {
	ID      uint64
	Payload string
}

// Create builds a brand-new data file at path containing a valid
// SpaceInfoPage, a Data page holding count synthesized rows, an
// IndexTableOfContents page, and one or more fixed-key Index pages
// chaining over the rows' primary keys.
func Create(path string, count int, schemaName string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("space: create %s: %w", path, err)
	}
	defer f.Close()

	codec := pager.Uint64Codec{}
	dataPage := pager.NewDataPage(pager.InnerPageSize)

	values := make([]pager.IndexValue[uint64], 0, count)
	offset := uint32(0)
	for i := 0; i < count; i++ {
		row := rowcodec.Row{
			{Tag: rowcodec.TagInt64, Int: int64(i)},
			{Tag: rowcodec.TagString, Str: fmt.Sprintf("row-%d", i)},
		}
		encoded := rowcodec.MarshalRow(row)
		link := pager.Link{PageID: pageData, Offset: offset, Length: uint32(len(encoded))}
		if err := dataPage.UpdateAt(link, encoded); err != nil {
			return fmt.Errorf("space: write row %d: %w", i, err)
		}
		offset += uint32(len(encoded))
		values = append(values, pager.IndexValue[uint64]{Key: uint64(i), Link: link})
	}

	capacity := pager.GetIndexPageSizeFromDataLength[uint64](codec, pager.InnerPageSize)
	if capacity <= 0 {
		capacity = 1
	}

	toc := pager.NewTableOfContentsPage(codec)
	var indexPages []*pager.IndexPage[uint64]
	for start := 0; start < len(values) || (start == 0 && len(values) == 0); start += capacity {
		end := start + capacity
		if end > len(values) {
			end = len(values)
		}
		chunk := values[start:end]
		page := pager.FromNode(codec, capacity, chunk)
		pageID := pageIndexBase + pager.PageID(len(indexPages))
		toc.Insert(page.NodeID, pageID)
		indexPages = append(indexPages, page)
		if end == len(values) {
			break
		}
	}

	info := &pager.SpaceInfoPage{
		SpaceID:   1,
		PageCount: uint32(3 + len(indexPages)),
		PKGenState: uint64(count),
		Name:       schemaName,
		RowSchema: []pager.FieldSchema{
			{Name: "id", Type: "int64"},
			{Name: "payload", Type: "string"},
		},
		PKFields: []string{"id"},
	}

	if err := pager.PersistPage(f, pager.NewGeneralHeader(1, pageSpaceInfo, pager.PageTypeSpaceInfo), info.AsBytes()); err != nil {
		return err
	}
	if err := pager.PersistDataPage(f, pager.NewGeneralHeader(1, pageData, pager.PageTypeData), dataPage); err != nil {
		return err
	}
	if err := pager.PersistPage(f, pager.NewGeneralHeader(1, pageToC, pager.PageTypeIndexTableOfContents), toc.AsBytes()); err != nil {
		return err
	}
	for i, p := range indexPages {
		id := pageIndexBase + pager.PageID(i)
		header := pager.NewGeneralHeader(1, id, pager.PageTypeIndex)
		if i+1 < len(indexPages) {
			header.NextID = id + 1
		}
		if i > 0 {
			header.PreviousID = id - 1
		}
		if err := pager.PersistPage(f, header, p.AsBytes()); err != nil {
			return err
		}
	}
	return nil
}

// Headers parses the general header of every page in the file, in id
// order. The file length is always a whole multiple of the page size, so
// the page count falls straight out of Stat.
func Headers(path string) ([]pager.GeneralHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("space: open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("space: stat %s: %w", path, err)
	}
	count := st.Size() / pager.PageSize

	headers := make([]pager.GeneralHeader, 0, count)
	for id := pager.PageID(0); int64(id) < count; id = id.Next() {
		h, err := pager.ParseGeneralHeaderByIndex(f, id)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}

// Dump opens an existing data file and decodes every row it holds, in
// primary-key order.
func Dump(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("space: open %s: %w", path, err)
	}
	defer f.Close()

	infoHeader, infoInner, err := readInner(f, pageSpaceInfo)
	if err != nil {
		return nil, err
	}
	if infoHeader.PageType != pager.PageTypeSpaceInfo {
		return nil, fmt.Errorf("space: page 0 is not a SpaceInfoPage")
	}
	info, err := pager.DecodeSpaceInfoPage(infoInner)
	if err != nil {
		return nil, err
	}

	dataHeader, err := pager.ParseGeneralHeaderByIndex(f, pageData)
	if err != nil {
		return nil, err
	}
	dataPageResult, err := pager.ParseDataPage(f, pageData, pager.InnerPageSize)
	if err != nil {
		return nil, err
	}
	_ = dataHeader

	_, tocInner, err := readInner(f, pageToC)
	if err != nil {
		return nil, err
	}
	codec := pager.Uint64Codec{}
	toc, err := pager.DecodeTableOfContentsPage(codec, tocInner)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for _, rec := range toc.Iter() {
		_, indexInner, err := readInner(f, rec.PageID)
		if err != nil {
			return nil, err
		}
		page, err := pager.DecodeIndexPage(codec, indexInner)
		if err != nil {
			return nil, err
		}
		for _, entry := range page.GetNode() {
			raw, err := dataPageResult.Inner.GetAt(entry.Link)
			if err != nil {
				return nil, err
			}
			decoded, err := rowcodec.UnmarshalRow(raw, len(info.RowSchema))
			if err != nil {
				return nil, err
			}
			row := Row{}
			if len(decoded) > 0 {
				row.ID = uint64(decoded[0].Int)
			}
			if len(decoded) > 1 {
				row.Payload = decoded[1].Str
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func readInner(s pager.Storage, id pager.PageID) (pager.GeneralHeader, []byte, error) {
	header, err := pager.ParseGeneralHeaderByIndex(s, id)
	if err != nil {
		return pager.GeneralHeader{}, nil, err
	}
	n := int(header.DataLength)
	if n == 0 {
		n = pager.InnerPageSize
	}
	buf := make([]byte, n)
	if _, err := s.ReadAt(buf, pager.SeekToPageStart(id)+pager.GeneralHeaderSize); err != nil {
		return pager.GeneralHeader{}, nil, fmt.Errorf("space: read page %d: %w", id, err)
	}
	return header, buf, nil
}

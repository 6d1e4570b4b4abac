package pager

import "log"

// EventKind names the five shapes of change event the upstream in-memory
// B-tree emits. The page layer only ever applies InsertAt/RemoveAt
// itself; the other three are node-level and routed to the table of
// contents by the dispatcher below.
type EventKind int

const (
	EventInsertAt EventKind = iota
	EventRemoveAt
	EventSplitNode
	EventCreateNode
	EventRemoveNode
)

// ChangeEvent is a tagged union over the five event shapes, translated
// from the upstream B-tree's enum into a single Go struct carrying only
// the fields relevant to its Kind — the idiomatic substitute for an enum
// with per-variant payloads.
type ChangeEvent[T any] struct {
	Kind EventKind

	// InsertAt / RemoveAt; Index is also the split position for SplitNode
	MaxValue IndexValue[T]
	Value    IndexValue[T]
	Index    int

	// SplitNode / CreateNode / RemoveNode. Dispatch does not read
	// SplitKey: a SplitNode splits at Index.
	NodeID    T
	SplitKey  T
	NewNodeID T
}

// IndexPageStore is the subset of operations the dispatcher needs from
// whatever keeps IndexPage[T] instances resident and persisted — kept as
// an interface so the dispatcher doesn't hardcode a particular page
// cache or file layout.
type IndexPageStore[T any] interface {
	// Load returns the IndexPage whose node_id is nodeID.
	Load(nodeID T) (*IndexPage[T], error)
	// Save persists an IndexPage back to its page.
	Save(page *IndexPage[T]) error
	// Allocate reserves a fresh PageID (reusing an empty one from the
	// ToC when available) for a newly created node.
	Allocate() (PageID, error)
	// New builds an empty IndexPage for a just-allocated node and
	// persists it at pageID, for EventCreateNode.
	New(pageID PageID, nodeID T) error
}

// Dispatch consumes a single ChangeEvent and routes it either straight
// to the owning IndexPage (InsertAt/RemoveAt) or to the table of
// contents (the three node-level variants).
func Dispatch[T any](toc *TableOfContentsPage[T], store IndexPageStore[T], event ChangeEvent[T]) error {
	switch event.Kind {
	case EventInsertAt, EventRemoveAt:
		page, err := store.Load(event.MaxValue.Key)
		if err != nil {
			return err
		}
		if event.Kind == EventRemoveAt {
			log.Printf("pager: applying RemoveAt to node %v: %+v", event.MaxValue.Key, event)
		}
		oldNodeID := page.NodeID
		if err := page.ApplyChangeEvent(event); err != nil {
			return err
		}
		if toc.codec.Compare(page.NodeID, oldNodeID) != 0 {
			toc.UpdateKey(oldNodeID, page.NodeID)
		}
		return store.Save(page)

	case EventSplitNode:
		page, err := store.Load(event.NodeID)
		if err != nil {
			return err
		}
		splitIndex := event.Index
		newPage := page.Split(splitIndex)
		newPage.NodeID = event.NewNodeID
		newPageID, err := store.Allocate()
		if err != nil {
			return err
		}
		toc.UpdateKey(event.NodeID, page.NodeID)
		toc.Insert(event.NewNodeID, newPageID)
		if err := store.Save(page); err != nil {
			return err
		}
		return store.Save(newPage)

	case EventCreateNode:
		newPageID, err := store.Allocate()
		if err != nil {
			return err
		}
		if err := store.New(newPageID, event.NodeID); err != nil {
			return err
		}
		toc.Insert(event.NodeID, newPageID)
		return nil

	case EventRemoveNode:
		if pageID, ok := toc.RemoveWithoutRecord(event.NodeID); ok {
			toc.PushEmptyPage(pageID)
		}
		return nil

	default:
		return newErr(ErrInvalidEvent, "dispatch: unknown change event kind", nil)
	}
}

// Package storage assembles the tables and derived indexes parse/
// produces into a single immutable DataStorage value, the terminal
// output of an hrdf.Load call.
package storage

// Table is a read-only, pre-built lookup over one entity kind, keyed
// by its primary key. It exists so every one of DataStorage's seventeen
// entity tables shares the same accessors instead of each
// hand-rolling Find/Entries.
type Table[T any] struct {
	byID map[int32]*T
}

// NewTable wraps an already-built id->entity map. The map is kept by
// reference, not copied: callers must not mutate it after handing it
// to NewTable.
func NewTable[T any](byID map[int32]*T) Table[T] {
	return Table[T]{byID: byID}
}

// Find looks up one entity by primary key.
func (t Table[T]) Find(id int32) (*T, bool) {
	v, ok := t.byID[id]
	return v, ok
}

// Entries returns every entity in the table, in no particular order.
func (t Table[T]) Entries() []*T {
	out := make([]*T, 0, len(t.byID))
	for _, v := range t.byID {
		out = append(out, v)
	}
	return out
}

// ResolveIDs looks up a batch of primary keys, silently dropping any
// that aren't present: a stale or partially-loaded cross-reference is
// not this accessor's concern to report.
func (t Table[T]) ResolveIDs(ids []int32) []*T {
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		if v, ok := t.byID[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Len reports the number of entities in the table.
func (t Table[T]) Len() int {
	return len(t.byID)
}

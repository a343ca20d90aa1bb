package mib

import (
	"math"

	"github.com/google/btree"
)

const btreeDegree = 16

// Tree is an append-then-freeze collection of records with an exact
// index by original key text and an ordered index for successor queries.
//
// Push records in any order, then call Freeze exactly once; Get, Next,
// and Ordered are valid only on a frozen tree. A Tree is built fresh for
// each request that needs one and discarded afterwards; it is not safe
// for concurrent use and not designed for mutation after Freeze.
type Tree struct {
	pushed []Record
	byText map[string]Record
	sorted *btree.BTreeG[treeItem]
}

// treeItem orders records by canonical key, with the insertion sequence
// breaking ties so textually distinct keys that order as equal (such as
// "01.3" and "1.3") stay separate items and keep push order.
type treeItem struct {
	rec Record
	seq int
}

func lessItem(a, b treeItem) bool {
	if c := a.rec.Compare(b.rec); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

// NewTree returns an empty, unfrozen tree.
func NewTree() *Tree {
	return &Tree{}
}

// Push appends a record. Duplicates are accepted; among records with
// identical key text the last one pushed wins in the exact index.
// Push panics on a frozen tree.
func (t *Tree) Push(r Record) {
	if t.sorted != nil {
		panic("mib: Push on frozen Tree")
	}
	t.pushed = append(t.pushed, r)
}

// Freeze sorts the pushed records and builds the indexes. It must be
// called exactly once, after the last Push and before the first query.
func (t *Tree) Freeze() {
	if t.sorted != nil {
		panic("mib: Tree frozen twice")
	}
	t.byText = make(map[string]Record, len(t.pushed))
	t.sorted = btree.NewG(btreeDegree, lessItem)
	for i, r := range t.pushed {
		t.byText[r.Oid().String()] = r
		t.sorted.ReplaceOrInsert(treeItem{rec: r, seq: i})
	}
}

// Get returns the record whose original key text matches oid exactly.
func (t *Tree) Get(oid Oid) (Record, bool) {
	t.mustBeFrozen()
	r, ok := t.byText[oid.String()]
	return r, ok
}

// Next returns the first record whose key is strictly greater than oid
// in canonical order, or ok=false if oid is at or past the end. The
// max-sequence pivot skips every record that orders equal to oid, so
// Next is a strict successor query.
func (t *Tree) Next(oid Oid) (Record, bool) {
	t.mustBeFrozen()
	pivot := treeItem{rec: Record{oid: oid}, seq: math.MaxInt}
	var (
		found Record
		ok    bool
	)
	t.sorted.AscendGreaterOrEqual(pivot, func(it treeItem) bool {
		found, ok = it.rec, true
		return false
	})
	return found, ok
}

// Ordered returns all records in ascending canonical key order. Records
// that order as equal keep their push order.
func (t *Tree) Ordered() []Record {
	t.mustBeFrozen()
	out := make([]Record, 0, t.sorted.Len())
	t.sorted.Ascend(func(it treeItem) bool {
		out = append(out, it.rec)
		return true
	})
	return out
}

// Len returns the number of records pushed.
func (t *Tree) Len() int {
	return len(t.pushed)
}

func (t *Tree) mustBeFrozen() {
	if t.sorted == nil {
		panic("mib: query on unfrozen Tree")
	}
}

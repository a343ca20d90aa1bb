package mib

import "testing"

func buildTree(t *testing.T, keys ...string) *Tree {
	t.Helper()
	tree := NewTree()
	for _, key := range keys {
		rec, err := NewRecordString(key, TypeString, "v:"+key)
		if err != nil {
			t.Fatalf("NewRecordString(%q): %v", key, err)
		}
		tree.Push(rec)
	}
	tree.Freeze()
	return tree
}

func TestTreeGet(t *testing.T) {
	tree := buildTree(t, "1.3.1", "1.3.2", "1.3.5")

	rec, ok := tree.Get(ParseOID("1.3.2"))
	if !ok {
		t.Fatal("Get(1.3.2) not found")
	}
	if rec.Oid().String() != "1.3.2" {
		t.Errorf("Get(1.3.2) returned %s", rec.Oid())
	}

	if _, ok := tree.Get(ParseOID("1.3.3")); ok {
		t.Error("Get(1.3.3) found a record, want absent")
	}
}

func TestTreeNext(t *testing.T) {
	tree := buildTree(t, "1.3.1", "1.3.2", "1.3.5")

	tests := []struct {
		name  string
		query string
		want  string
		ok    bool
	}{
		{"successor of present key", "1.3.2", "1.3.5", true},
		{"successor of absent key", "1.3.3", "1.3.5", true},
		{"before the first", "1.3", "1.3.1", true},
		{"empty key", "", "1.3.1", true},
		{"last key", "1.3.5", "", false},
		{"past the end", "9.9", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := tree.Next(ParseOID(tt.query))
			if ok != tt.ok {
				t.Fatalf("Next(%s) ok = %v, want %v", tt.query, ok, tt.ok)
			}
			if ok && rec.Oid().String() != tt.want {
				t.Errorf("Next(%s) = %s, want %s", tt.query, rec.Oid(), tt.want)
			}
		})
	}
}

func TestTreeOrderedIgnoresPushOrder(t *testing.T) {
	tree := buildTree(t, "1.3.20.1", "1.3.6.10", "1.3.6.1", "1.3.7.1", "1.3.6.2")

	want := []string{"1.3.6.1", "1.3.6.2", "1.3.6.10", "1.3.7.1", "1.3.20.1"}
	got := tree.Ordered()
	if len(got) != len(want) {
		t.Fatalf("Ordered() returned %d records, want %d", len(got), len(want))
	}
	for i, rec := range got {
		if rec.Oid().String() != want[i] {
			t.Errorf("Ordered()[%d] = %s, want %s", i, rec.Oid(), want[i])
		}
	}
}

func TestTreeLastPushWinsInIndex(t *testing.T) {
	tree := NewTree()
	first, _ := NewRecordString("1.3.1", TypeString, "first")
	second, _ := NewRecordString("1.3.1", TypeString, "second")
	tree.Push(first)
	tree.Push(second)
	tree.Freeze()

	rec, ok := tree.Get(ParseOID("1.3.1"))
	if !ok {
		t.Fatal("Get(1.3.1) not found")
	}
	if rec.Value() != "second" {
		t.Errorf("Get returned %v, want the last-pushed record", rec.Value())
	}

	// The sorted sequence keeps both, in push order.
	ordered := tree.Ordered()
	if len(ordered) != 2 {
		t.Fatalf("Ordered() returned %d records, want 2", len(ordered))
	}
	if ordered[0].Value() != "first" || ordered[1].Value() != "second" {
		t.Errorf("Ordered() = %v, %v, want push order", ordered[0].Value(), ordered[1].Value())
	}
}

// "01.3" and "1.3" order as equal but are distinct entries in the exact
// index.
func TestTreeTextuallyDistinctKeys(t *testing.T) {
	tree := buildTree(t, "01.3", "1.3")

	for _, key := range []string{"01.3", "1.3"} {
		rec, ok := tree.Get(ParseOID(key))
		if !ok {
			t.Fatalf("Get(%s) not found", key)
		}
		if rec.Value() != "v:"+key {
			t.Errorf("Get(%s) = %v, want v:%s", key, rec.Value(), key)
		}
	}

	if len(tree.Ordered()) != 2 {
		t.Errorf("Ordered() collapsed canonically equal keys, want both kept")
	}
}

func TestTreePanicsOnMisuse(t *testing.T) {
	assertPanics := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}

	assertPanics("query before freeze", func() {
		NewTree().Get(ParseOID("1"))
	})
	assertPanics("double freeze", func() {
		tree := NewTree()
		tree.Freeze()
		tree.Freeze()
	})
	assertPanics("push after freeze", func() {
		tree := NewTree()
		tree.Freeze()
		rec, _ := NewRecordString("1", TypeString, "x")
		tree.Push(rec)
	})
}

func TestTreeEmpty(t *testing.T) {
	tree := NewTree()
	tree.Freeze()

	if _, ok := tree.Get(ParseOID("1.3")); ok {
		t.Error("Get on empty tree found a record")
	}
	if _, ok := tree.Next(ParseOID("")); ok {
		t.Error("Next on empty tree found a record")
	}
	if got := tree.Ordered(); len(got) != 0 {
		t.Errorf("Ordered() on empty tree returned %d records", len(got))
	}
}

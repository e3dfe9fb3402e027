package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestFieldsInsertOrder(t *testing.T) {
	for _, inline := range []int{0, 2, 4, 8, 16} {
		t.Run(fmt.Sprintf("inline=%d", inline), func(t *testing.T) {
			f := NewFields(inline, 0)
			for i := 0; i < 20; i++ {
				f.Insert(fmt.Sprintf("k%d", i), fmt.Sprintf("v%d", i))
			}
			if f.Len() != 20 {
				t.Fatalf("Len() = %d, want 20", f.Len())
			}
			for i, p := range f.Pairs() {
				if p.Key != fmt.Sprintf("k%d", i) {
					t.Fatalf("pair %d key = %q", i, p.Key)
				}
			}
			if v, ok := f.Get("k17"); !ok || v != "v17" {
				t.Errorf("Get(k17) = %q, %v", v, ok)
			}
		})
	}
}

func TestFieldsOverwriteKeepsPosition(t *testing.T) {
	f := NewFields(2, 0)
	f.Insert("a", "1")
	f.Insert("b", "2")
	f.Insert("c", "3")
	f.Insert("a", "updated")

	if f.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", f.Len())
	}
	if got := f.Pairs()[0]; got != (Pair{Key: "a", Value: "updated"}) {
		t.Errorf("first pair = %+v", got)
	}
}

func TestFieldsCapacity(t *testing.T) {
	f := NewFields(2, 2)
	if err := f.TryInsert("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := f.TryInsert("b", "2"); err != nil {
		t.Fatal(err)
	}

	err := f.TryInsert("c", "3")
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("TryInsert() error = %v, want *CapacityError", err)
	}
	if capErr.Key != "c" || capErr.Value != "3" {
		t.Errorf("rejected pair = %q=%q", capErr.Key, capErr.Value)
	}
	if capErr.Error() != "reached capacity limit" {
		t.Errorf("Error() = %q", capErr.Error())
	}

	// Overwriting an existing key is allowed when full.
	if err := f.TryInsert("a", "x"); err != nil {
		t.Errorf("overwrite when full: %v", err)
	}

	f.Insert("d", "4")
	if _, ok := f.Get("d"); ok {
		t.Error("best-effort insert exceeded capacity")
	}
}

func TestFieldsRemove(t *testing.T) {
	tests := []struct {
		name   string
		inline int
	}{
		{"inline", 8},
		{"spilled", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFields(tt.inline, 0)
			for _, k := range []string{"a", "b", "c", "d"} {
				f.Insert(k, k)
			}
			if !f.Remove("b") {
				t.Fatal("Remove(b) = false")
			}
			if f.Remove("b") {
				t.Error("second Remove(b) = true")
			}

			var keys []string
			f.Range(func(k, _ string) bool {
				keys = append(keys, k)
				return true
			})
			if fmt.Sprint(keys) != "[a c d]" {
				t.Errorf("keys = %v", keys)
			}
			if v, ok := f.Get("d"); !ok || v != "d" {
				t.Errorf("Get(d) after remove = %q, %v", v, ok)
			}
		})
	}
}

func TestFieldsZeroValue(t *testing.T) {
	var f Fields
	f.Insert("a", "1")
	f.Insert("b", "2")
	if v, _ := f.Get("b"); v != "2" {
		t.Errorf("Get(b) = %q", v)
	}
	if f.Capacity() != 0 {
		t.Errorf("Capacity() = %d", f.Capacity())
	}
}

func TestFieldsCloneIsIndependent(t *testing.T) {
	f := NewFields(1, 0)
	f.Insert("a", "1")
	f.Insert("b", "2")

	c := f.Clone()
	f.Insert("a", "changed")
	f.Insert("c", "3")

	if v, _ := c.Get("a"); v != "1" {
		t.Errorf("clone saw overwrite: %q", v)
	}
	if c.Len() != 2 {
		t.Errorf("clone Len() = %d", c.Len())
	}
}

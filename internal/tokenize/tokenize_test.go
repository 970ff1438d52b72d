package tokenize

import (
	"reflect"
	"testing"
)

func TestListBasic(t *testing.T) {
	got := List("AB_CD 12e3 \xe9&q")
	want := []string{"ab", "cd", "12e3", "q"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List: got %v, want %v", got, want)
	}
}

func TestListEmpty(t *testing.T) {
	if got := List(""); got != nil {
		t.Errorf("List(\"\"): got %v, want nil", got)
	}
	if got := List("!!!   ---"); got != nil {
		t.Errorf("List(separators only): got %v, want nil", got)
	}
}

func TestCounts(t *testing.T) {
	counts, total := Counts("the cat sat on the mat the cat ran")
	if total != 9 {
		t.Errorf("token count: got %d, want 9", total)
	}
	want := map[string]uint32{
		"the": 3, "cat": 2, "sat": 1, "on": 1, "mat": 1, "ran": 1,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Counts: got %v, want %v", counts, want)
	}
}

func TestFoldLowerWideMatchesScalar(t *testing.T) {
	// Exercise a buffer long enough to cross the 32-byte lane boundary and
	// verify the wide path and scalar path agree byte-for-byte.
	src := []byte("AbCdEfGhIjKlMnOpQrStUvWxYz0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ!!")
	wide := append([]byte(nil), src...)
	scalar := append([]byte(nil), src...)
	foldLowerWide(wide)
	foldLowerScalar(scalar)
	if !reflect.DeepEqual(wide, scalar) {
		t.Errorf("foldLowerWide/foldLowerScalar mismatch:\nwide:   %q\nscalar: %q", wide, scalar)
	}
}

func TestListOrderPreservesRepeats(t *testing.T) {
	got := List("a a b a")
	want := []string{"a", "a", "b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List order: got %v, want %v", got, want)
	}
}

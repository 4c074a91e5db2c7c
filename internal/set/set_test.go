package set_test

import (
	"slices"
	"testing"

	"deedles.dev/chlorostart/internal/set"
)

func TestSet(t *testing.T) {
	s := make(set.Set[uint32])
	for _, v := range []uint32{5, 1, 3, 1} {
		s.Add(v)
	}
	if !s.Has(3) || s.Has(2) {
		t.Fatalf("wrong membership: %v", s)
	}

	s.Delete(3)
	s.Delete(4)
	if got := set.Sorted(s); !slices.Equal(got, []uint32{1, 5}) {
		t.Fatalf("Sorted() = %v", got)
	}
}

// Package tombstone tracks permanently deleted entity ids.
//
// The tombstone list is one flat namespace shared by every entity kind. A
// tombstoned id never comes back, whatever its timestamp on either replica:
// an edit that post-dates a deletion on another device still loses.
package tombstone

import "github.com/harentsoaR/dentist-sync/internal/models"

// Set is a lookup view over a tombstone list.
type Set map[string]struct{}

// NewSet builds a Set from one or more tombstone lists.
func NewSet(lists ...[]string) Set {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	s := make(Set, n)
	for _, l := range lists {
		for _, id := range l {
			s[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is tombstoned.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Record returns ids with id appended. Recording an id twice is a no-op.
func Record(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}

// Union returns every id of a followed by the ids of b not already present,
// without duplicates. The union of two empty lists is nil.
func Union(a, b []string) []string {
	if len(a)+len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Purge returns the items of collection whose id is not tombstoned. The input
// slice is never modified. A nil collection stays nil.
func Purge[T models.Entity](collection []T, ts Set) []T {
	if collection == nil {
		return nil
	}
	out := make([]T, 0, len(collection))
	for _, item := range collection {
		if ts.Has(item.EntityID()) {
			continue
		}
		out = append(out, item)
	}
	return out
}

package gindex

import "slices"

// PostingList is an ordered set of string identifiers. Keeping it sorted
// lets Intersect walk the lists in a single merge pass, linear in their
// combined length (O(|A|+|B|)), not O(min(|A|,|B|)).
type PostingList struct {
	ids []string
}

// NewPostingList returns an empty PostingList.
func NewPostingList() *PostingList {
	return &PostingList{}
}

// Insert adds id to the list, preserving sort order. A duplicate insert
// is a no-op.
func (p *PostingList) Insert(id string) {
	i, found := slices.BinarySearch(p.ids, id)
	if found {
		return
	}
	p.ids = slices.Insert(p.ids, i, id)
}

// Remove deletes id from the list, if present.
func (p *PostingList) Remove(id string) {
	i, found := slices.BinarySearch(p.ids, id)
	if !found {
		return
	}
	p.ids = slices.Delete(p.ids, i, i+1)
}

// Contains reports whether id is in the list.
func (p *PostingList) Contains(id string) bool {
	_, found := slices.BinarySearch(p.ids, id)
	return found
}

// Len returns the number of identifiers in the list.
func (p *PostingList) Len() int {
	return len(p.ids)
}

// IDs returns the list's identifiers in ascending order. The returned
// slice must not be mutated by the caller.
func (p *PostingList) IDs() []string {
	return p.ids
}

// Intersect returns the sorted identifiers common to both lists, walking
// both in a single merge pass.
func Intersect(lists ...*PostingList) []string {
	if len(lists) == 0 {
		return nil
	}
	result := lists[0].IDs()
	for _, l := range lists[1:] {
		result = intersectTwo(result, l.IDs())
		if len(result) == 0 {
			return nil
		}
	}
	out := make([]string, len(result))
	copy(out, result)
	return out
}

func intersectTwo(a, b []string) []string {
	out := make([]string, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

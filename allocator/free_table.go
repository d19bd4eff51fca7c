package allocator

import (
	"fmt"
	"sort"
)

// FreeTable is the set of free regions, ordered by ascending start address.
// First-fit searches therefore always pick the lowest suitable address.
type FreeTable struct {
	regions []Region
}

// Len ...
func (t *FreeTable) Len() int {
	return len(t.regions)
}

// Regions returns a copy of the free regions in address order.
func (t *FreeTable) Regions() []Region {
	result := make([]Region, len(t.regions))
	copy(result, t.regions)
	return result
}

// TotalSize ...
func (t *FreeTable) TotalSize() uint64 {
	var total uint64
	for _, r := range t.regions {
		total += uint64(r.Size)
	}
	return total
}

// Largest returns the size of the biggest free region, or 0 when none is left.
func (t *FreeTable) Largest() uint32 {
	var largest uint32
	for _, r := range t.regions {
		if r.Size > largest {
			largest = r.Size
		}
	}
	return largest
}

func (t *FreeTable) firstFit(size uint32) int {
	for i, r := range t.regions {
		if r.Size >= size {
			return i
		}
	}
	return -1
}

func (t *FreeTable) search(start uint32) int {
	return sort.Search(len(t.regions), func(i int) bool {
		return t.regions[i].Start >= start
	})
}

func (t *FreeTable) insert(r Region) {
	index := t.search(r.Start)
	if index > 0 && t.regions[index-1].overlaps(r) {
		panic(fmt.Sprintf("free region %v overlaps %v", r, t.regions[index-1]))
	}
	if index < len(t.regions) && t.regions[index].overlaps(r) {
		panic(fmt.Sprintf("free region %v overlaps %v", r, t.regions[index]))
	}

	t.regions = append(t.regions, Region{})
	copy(t.regions[index+1:], t.regions[index:])
	t.regions[index] = r
}

func (t *FreeTable) removeAt(index int) Region {
	r := t.regions[index]
	t.regions = append(t.regions[:index], t.regions[index+1:]...)
	return r
}

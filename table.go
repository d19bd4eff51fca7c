package buddymem

import (
	"sort"

	"github.com/QuangTung97/buddymem/allocator"
)

// ID identifies an allocated block. IDs are assigned from a counter starting
// at 0 and are never reused by the same Manager.
type ID uint64

type block struct {
	region allocator.Region
	used   uint32 // meaningful bytes, <= region.Size
}

type blockEntry struct {
	id    ID
	block *block
}

// blockTable maps ids to live allocated regions.
type blockTable struct {
	blocks map[ID]*block
	nextID ID
}

func newBlockTable() *blockTable {
	return &blockTable{
		blocks: map[ID]*block{},
		nextID: 0,
	}
}

func (t *blockTable) add(region allocator.Region, used uint32) ID {
	id := t.nextID
	t.blocks[id] = &block{region: region, used: used}
	t.nextID++
	return id
}

func (t *blockTable) get(id ID) (*block, bool) {
	b, ok := t.blocks[id]
	return b, ok
}

func (t *blockTable) remove(id ID) (*block, bool) {
	b, ok := t.blocks[id]
	if !ok {
		return nil, false
	}
	delete(t.blocks, id)
	return b, true
}

func (t *blockTable) len() int {
	return len(t.blocks)
}

func (t *blockTable) sortedByStart() []blockEntry {
	result := make([]blockEntry, 0, len(t.blocks))
	for id, b := range t.blocks {
		result = append(result, blockEntry{id: id, block: b})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].block.region.Start < result[j].block.region.Start
	})
	return result
}

func (t *blockTable) totals() (allocated uint64, used uint64) {
	for _, b := range t.blocks {
		allocated += uint64(b.region.Size)
		used += uint64(b.used)
	}
	return allocated, used
}

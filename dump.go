package buddymem

// SnippetLimit is the number of content bytes a dump descriptor carries.
const SnippetLimit = 32

// Kind ...
type Kind int

const (
	// KindAllocated ...
	KindAllocated Kind = iota
	// KindFree ...
	KindFree
)

func (k Kind) String() string {
	switch k {
	case KindAllocated:
		return "Allocated"
	case KindFree:
		return "Free"
	default:
		return "Unknown"
	}
}

// Descriptor describes one region of the arena. ID, Used and Snippet are only
// meaningful for allocated regions.
type Descriptor struct {
	Start     uint32
	End       uint32 // last byte of the region
	Kind      Kind
	Size      uint32
	ID        ID
	Used      uint32
	Snippet   []byte
	Truncated bool
}

// Dump lists every allocated and free region in ascending address order.
// Consecutive calls without mutation return equal results.
func (m *Manager) Dump() []Descriptor {
	entries := m.blocks.sortedByStart()
	free := m.buddy.FreeRegions()

	result := make([]Descriptor, 0, len(entries)+len(free))
	i, j := 0, 0
	for i < len(entries) || j < len(free) {
		if j >= len(free) || (i < len(entries) && entries[i].block.region.Start < free[j].Start) {
			e := entries[i]
			i++

			n := e.block.used
			truncated := false
			if n > SnippetLimit {
				n = SnippetLimit
				truncated = true
			}
			result = append(result, Descriptor{
				Start:     e.block.region.Start,
				End:       e.block.region.Last(),
				Kind:      KindAllocated,
				Size:      e.block.region.Size,
				ID:        e.id,
				Used:      e.block.used,
				Snippet:   m.arena.read(e.block.region.Start, n),
				Truncated: truncated,
			})
			continue
		}

		r := free[j]
		j++
		result = append(result, Descriptor{
			Start: r.Start,
			End:   r.Last(),
			Kind:  KindFree,
			Size:  r.Size,
		})
	}
	return result
}

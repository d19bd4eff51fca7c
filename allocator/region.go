package allocator

import (
	"fmt"
	"math"
	"math/bits"
)

// Region is a contiguous extent [Start, Start+Size) of the arena.
type Region struct {
	Start uint32
	Size  uint32
}

// End returns the offset one past the last byte of the region.
func (r Region) End() uint32 {
	return r.Start + r.Size
}

// Last returns the offset of the last byte of the region.
func (r Region) Last() uint32 {
	return r.Start + r.Size - 1
}

func (r Region) String() string {
	return fmt.Sprintf("[0x%04X, 0x%04X)", r.Start, r.End())
}

func (r Region) overlaps(other Region) bool {
	return r.Start < other.End() && other.Start < r.End()
}

// computeParentAndBuddy returns the region this one was split from and its sibling.
func computeParentAndBuddy(r Region) (Region, Region) {
	mask := uint32(math.MaxUint32) << (bits.TrailingZeros32(r.Size) + 1)
	parent := Region{Start: r.Start & mask, Size: r.Size << 1}
	return parent, Region{Start: r.Start ^ r.Size, Size: r.Size}
}

// IsBuddyOf reports whether two equal-size regions are the halves of one parent.
func (r Region) IsBuddyOf(other Region) bool {
	if r.Size != other.Size || r.Size == 0 {
		return false
	}
	_, buddy := computeParentAndBuddy(r)
	return buddy.Start == other.Start
}

// RoundUpPow2 returns the smallest power of two >= n, with RoundUpPow2(0) == 1.
// n must not exceed 1 << 31.
func RoundUpPow2(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len32(n-1)
}

func isPow2(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

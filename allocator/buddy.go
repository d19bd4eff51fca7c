package allocator

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

// MaxCapacity is the largest arena a Buddy can manage.
const MaxCapacity = 1 << 31

// Buddy ...
type Buddy struct {
	capacity uint32
	free     FreeTable
	logger   *slog.Logger
}

func findSizeLogList(capacity uint32) []uint32 {
	var result []uint32
	for pos := uint32(0); capacity != 0; pos++ {
		if capacity&0x1 != 0 {
			result = append(result, pos)
		}
		capacity >>= 1
	}
	return result
}

// NewBuddy creates an allocator whose free table covers [0, capacity).
// A capacity that is not a power of two is split into aligned power-of-two
// regions, largest first.
func NewBuddy(capacity uint32, logger *slog.Logger) *Buddy {
	if capacity == 0 || capacity > MaxCapacity {
		panic(fmt.Sprintf("capacity must be in (0, %d], got %d", uint32(MaxCapacity), capacity))
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b := &Buddy{
		capacity: capacity,
		logger:   logger,
	}

	sizeLogList := findSizeLogList(capacity)
	addr := uint32(0)
	for i := len(sizeLogList) - 1; i >= 0; i-- {
		size := uint32(1) << sizeLogList[i]
		b.free.insert(Region{Start: addr, Size: size})
		addr += size
	}
	return b
}

// Capacity ...
func (b *Buddy) Capacity() uint32 {
	return b.capacity
}

// FreeRegions returns the free regions in ascending address order.
func (b *Buddy) FreeRegions() []Region {
	return b.free.Regions()
}

// FreeBytes ...
func (b *Buddy) FreeBytes() uint64 {
	return b.free.TotalSize()
}

// LargestFree ...
func (b *Buddy) LargestFree() uint32 {
	return b.free.Largest()
}

// Reserve takes a region of RoundUpPow2(requested) bytes out of the free table,
// halving the first region large enough until it has exactly that size.
// On failure the free table is unchanged.
func (b *Buddy) Reserve(requested uint32) (Region, error) {
	if requested == 0 {
		return Region{}, errors.Wrap(ErrInvalidSize, "requested 0 bytes")
	}
	if requested > b.capacity {
		return Region{}, errors.Wrapf(ErrTooLarge, "requested %d bytes, capacity is %d", requested, b.capacity)
	}

	size := RoundUpPow2(requested)
	index := b.free.firstFit(size)
	if index < 0 {
		return Region{}, errors.Wrapf(ErrNoSpace, "no free region of %d bytes", size)
	}

	region := b.free.removeAt(index)
	for region.Size > size {
		half := region.Size >> 1
		upper := Region{Start: region.Start + half, Size: half}
		b.free.insert(upper)
		region.Size = half

		b.logger.Debug("split region",
			slog.Any("lower", region),
			slog.Any("upper", upper),
		)
	}
	return region, nil
}

// Release returns a region to the free table and coalesces buddies.
// Releasing a region that overlaps a free one panics.
func (b *Buddy) Release(r Region) {
	if !isPow2(r.Size) || r.Start%r.Size != 0 || uint64(r.Start)+uint64(r.Size) > uint64(b.capacity) {
		panic(fmt.Sprintf("release of invalid region %v", r))
	}
	b.free.insert(r)
	b.Coalesce()
}

// Coalesce merges buddy pairs until a full pass finds nothing to merge.
// Buddies are adjacent, so with the table in address order they are always
// neighbours in the slice.
func (b *Buddy) Coalesce() {
	for {
		merged := 0
		regions := b.free.regions
		out := regions[:0]
		for i := 0; i < len(regions); i++ {
			r := regions[i]
			if i+1 < len(regions) && r.IsBuddyOf(regions[i+1]) {
				parent, _ := computeParentAndBuddy(r)
				b.logger.Debug("merge buddies",
					slog.Any("lower", r),
					slog.Any("upper", regions[i+1]),
					slog.Any("parent", parent),
				)
				out = append(out, parent)
				merged++
				i++
				continue
			}
			out = append(out, r)
		}
		b.free.regions = out

		if merged == 0 {
			return
		}
	}
}

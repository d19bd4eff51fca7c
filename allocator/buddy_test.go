package allocator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkInvariants(t *testing.T, b *Buddy, allocated []Region) {
	t.Helper()

	regions := b.FreeRegions()
	total := uint64(0)
	for i, r := range regions {
		assert.True(t, isPow2(r.Size), "size of %v", r)
		assert.Equal(t, uint32(0), r.Start%r.Size, "alignment of %v", r)
		assert.LessOrEqual(t, uint64(r.End()), uint64(b.Capacity()))
		if i > 0 {
			assert.LessOrEqual(t, regions[i-1].End(), r.Start, "order of %v", r)
		}
		total += uint64(r.Size)
	}

	for i := range regions {
		for j := range regions {
			if i != j {
				assert.False(t, regions[i].IsBuddyOf(regions[j]), "%v and %v left unmerged", regions[i], regions[j])
			}
		}
	}

	for i, a := range allocated {
		total += uint64(a.Size)
		for _, r := range regions {
			assert.False(t, a.overlaps(r), "allocated %v overlaps free %v", a, r)
		}
		for _, other := range allocated[i+1:] {
			assert.False(t, a.overlaps(other), "allocated %v overlaps %v", a, other)
		}
	}
	assert.Equal(t, uint64(b.Capacity()), total)
}

func TestFindSizeLogList(t *testing.T) {
	assert.Equal(t, []uint32{16}, findSizeLogList(1<<16))
	assert.Equal(t, []uint32{0, 2, 4}, findSizeLogList(21))
	assert.Equal(t, []uint32(nil), findSizeLogList(0))
}

func TestNewBuddy(t *testing.T) {
	table := []struct {
		name     string
		capacity uint32
		expected []Region
	}{
		{
			name:     "power-of-two",
			capacity: 65536,
			expected: []Region{{Start: 0, Size: 65536}},
		},
		{
			name:     "one-byte",
			capacity: 1,
			expected: []Region{{Start: 0, Size: 1}},
		},
		{
			name:     "not-power-of-two",
			capacity: 13,
			expected: []Region{
				{Start: 0, Size: 8},
				{Start: 8, Size: 4},
				{Start: 12, Size: 1},
			},
		},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			b := NewBuddy(e.capacity, nil)
			assert.Equal(t, e.capacity, b.Capacity())
			assert.Equal(t, e.expected, b.FreeRegions())
			checkInvariants(t, b, nil)
		})
	}
}

func TestNewBuddy_InvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { NewBuddy(0, nil) })
	assert.Panics(t, func() { NewBuddy(MaxCapacity+1, nil) })
}

func TestBuddyReserve_FromInit(t *testing.T) {
	table := []struct {
		name         string
		requested    uint32
		expected     Region
		expectedFree []Region
	}{
		{
			name:         "whole",
			requested:    65536,
			expected:     Region{Start: 0, Size: 65536},
			expectedFree: []Region{},
		},
		{
			name:      "rounded",
			requested: 10000,
			expected:  Region{Start: 0, Size: 16384},
			expectedFree: []Region{
				{Start: 16384, Size: 16384},
				{Start: 32768, Size: 32768},
			},
		},
		{
			name:      "one-byte",
			requested: 1,
			expected:  Region{Start: 0, Size: 1},
		},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			b := NewBuddy(65536, nil)
			r, err := b.Reserve(e.requested)
			require.NoError(t, err)

			assert.Equal(t, e.expected, r)
			if e.expectedFree != nil {
				assert.Equal(t, e.expectedFree, b.FreeRegions())
			}
			assert.Equal(t, uint64(65536-uint64(r.Size)), b.FreeBytes())
			checkInvariants(t, b, []Region{r})
		})
	}
}

func TestBuddyReserve_Splits(t *testing.T) {
	b := NewBuddy(65536, nil)

	r, err := b.Reserve(1024)
	require.NoError(t, err)
	assert.Equal(t, Region{Start: 0, Size: 1024}, r)

	expected := []Region{
		{Start: 1024, Size: 1024},
		{Start: 2048, Size: 2048},
		{Start: 4096, Size: 4096},
		{Start: 8192, Size: 8192},
		{Start: 16384, Size: 16384},
		{Start: 32768, Size: 32768},
	}
	assert.Equal(t, expected, b.FreeRegions())
	assert.Equal(t, uint64(64512), b.FreeBytes())

	for _, free := range expected[:1] {
		_, buddy := computeParentAndBuddy(free)
		assert.Equal(t, r, buddy)
	}
}

func TestBuddyReserve_Errors(t *testing.T) {
	b := NewBuddy(65536, nil)

	_, err := b.Reserve(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = b.Reserve(65537)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = b.Reserve(32768)
	require.NoError(t, err)
	_, err = b.Reserve(16384)
	require.NoError(t, err)

	before := b.FreeRegions()
	_, err = b.Reserve(32768)
	assert.ErrorIs(t, err, ErrNoSpace)
	assert.Equal(t, before, b.FreeRegions())
}

func TestBuddyReserve_NotPowerOfTwoCapacity(t *testing.T) {
	b := NewBuddy(65535, nil)

	_, err := b.Reserve(40000)
	assert.ErrorIs(t, err, ErrNoSpace)

	r, err := b.Reserve(32768)
	require.NoError(t, err)
	assert.Equal(t, Region{Start: 0, Size: 32768}, r)

	_, err = b.Reserve(32768)
	assert.ErrorIs(t, err, ErrNoSpace)

	last, err := b.Reserve(16384)
	require.NoError(t, err)
	assert.Equal(t, Region{Start: 32768, Size: 16384}, last)
	checkInvariants(t, b, []Region{r, last})

	b.Release(r)
	b.Release(last)
	assert.Equal(t, NewBuddy(65535, nil).FreeRegions(), b.FreeRegions())
}

func TestBuddyReserve_FirstFitLowestAddress(t *testing.T) {
	b := NewBuddy(65536, nil)

	a, _ := b.Reserve(500)
	c, _ := b.Reserve(1000)
	assert.Equal(t, Region{Start: 0, Size: 512}, a)
	assert.Equal(t, Region{Start: 1024, Size: 1024}, c)

	b.Release(a)
	d, err := b.Reserve(300)
	require.NoError(t, err)
	assert.Equal(t, a, d)
}

func TestBuddyRelease_Coalesce(t *testing.T) {
	b := NewBuddy(65536, nil)

	r1, _ := b.Reserve(8)
	r2, _ := b.Reserve(8)
	assert.True(t, r1.IsBuddyOf(r2))

	b.Release(r1)
	assert.Equal(t, Region{Start: 0, Size: 8}, b.FreeRegions()[0])
	checkInvariants(t, b, []Region{r2})

	b.Release(r2)
	assert.Equal(t, []Region{{Start: 0, Size: 65536}}, b.FreeRegions())
}

func TestBuddyRelease_Cascade(t *testing.T) {
	b := NewBuddy(1<<10, nil)

	p1, _ := b.Reserve(512)
	p2, _ := b.Reserve(256)
	p3, _ := b.Reserve(128)
	p4, _ := b.Reserve(128)
	assert.Equal(t, 0, len(b.FreeRegions()))

	b.Release(p4)
	b.Release(p2)
	assert.Equal(t, []Region{
		{Start: 512, Size: 256},
		{Start: 896, Size: 128},
	}, b.FreeRegions())

	b.Release(p3)
	assert.Equal(t, []Region{{Start: 512, Size: 512}}, b.FreeRegions())

	b.Release(p1)
	assert.Equal(t, []Region{{Start: 0, Size: 1024}}, b.FreeRegions())
}

func TestBuddyRelease_NonBuddyNeighboursStaySplit(t *testing.T) {
	b := NewBuddy(1<<10, nil)

	p1, _ := b.Reserve(256)
	p2, _ := b.Reserve(256)
	p3, _ := b.Reserve(256)
	_, _ = b.Reserve(256)

	b.Release(p2)
	b.Release(p3)
	assert.Equal(t, []Region{
		{Start: 256, Size: 256},
		{Start: 512, Size: 256},
	}, b.FreeRegions())

	checkInvariants(t, b, []Region{p1, {Start: 768, Size: 256}})
}

func TestBuddyRelease_Invalid(t *testing.T) {
	b := NewBuddy(1<<10, nil)
	r, _ := b.Reserve(64)
	b.Release(r)

	assert.Panics(t, func() { b.Release(Region{Start: 0, Size: 64}) })
	assert.Panics(t, func() { b.Release(Region{Start: 3, Size: 4}) })
	assert.Panics(t, func() { b.Release(Region{Start: 1024, Size: 1024}) })
}

func TestBuddyCoalesce_FixedPoint(t *testing.T) {
	b := NewBuddy(64, nil)
	b.free.regions = []Region{
		{Start: 0, Size: 8},
		{Start: 8, Size: 8},
		{Start: 16, Size: 16},
		{Start: 32, Size: 4},
		{Start: 36, Size: 4},
		{Start: 40, Size: 8},
		{Start: 48, Size: 16},
	}

	b.Coalesce()
	assert.Equal(t, []Region{{Start: 0, Size: 64}}, b.FreeRegions())

	b.Coalesce()
	assert.Equal(t, []Region{{Start: 0, Size: 64}}, b.FreeRegions())
}

func TestBuddy_RandomOperations(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	b := NewBuddy(1<<14, nil)

	var allocated []Region
	for i := 0; i < 2000; i++ {
		if len(allocated) > 0 && rnd.Intn(3) == 0 {
			index := rnd.Intn(len(allocated))
			b.Release(allocated[index])
			allocated = append(allocated[:index], allocated[index+1:]...)
		} else {
			requested := uint32(rnd.Intn(1<<11) + 1)
			r, err := b.Reserve(requested)
			if err != nil {
				assert.ErrorIs(t, err, ErrNoSpace)
				continue
			}
			assert.Equal(t, RoundUpPow2(requested), r.Size)
			allocated = append(allocated, r)
		}

		if i%50 == 0 {
			checkInvariants(t, b, allocated)
		}
	}

	for _, r := range allocated {
		b.Release(r)
	}
	assert.Equal(t, []Region{{Start: 0, Size: 1 << 14}}, b.FreeRegions())
}

func BenchmarkBuddy_ReserveRelease(b *testing.B) {
	buddy := NewBuddy(1<<20, nil)
	for n := 0; n < b.N; n++ {
		r, _ := buddy.Reserve(16)
		buddy.Release(r)
	}
}

package buddymem

import (
	"io"
	"log/slog"

	"github.com/QuangTung97/buddymem/allocator"
	"github.com/pkg/errors"
)

// DefaultCapacity is the arena size used when Config.Capacity is zero.
const DefaultCapacity = 65536

// Config ...
type Config struct {
	// Capacity is the arena size in bytes. Zero means DefaultCapacity.
	Capacity int

	// Mapped backs the arena with an anonymous memory mapping instead of the Go heap.
	Mapped bool

	// Logger receives debug events for splits, merges and block lifecycle. Nil discards them.
	Logger *slog.Logger
}

func validateConfig(conf Config) error {
	if conf.Capacity < 0 || int64(conf.Capacity) > allocator.MaxCapacity {
		return errors.Wrapf(ErrInvalidConfig, "capacity must be in (0, %d], got %d", int64(allocator.MaxCapacity), conf.Capacity)
	}
	return nil
}

// Manager owns an arena, its free-region table and its allocation table.
// A Manager is not safe for concurrent use.
type Manager struct {
	arena  *arena
	buddy  *allocator.Buddy
	blocks *blockTable
	logger *slog.Logger
}

// New ...
func New(conf Config) (*Manager, error) {
	if err := validateConfig(conf); err != nil {
		return nil, err
	}
	if conf.Capacity == 0 {
		conf.Capacity = DefaultCapacity
	}
	logger := conf.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a, err := newArena(conf.Capacity, conf.Mapped)
	if err != nil {
		return nil, err
	}

	return &Manager{
		arena:  a,
		buddy:  allocator.NewBuddy(uint32(conf.Capacity), logger),
		blocks: newBlockTable(),
		logger: logger,
	}, nil
}

// Close releases the arena. The Manager must not be used afterwards.
func (m *Manager) Close() error {
	return m.arena.close()
}

// Capacity ...
func (m *Manager) Capacity() int {
	return int(m.buddy.Capacity())
}

func (m *Manager) reserve(size int) (allocator.Region, error) {
	if size <= 0 {
		return allocator.Region{}, errors.Wrapf(ErrInvalidSize, "requested %d bytes", size)
	}
	if size > m.Capacity() {
		return allocator.Region{}, errors.Wrapf(ErrTooLarge, "requested %d bytes, capacity is %d", size, m.Capacity())
	}
	return m.buddy.Reserve(uint32(size))
}

// Allocate reserves RoundUpPow2(size) bytes and returns a fresh id.
// The block's used length starts at size; its content is zero.
func (m *Manager) Allocate(size int) (ID, error) {
	region, err := m.reserve(size)
	if err != nil {
		return 0, err
	}

	id := m.blocks.add(region, uint32(size))
	m.logger.Debug("allocate block",
		slog.Uint64("id", uint64(id)),
		slog.Int("requested", size),
		slog.Any("region", region),
	)
	return id, nil
}

// Insert allocates size bytes and writes data into the new block.
// Data that cannot fit the rounded capacity is rejected before any id is consumed.
func (m *Manager) Insert(size int, data []byte) (ID, error) {
	if size > 0 && size <= m.Capacity() {
		admitted := allocator.RoundUpPow2(uint32(size))
		if uint64(len(data)) > uint64(admitted) {
			return 0, errors.Wrapf(ErrDataTooLarge, "%d bytes into a block of %d", len(data), admitted)
		}
	}

	id, err := m.Allocate(size)
	if err != nil {
		return 0, err
	}
	if err := m.Write(id, data); err != nil {
		return 0, err
	}
	return id, nil
}

// Write copies data to the start of the block and sets its used length to len(data).
// Bytes left over from a longer previous write are zeroed.
func (m *Manager) Write(id ID, data []byte) error {
	b, ok := m.blocks.get(id)
	if !ok {
		return errors.Wrapf(ErrBlockNotFound, "write id %d", id)
	}
	if uint64(len(data)) > uint64(b.region.Size) {
		return errors.Wrapf(ErrDataTooLarge, "%d bytes into block %d of %d", len(data), id, b.region.Size)
	}

	n := uint32(len(data))
	m.arena.write(b.region.Start, data)
	m.arena.clear(b.region.Start+n, b.region.Start+b.used)
	b.used = n
	return nil
}

// ReadView is a snapshot of one allocated block.
type ReadView struct {
	ID       ID
	Start    uint32
	End      uint32 // last byte of the used part; equals Start when nothing is used
	Capacity uint32
	Used     uint32
	Content  []byte
}

// Read returns the used bytes of a block and its location.
func (m *Manager) Read(id ID) (ReadView, error) {
	b, ok := m.blocks.get(id)
	if !ok {
		return ReadView{}, errors.Wrapf(ErrBlockNotFound, "read id %d", id)
	}

	end := b.region.Start
	if b.used > 0 {
		end = b.region.Start + b.used - 1
	}
	return ReadView{
		ID:       id,
		Start:    b.region.Start,
		End:      end,
		Capacity: b.region.Size,
		Used:     b.used,
		Content:  m.arena.read(b.region.Start, b.used),
	}, nil
}

// Update replaces the content of a block. Data that fits the block's capacity
// is written in place and the id is kept. Larger data moves to a newly
// allocated block, the old id is deleted, and the new id is returned.
// If the new block cannot be allocated, the old one is left untouched.
func (m *Manager) Update(id ID, data []byte) (ID, error) {
	b, ok := m.blocks.get(id)
	if !ok {
		return id, errors.Wrapf(ErrBlockNotFound, "update id %d", id)
	}
	if uint64(len(data)) <= uint64(b.region.Size) {
		return id, m.Write(id, data)
	}

	newID, err := m.Insert(len(data), data)
	if err != nil {
		return id, errors.Wrapf(err, "reallocate id %d", id)
	}
	if err := m.Delete(id); err != nil {
		return newID, err
	}

	m.logger.Warn("block reallocated",
		slog.Uint64("old_id", uint64(id)),
		slog.Uint64("new_id", uint64(newID)),
		slog.Int("size", len(data)),
	)
	return newID, nil
}

// Delete frees a block. Its id is never handed out again.
func (m *Manager) Delete(id ID) error {
	b, ok := m.blocks.remove(id)
	if !ok {
		return errors.Wrapf(ErrBlockNotFound, "delete id %d", id)
	}

	m.arena.clear(b.region.Start, b.region.Start+b.used)
	m.buddy.Release(b.region)

	m.logger.Debug("delete block",
		slog.Uint64("id", uint64(id)),
		slog.Any("region", b.region),
	)
	return nil
}

// Stats summarises arena usage.
type Stats struct {
	Capacity       uint64
	AllocatedBytes uint64
	UsedBytes      uint64
	FreeBytes      uint64
	LargestFree    uint32
	Blocks         int
	FreeRegions    int
	Utilization    Rational // AllocatedBytes / Capacity
	Fragmentation  Rational // share of free bytes outside the largest free region
}

// Stats ...
func (m *Manager) Stats() Stats {
	allocated, used := m.blocks.totals()
	free := m.buddy.FreeBytes()
	largest := m.buddy.LargestFree()
	capacity := uint64(m.buddy.Capacity())

	fragmentation := NewRational(0, 1)
	if free > 0 {
		fragmentation = NewRational(free-uint64(largest), free)
	}

	return Stats{
		Capacity:       capacity,
		AllocatedBytes: allocated,
		UsedBytes:      used,
		FreeBytes:      free,
		LargestFree:    largest,
		Blocks:         m.blocks.len(),
		FreeRegions:    len(m.buddy.FreeRegions()),
		Utilization:    NewRational(allocated, capacity),
		Fragmentation:  fragmentation,
	}
}

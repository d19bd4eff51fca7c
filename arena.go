package buddymem

// arena is the fixed-size, zero-initialized byte buffer holding all block content.
type arena struct {
	data   []byte
	mapped bool
}

func newArena(capacity int, mapped bool) (*arena, error) {
	if !mapped {
		return &arena{data: make([]byte, capacity)}, nil
	}

	data, err := mapAnonymous(capacity)
	if err != nil {
		return nil, err
	}
	return &arena{data: data, mapped: true}, nil
}

func (a *arena) write(start uint32, p []byte) {
	copy(a.data[start:], p)
}

func (a *arena) read(start uint32, n uint32) []byte {
	result := make([]byte, n)
	copy(result, a.data[start:start+n])
	return result
}

func (a *arena) clear(start uint32, end uint32) {
	if start >= end {
		return
	}
	b := a.data[start:end]
	for i := range b {
		b[i] = 0
	}
}

func (a *arena) close() error {
	if a.data == nil {
		return nil
	}
	data := a.data
	a.data = nil
	if a.mapped {
		return unmap(data)
	}
	return nil
}

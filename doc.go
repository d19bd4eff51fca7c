// Package buddymem simulates a user-space memory allocator over one fixed-size
// byte arena.
//
// Space is handed out in power-of-two blocks by a buddy allocator (package
// allocator): a request is rounded up, the lowest-addressed free region that
// is large enough is halved until it fits, and on release buddy halves are
// merged back until no free pair remains mergeable.
//
// A Manager owns the arena, the free-region table and the allocation table.
// Blocks are addressed by an ID from a counter that never goes backwards, so a
// deleted ID stays invalid forever:
//
//	m, err := buddymem.New(buddymem.Config{Capacity: buddymem.DefaultCapacity})
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	id, err := m.Insert(5, []byte("hello"))
//	view, err := m.Read(id)
//	id, err = m.Update(id, bytes.Repeat([]byte("x"), 100)) // may return a new id
//	err = m.Delete(id)
//
// A Manager is not safe for concurrent use; callers needing that should guard
// it with one mutex.
package buddymem

package allocator

import "github.com/pkg/errors"

var (
	// ErrInvalidSize indicates a request for zero (or fewer) bytes.
	ErrInvalidSize = errors.New("alloc: invalid size")

	// ErrNoSpace indicates that no free region is large enough for the request.
	ErrNoSpace = errors.New("alloc: no free region large enough")

	// ErrTooLarge indicates a request larger than the whole arena.
	ErrTooLarge = errors.New("alloc: request exceeds capacity")
)

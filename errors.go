package buddymem

import (
	"github.com/QuangTung97/buddymem/allocator"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidSize indicates a zero or negative size request.
	ErrInvalidSize = allocator.ErrInvalidSize

	// ErrNoSpace indicates that no free region can hold the request.
	ErrNoSpace = allocator.ErrNoSpace

	// ErrTooLarge indicates a request larger than the arena itself.
	ErrTooLarge = allocator.ErrTooLarge

	// ErrBlockNotFound indicates an unknown or already deleted block id.
	ErrBlockNotFound = errors.New("buddymem: block not found")

	// ErrDataTooLarge indicates data longer than the block's capacity.
	ErrDataTooLarge = errors.New("buddymem: data exceeds block capacity")

	// ErrInvalidConfig ...
	ErrInvalidConfig = errors.New("buddymem: invalid config")
)

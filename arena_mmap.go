//go:build linux || darwin || freebsd || netbsd || openbsd

package buddymem

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mapAnonymous returns a private anonymous mapping, zero-filled by the kernel.
func mapAnonymous(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", size)
	}
	return data, nil
}

func unmap(data []byte) error {
	return errors.Wrap(unix.Munmap(data), "munmap")
}

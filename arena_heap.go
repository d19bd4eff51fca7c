//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package buddymem

func mapAnonymous(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func unmap(data []byte) error {
	return nil
}

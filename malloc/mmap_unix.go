// +build darwin dragonfly freebsd linux openbsd solaris netbsd

package malloc

import "golang.org/x/sys/unix"

func mmapPool(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
}

func munmapPool(region []byte) error {
	return unix.Munmap(region)
}

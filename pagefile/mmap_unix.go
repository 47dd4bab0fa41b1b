package pagefile

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps the first size bytes of fd into memory. Adapted from
// kvdb/utils/mmap's raw syscall wrappers.
func mmapFile(fd *os.File, writable bool, size int64) ([]byte, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	return unix.Mmap(int(fd.Fd()), 0, int(size), prot, unix.MAP_SHARED)
}

// remapFile drops the old mapping and re-maps fd at the new size. Unlike
// kvdb/utils/mmap's mremap (which relies on reflect.SliceHeader to relocate
// the existing slice in place), this unmaps and re-maps: simpler, and
// equally correct, since the file's contents — not the mapping's
// address — are what must survive a resize.
func remapFile(old []byte, fd *os.File, size int64) ([]byte, error) {
	if len(old) > 0 {
		if err := unix.Munmap(old); err != nil {
			return nil, err
		}
	}
	return mmapFile(fd, true, size)
}

func msyncFile(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Msync(data, unix.MS_SYNC)
}

func munmapFile(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Munmap(data)
}

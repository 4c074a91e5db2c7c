// Package shm provides helpers for dealing with shared memory.
package shm

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// createFile returns an anonymous file suitable for sharing with the
// compositor. It has no name in the filesystem, so it disappears once
// the last descriptor referring to it is closed.
func createFile() (*os.File, error) {
	fd, err := unix.MemfdCreate("chlorostart-shm", unix.MFD_CLOEXEC)
	if err == nil {
		return os.NewFile(uintptr(fd), "chlorostart-shm"), nil
	}

	path := "/dev/shm/chlorostart-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	err = os.Remove(path)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("unlink %q: %w", path, err)
	}
	return file, nil
}

type Mmap []byte

func Map(file *os.File, size int, prot, flags int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	cerr := sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, flags)
		mmap, err = Mmap(m), merr
	})
	if cerr != nil {
		return nil, cerr
	}

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	return unix.Munmap(mmap)
}

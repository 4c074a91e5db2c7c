package shm

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"deedles.dev/chlorostart/shm/shmimage"
	"golang.org/x/sys/unix"
)

var (
	// ErrCapacity is returned when a region is asked to grow beyond
	// the size of its mapping.
	ErrCapacity = errors.New("size exceeds mapped capacity")

	// ErrClosed is returned by operations on a closed region.
	ErrClosed = errors.New("region is closed")
)

// SizeError is returned for region sizes that are not a positive
// multiple of the pixel size.
type SizeError struct {
	Size int
}

func (err SizeError) Error() string {
	return fmt.Sprintf("invalid region size %v: must be a positive multiple of 4", err.Size)
}

// Region is a file-backed memory mapping addressed as a sequence of
// 32-bit pixels. Every pixel operation is bounds checked against the
// region's logical size and reports whether it took effect instead of
// faulting. A Region is safe for concurrent use.
type Region struct {
	mu       sync.Mutex
	file     *os.File
	mmap     Mmap
	pix      []uint32
	size     int
	fileSize int
	writable bool
}

// NewRegion creates a writable region of size bytes backed by an
// anonymous shared memory file.
func NewRegion(size int) (r *Region, err error) {
	if (size <= 0) || (size%4 != 0) {
		return nil, SizeError{Size: size}
	}

	file, err := createFile()
	if err != nil {
		return nil, fmt.Errorf("create shm file: %w", err)
	}
	defer func() {
		if err != nil {
			file.Close()
		}
	}()

	err = file.Truncate(int64(size))
	if err != nil {
		return nil, fmt.Errorf("truncate shm file: %w", err)
	}

	mmap, err := Map(file, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	return newRegion(file, mmap, size, true), nil
}

// RegionFromFD maps size bytes of fd read-only and privately. The
// region takes ownership of fd. Writes to the returned region are
// ignored.
func RegionFromFD(fd int, size int) (*Region, error) {
	if size <= 0 {
		unix.Close(fd)
		return nil, SizeError{Size: size}
	}

	file := os.NewFile(uintptr(fd), "shm-fd")
	mmap, err := Map(file, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap fd %v: %w", fd, err)
	}

	return newRegion(file, mmap, size, false), nil
}

func newRegion(file *os.File, mmap Mmap, size int, writable bool) *Region {
	r := Region{
		file:     file,
		mmap:     mmap,
		size:     size,
		fileSize: size,
		writable: writable,
	}
	if len(mmap) >= 4 {
		r.pix = unsafe.Slice((*uint32)(unsafe.Pointer(&mmap[0])), len(mmap)/4)
	}
	return &r
}

// FD returns the descriptor of the backing file. It remains owned by
// the region.
func (r *Region) FD() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return -1
	}
	return int(r.file.Fd())
}

// Size is the logical size of the region in bytes.
func (r *Region) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.size
}

// Cap is the size of the mapping in bytes. The region can never be
// resized beyond it.
func (r *Region) Cap() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.mmap)
}

// Resize changes the logical size of the region. Growing extends the
// backing file before the new range becomes addressable. Shrinking
// only lowers the bound so that mappings of the file held by other
// processes remain valid.
func (r *Region) Resize(size int) error {
	if (size <= 0) || (size%4 != 0) {
		return SizeError{Size: size}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mmap == nil {
		return ErrClosed
	}
	if size > len(r.mmap) {
		return ErrCapacity
	}

	if r.writable && (size > r.fileSize) {
		err := r.file.Truncate(int64(size))
		if err != nil {
			return fmt.Errorf("truncate shm file: %w", err)
		}
		r.fileSize = size
	}
	r.size = size
	return nil
}

func (r *Region) inBounds(off, n int) bool {
	return (off >= 0) && (n >= 0) && (off+n <= r.size/4)
}

// ReadPixel returns the pixel at the pixel offset off.
func (r *Region) ReadPixel(off int) (shmimage.Color, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inBounds(off, 1) {
		return 0, false
	}
	return shmimage.Color(r.pix[off]), true
}

// WritePixel stores c at the pixel offset off.
func (r *Region) WritePixel(off int, c shmimage.Color) bool {
	return r.WriteSpan(off, 1, c)
}

// WriteSpan stores c into n consecutive pixels starting at off. Nothing
// is written unless the whole span is in bounds.
func (r *Region) WriteSpan(off, n int, c shmimage.Color) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.writable || !r.inBounds(off, n) {
		return false
	}
	span := r.pix[off : off+n]
	for i := range span {
		span[i] = uint32(c)
	}
	return true
}

// BlendPixel composites c over the pixel at off.
func (r *Region) BlendPixel(off int, c shmimage.Color) bool {
	return r.BlendSpan(off, 1, c)
}

// BlendSpan composites c over n consecutive pixels starting at off.
func (r *Region) BlendSpan(off, n int, c shmimage.Color) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.writable || !r.inBounds(off, n) {
		return false
	}
	span := r.pix[off : off+n]
	for i, p := range span {
		span[i] = uint32(shmimage.Over(c, shmimage.Color(p)))
	}
	return true
}

// Clear zeroes the logical extent of the region.
func (r *Region) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.writable {
		return
	}
	clear(r.mmap[:r.size])
}

// Bytes returns a copy of the logical extent of the region.
func (r *Region) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mmap == nil {
		return nil
	}
	buf := make([]byte, r.size)
	copy(buf, r.mmap[:r.size])
	return buf
}

// Close unmaps the region and closes the backing file. It is safe to
// call more than once.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mmap == nil {
		return nil
	}

	errs := []error{r.mmap.Unmap(), r.file.Close()}
	r.mmap, r.pix, r.file = nil, nil, nil
	r.size = 0
	return errors.Join(errs...)
}

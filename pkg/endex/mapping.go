//go:build unix

package endex

import (
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mapping is a whole-file, read-write shared memory map of one log
// file. A writer only ever needs the address of the tail word (the
// atomic `used` counter at the very end of the mapping); every other
// address — the mapping base and the file's capacity — is derived from
// that single pointer, per spec §4.D/§9.
type mapping struct {
	data []byte // the full mmap'd region, length == capacity
	path string
}

// mapFile maps f read-write shared over exactly capacity bytes. The
// file descriptor is not retained; callers close f immediately after
// this returns, per spec §3 "Ownership".
func mapFile(f *os.File, capacity uint32, path string) (*mapping, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, newErr(Mmap, err)
	}

	return &mapping{data: data, path: path}, nil
}

// tailPtr returns the atomic view of the `used` word: the last 4 bytes
// of the mapping, addressed directly from the mapping's backing array.
func (m *mapping) tailPtr() *atomic.Uint32 {
	n := len(m.data)

	return (*atomic.Uint32)(unsafe.Pointer(&m.data[n-usedFieldSize]))
}

// capacity reads the capacity field immediately preceding the tail
// word. It is immutable for the file's lifetime, so reading it back
// out of the mapping (rather than storing it alongside the pointer)
// keeps the tail pointer the single source of truth for derived
// addresses, per spec §4.D.
func (m *mapping) capacity() uint32 {
	n := len(m.data)

	return leUint32(m.data[n-usedFieldSize-capFieldSize : n-usedFieldSize])
}

// base returns the mapping's base address (offset 0).
func (m *mapping) base() []byte {
	return m.data
}

// salt returns the volume salt stored in this file's footer.
func (m *mapping) salt() [16]byte {
	n := len(m.data)
	var s [16]byte
	copy(s[:], m.data[n-FooterSize:n-FooterSize+saltFieldSize])

	return s
}

// unmap releases the mapping. Per spec §4.E, close never calls this —
// mappings are released only via the deferred-unmap rotation slot or
// when the process exits.
func (m *mapping) unmap() error {
	if err := unix.Munmap(m.data); err != nil {
		return newErr(Munmap, err)
	}

	return nil
}

// msync flushes the mapping's dirty pages to disk synchronously.
func (m *mapping) msync() error {
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return newErr(FileWrite, err)
	}

	return nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

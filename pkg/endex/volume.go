package endex

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tobinwells/endex/internal/endexfs"
)

// Handle is an open log volume. It is safe for concurrent use by any
// number of goroutines calling [Handle.Write], [Handle.Flush], or
// [Handle.Export]; see spec §5 for the exact discipline each field
// follows.
type Handle struct {
	dir      string
	capacity uint32 // snapshotted from MaxCapacity() at Open; fixed for this handle's lifetime

	active atomic.Pointer[mapping] // the file appends target
	prior  atomic.Pointer[mapping] // the immediately-superseded mapping, deferred-unmapped
	rot    sync.Mutex              // single-flight rotation

	closed atomic.Bool

	encrypted bool
	key       [keySize]byte
}

// Open opens or creates today's active log file in dir. If password is
// non-empty, the volume is encrypted: a key is derived via PBKDF2 from
// password and the volume's salt (read back from an existing file, or
// freshly drawn from the CSPRNG for a brand-new volume). The returned
// bool reports whether the opened volume is encrypted.
func Open(dir string, password string) (*Handle, bool, error) {
	if dir == "" {
		return nil, false, newErr(InvalidParam, nil)
	}

	info, statErr := os.Stat(dir)
	if statErr != nil || !info.IsDir() {
		return nil, false, newErr(DirAccess, statErr)
	}

	capacity := MaxCapacity()
	today := time.Now()
	encrypted := password != ""
	latest := FindLatest(dir, today)

	var (
		f      *os.File
		footer Footer
		path   string
		err    error
	)

	reuse := false

	if latest >= 0 {
		path = filepath.Join(dir, FileName(today, latest))

		f, footer, err = OpenExistingFile(path)
		if err != nil {
			return nil, false, err
		}

		if footer.Used < footer.Capacity-FooterSize {
			reuse = true
			capacity = footer.Capacity
		}
	}

	var salt [16]byte

	switch {
	case reuse:
		salt = footer.Salt
	case latest >= 0:
		// Today has files but none with room left; preserve the
		// volume's existing salt for the file we're about to create.
		salt = footer.Salt
		f.Close()
		f = nil
	default:
		if encrypted {
			salt, err = RandomSalt()
			if err != nil {
				return nil, false, err
			}
		}
	}

	if f == nil {
		slot := 0

		if latest >= 0 {
			slot, _, err = NextSlot(dir, today)
			if err != nil {
				return nil, false, newErr(FileCreate, err)
			}
		}

		path = filepath.Join(dir, FileName(today, slot))

		f, err = CreateFile(path, capacity, salt)
		if err != nil {
			return nil, false, err
		}
	}

	// A reused file is mapped at its own size, taken from its footer.
	mapCapacity := capacity
	if reuse {
		mapCapacity = footer.Capacity
	}

	m, mapErr := mapFile(f, mapCapacity, path)
	f.Close()

	if mapErr != nil {
		return nil, false, mapErr
	}

	h := &Handle{dir: dir, capacity: capacity, encrypted: encrypted}

	if encrypted {
		h.key, err = DeriveKey(password, salt)
		if err != nil {
			_ = m.unmap()

			return nil, false, err
		}
	}

	h.active.Store(m)

	return h, encrypted, nil
}

// Write reserves len(msg) disjoint bytes in the active file via a
// lock-free compare-and-swap on the tail word, copies msg into the
// mapping, and — for encrypted volumes — XORs the reserved range with
// the AES-CTR keystream addressed by its absolute file offset. See
// spec §4.E for the full protocol this implements step for step.
func (h *Handle) Write(msg []byte) error {
	if h.closed.Load() {
		return newErr(HandleClosed, nil)
	}

	length := uint32(len(msg))
	if length == 0 {
		return newErr(InvalidParam, nil)
	}

	for {
		m := h.active.Load()
		cap := m.capacity()
		maxPayload := cap - FooterSize

		if length > maxPayload {
			return newErr(FileSizeExceed, nil)
		}

		tail := m.tailPtr()
		off := tail.Load()

		if off+length > maxPayload {
			if err := h.rotate(length); err != nil {
				return err
			}

			continue // restart: re-snapshot ACTIVE, it may have changed
		}

		if !tail.CompareAndSwap(off, off+length) {
			continue // lost the CAS race; reread off and retry
		}

		base := m.base()
		copy(base[off:off+length], msg)

		if h.encrypted {
			if err := streamProcess(h.key, uint64(off), base[off:off+length]); err != nil {
				return err
			}
		}

		return nil
	}
}

// rotate implements the single-flight rotation protocol from spec
// §4.E. It is entered only when a writer observes overflow; a
// double-checked re-read under the rotation mutex lets a writer that
// lost the race to rotate simply return once another goroutine has
// already published a new ACTIVE mapping with room.
func (h *Handle) rotate(neededLen uint32) error {
	h.rot.Lock()
	defer h.rot.Unlock()

	m := h.active.Load()
	maxPayload := m.capacity() - FooterSize
	off := m.tailPtr().Load()

	if off+neededLen <= maxPayload {
		return nil // another goroutine already rotated
	}

	today := time.Now()

	slot, _, err := NextSlot(h.dir, today)
	if err != nil {
		return newErr(FileSwitch, err)
	}

	var salt [16]byte
	if h.encrypted {
		// Always carry the volume's existing salt forward; never
		// regenerate it on rotation or recycle (spec §9).
		salt = m.salt()
	}

	path := filepath.Join(h.dir, FileName(today, slot))

	f, err := CreateFile(path, h.capacity, salt)
	if err != nil {
		return newErr(FileSwitch, err)
	}

	newMapping, err := mapFile(f, h.capacity, path)
	f.Close()

	if err != nil {
		return newErr(FileSwitch, err)
	}

	newMapping.tailPtr().Store(0)

	old := h.active.Swap(newMapping) // publication point

	priorOld := h.prior.Swap(old)
	if priorOld != nil {
		_ = priorOld.unmap()
	}

	return nil
}

// Flush requests a synchronous msync over the active mapping.
func (h *Handle) Flush() error {
	return h.active.Load().msync()
}

// Close marks the handle closed, msyncs the active and prior mappings
// (best-effort — a failure here doesn't undo the close), and zeroes
// the crypto key. It deliberately never unmaps; mappings are released
// when the process exits, per spec §4.E.
func (h *Handle) Close() error {
	h.closed.Store(true)

	var err error

	if m := h.active.Load(); m != nil {
		if e := m.msync(); e != nil {
			err = e
		}
	}

	if p := h.prior.Load(); p != nil {
		if e := p.msync(); e != nil && err == nil {
			err = e
		}
	}

	if h.encrypted {
		ZeroKey(&h.key)
	}

	return err
}

// Export snapshots the active file's used region and writes it, plus a
// freshly built footer, to dir/export.log as a standalone valid log
// file. The write is atomic: concurrent readers never observe a
// partially written export. Writers that reserve bytes after Export's
// snapshot of `used` are, by design, not included.
func (h *Handle) Export() (string, error) {
	m := h.active.Load()
	used := m.tailPtr().Load()
	base := m.base()

	exportCapacity := used + FooterSize

	data := make([]byte, 0, exportCapacity)
	data = append(data, base[:used]...)

	footer := EncodeFooter(Footer{Salt: m.salt(), Capacity: exportCapacity, Used: used})
	data = append(data, footer[:]...)

	path := filepath.Join(h.dir, "export.log")
	if err := endexfs.WriteAtomic(path, data, 0o600); err != nil {
		return "", newErr(FileCreate, err)
	}

	return path, nil
}

// Cleanup removes log files in this volume's directory older than days.
func (h *Handle) Cleanup(days int) error {
	return Cleanup(h.dir, days)
}

// Info is a snapshot of the active file's identity and fill level.
// Not part of the spec's operation table, but needed by callers (and
// the endexctl CLI) that want to inspect a volume without reaching
// into unexported fields.
type Info struct {
	Path      string
	Capacity  uint32
	Used      uint32
	Encrypted bool
}

// Stat returns a snapshot of the active file's current state.
func (h *Handle) Stat() Info {
	m := h.active.Load()

	return Info{
		Path:      m.path,
		Capacity:  m.capacity(),
		Used:      m.tailPtr().Load(),
		Encrypted: h.encrypted,
	}
}

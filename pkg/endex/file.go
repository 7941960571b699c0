package endex

import (
	"os"
)

// CreateFile creates path exclusively, extends it to capacity bytes,
// and writes an initial footer (salt || magic || capacity || 0). Any
// failure rolls back: the descriptor is closed and the file unlinked,
// per spec §7 rule 2.
func CreateFile(path string, capacity uint32, salt [16]byte) (f *os.File, err error) {
	f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, newErr(FileCreate, err)
	}

	defer func() {
		if err != nil {
			f.Close()
			os.Remove(path)
		}
	}()

	if truncErr := f.Truncate(int64(capacity)); truncErr != nil {
		err = newErr(FileExtend, truncErr)

		return nil, err
	}

	footer := EncodeFooter(Footer{Salt: salt, Capacity: capacity, Used: 0})
	if _, writeErr := f.WriteAt(footer[:], int64(capacity)-FooterSize); writeErr != nil {
		err = newErr(FileWrite, writeErr)

		return nil, err
	}

	if syncErr := f.Sync(); syncErr != nil {
		err = newErr(FileWrite, syncErr)

		return nil, err
	}

	return f, nil
}

// OpenExistingFile opens path read-write and validates its footer per
// spec §3 invariant 1: size >= FooterSize, magic matches, capacity
// equals the file's actual size, and used <= capacity - FooterSize.
func OpenExistingFile(path string) (*os.File, Footer, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, Footer{}, newErr(FileOpen, err)
	}

	footer, validateErr := readAndValidateFooter(f)
	if validateErr != nil {
		f.Close()

		return nil, Footer{}, validateErr
	}

	return f, footer, nil
}

func readAndValidateFooter(f *os.File) (Footer, error) {
	stat, err := f.Stat()
	if err != nil {
		return Footer{}, newErr(FileOpen, err)
	}

	if stat.Size() < FooterSize {
		return Footer{}, newErr(InvalidMmap, nil)
	}

	buf := make([]byte, FooterSize)
	if _, err := f.ReadAt(buf, stat.Size()-FooterSize); err != nil {
		return Footer{}, newErr(FileOpen, err)
	}

	footer, ok := DecodeFooter(buf)
	if !ok {
		return Footer{}, newErr(InvalidMmap, nil)
	}

	if err := ValidateFooter(stat.Size(), buf, footer); err != nil {
		return Footer{}, err
	}

	return footer, nil
}

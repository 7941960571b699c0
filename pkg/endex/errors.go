package endex

import "fmt"

// Code is one of the stable, small-integer error codes the engine can
// return. Names are informative; values are part of the wire contract
// with callers that cross a language boundary and must not change.
type Code int

const (
	Success        Code = 0
	InvalidParam   Code = -1
	InvalidHandle  Code = -2
	OutOfMemory    Code = -3
	FileNotFound   Code = -4
	FileCreate     Code = -5
	FileOpen       Code = -6
	FileWrite      Code = -7
	FileExtend     Code = -8
	Mmap           Code = -9
	Munmap         Code = -10
	FileSizeExceed Code = -11
	InvalidMmap    Code = -12
	DirAccess      Code = -13
	HandleClosed   Code = -14
	FileSwitch     Code = -15
	MutexLock      Code = -16
	CryptoInit     Code = -17
	System         Code = -100
)

// messages maps each Code to a caller-facing description. The engine
// never composes ad hoc strings for callers; it always goes through
// this table.
var messages = map[Code]string{
	Success:        "success",
	InvalidParam:   "invalid parameter",
	InvalidHandle:  "invalid handle",
	OutOfMemory:    "out of memory",
	FileNotFound:   "file not found",
	FileCreate:     "failed to create file",
	FileOpen:       "failed to open file",
	FileWrite:      "failed to write file",
	FileExtend:     "failed to extend file",
	Mmap:           "failed to map file",
	Munmap:         "failed to unmap file",
	FileSizeExceed: "record exceeds file capacity",
	InvalidMmap:    "invalid mapping",
	DirAccess:      "directory inaccessible",
	HandleClosed:   "handle is closed",
	FileSwitch:     "rotation to a new file failed",
	MutexLock:      "mutex lock failed",
	CryptoInit:     "crypto primitive initialization failed",
	System:         "system error",
}

// Message returns the stable caller-facing description for code.
func Message(code Code) string {
	if msg, ok := messages[code]; ok {
		return msg
	}

	return "unknown error"
}

// Error wraps a [Code] with the underlying cause, if any.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", Message(e.Code), e.Err)
	}

	return Message(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same [Code], so callers can write
// errors.Is(err, endex.FileSizeExceed).
func (e *Error) Is(target error) bool {
	code, ok := target.(Code)
	return ok && code == e.Code
}

func (c Code) Error() string {
	return Message(c)
}

// newErr builds an *Error for code, optionally wrapping cause.
func newErr(code Code, cause error) *Error {
	return &Error{Code: code, Err: cause}
}

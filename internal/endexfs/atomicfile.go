// Package endexfs provides the durable-write primitive shared by
// [Handle.Export] and the endexctl CLI's config writer: write to a temp
// file in the target directory, then rename over the destination so
// readers never observe a partial write.
package endexfs

import (
	"bytes"

	"github.com/natefinch/atomic"
)

// WriteAtomic writes data to path atomically, via a temp-file-plus-rename
// in path's own directory. perm is ignored: the resulting file mode is
// whatever atomic.WriteFile gives it.
func WriteAtomic(path string, data []byte, _ uint32) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}

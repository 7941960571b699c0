// Package endex implements a crash-resilient, append-only log volume.
//
// A volume is a directory of fixed-capacity, memory-mapped log files.
// Any number of goroutines may call [Handle.Write] concurrently: each
// reserves a disjoint byte range with a single compare-and-swap on the
// active file's used-bytes counter, copies its payload directly into the
// mapping, and optionally XORs it in place with an AES-256-CTR keystream
// addressed by absolute file offset. When a write would overflow the
// active file, the engine rotates to a freshly created file without
// blocking writers still finishing a reservation in the old mapping.
//
// # Basic usage
//
//	h, encrypted, err := endex.Open("/var/log/myapp", "hunter2")
//	if err != nil {
//	    // handle endex.Code via errors.As
//	}
//	defer h.Close()
//
//	if err := h.Write([]byte("hello")); err != nil {
//	    // ...
//	}
//	_ = h.Flush()
//
// # Concurrency
//
// [Handle.Write] is lock-free on the fast path and safe for concurrent
// use by any number of goroutines. [Handle.Flush] and [Handle.Export]
// are also safe to call concurrently with writers. [Handle.Close] must
// not race a concurrent [Handle.Write]; see the package-level
// "Open questions" note in DESIGN.md.
//
// # Non-goals
//
// endex does not index or search records, does not ship them over the
// network, does not compress them, does not run a background flush
// thread, and does not decrypt on read — decryption is an offline
// concern outside this package. It also assumes single-process
// ownership of a volume.
package endex

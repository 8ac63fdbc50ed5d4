// Package registry implements the allocation registry of dMem: a collection of named,
// fixed-size byte buffers that are exclusively owned by the registry.
//
// Every entry is created once with a fixed size, mutated in place by WriteAt, inspected
// with ReadAt and destroyed by Remove. Buffers never leave the registry: lookups return
// metadata copies and reads return copies of the requested range, so no caller can touch
// a buffer after it was removed. There is no resize operation.
//
// Key properties:
//   - At most one live entry per name. A second Create for the same name fails with
//     ErrAlreadyExists until the entry is removed.
//   - Range checks are overflow safe: offset+length is never computed in fixed width.
//   - Entries of size zero are valid and can be addressed with zero-length ranges.
//   - List returns the most recently created entry first.
//   - Allocation limits (per entry and total) turn oversized requests into
//     ErrOutOfMemory instead of crashing the process.
//
// Thread Safety:
//
//	Every operation runs under the registry's guard (a sync.Locker, by default a
//	sync.Mutex). A custom guard can be injected through Config.Guard, for example a
//	no-op locker when the registry is confined to one goroutine.
//
// Usage:
//
//	r := registry.NewRegistry(registry.DefaultConfig())
//	defer r.Close()
//
//	if err := r.Create("foo", 10); err != nil { ... }
//	if err := r.WriteAt("foo", 0, []byte("hello")); err != nil { ... }
//	data, err := r.ReadAt("foo", 0, 5)
package registry

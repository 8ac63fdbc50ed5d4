package registry

import (
	"sync"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IRegistry is the interface of the allocation registry.
// All operations return a *Error (nil on success) that can be compared
// against the exported sentinel errors with errors.Is.
type IRegistry interface {
	// Create allocates a new buffer of the given size under name.
	// Returns ErrAlreadyExists if name has a live entry and ErrOutOfMemory if the
	// buffer could not be allocated.
	Create(name string, size uint64) (err error)
	// Find returns the metadata of the entry for name. The boolean reports whether it exists.
	Find(name string) (info EntryInfo, found bool)
	// Remove destroys the entry for name and releases its buffer.
	// Returns ErrNotFound if name has no live entry.
	Remove(name string) (err error)
	// List returns all live entries, most recently created first.
	List() (entries []EntryInfo)
	// WriteAt copies data into the buffer of name starting at offset.
	// Returns ErrNotFound or ErrOutOfBounds; on error the buffer is unchanged.
	WriteAt(name string, offset uint64, data []byte) (err error)
	// ReadAt returns a copy of length bytes of the buffer of name starting at offset.
	// Returns ErrNotFound or ErrOutOfBounds.
	ReadAt(name string, offset, length uint64) (data []byte, err error)
	// Info returns statistics about the registry.
	Info() (info Info)
	// Close removes all entries. The registry can be reused afterwards.
	Close()
}

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// EntryInfo describes a live allocation entry
type EntryInfo struct {
	Name string `json:"name"`
	Size uint64 `json:"size"`
}

// Info holds statistics about a registry.
// The size estimates are based on all allocations since creation, not only the live ones.
type Info struct {
	Entries     int    `json:"entries"`
	SizeBytes   uint64 `json:"size_bytes"`
	Allocations int64  `json:"allocations"`
	AverageSize int    `json:"average_size"`
	MedianSize  int    `json:"median_size"`
	P90Size     int    `json:"p90_size"`
}

// Config holds the limits and the concurrency guard of a registry
type Config struct {
	// MaxAllocBytes is the largest size a single entry may have (0 = no limit)
	MaxAllocBytes uint64
	// MaxTotalBytes is the largest sum of all live entry sizes (0 = no limit)
	MaxTotalBytes uint64
	// Guard serializes all registry operations. Defaults to a sync.Mutex.
	Guard sync.Locker
}

// DefaultConfig returns the configuration used by the server if nothing else is set
func DefaultConfig() Config {
	return Config{
		MaxAllocBytes: 1 << 30, // 1 GB
		MaxTotalBytes: 4 << 30, // 4 GB
	}
}

// NoopLocker is a sync.Locker that does nothing.
// It can be used as Config.Guard when the registry is confined to one goroutine.
type NoopLocker struct{}

func (NoopLocker) Lock()   {}
func (NoopLocker) Unlock() {}

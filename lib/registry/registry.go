package registry

import (
	"math"
	"sort"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("registry")

// entry is a named buffer owned by the registry
type entry struct {
	name string
	buf  []byte
	seq  uint64 // creation order, used to list the newest entries first
}

type registryImpl struct {
	guard     sync.Locker
	config    Config
	entries   map[string]*entry
	seq       uint64
	liveBytes uint64
	sizes     *sizeHistogram
}

// NewRegistry creates a new, empty registry
func NewRegistry(config Config) IRegistry {
	guard := config.Guard
	if guard == nil {
		guard = &sync.Mutex{}
	}

	return &registryImpl{
		guard:   guard,
		config:  config,
		entries: make(map[string]*entry),
		sizes:   newSizeHistogram(),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see registry/interface.go)
// --------------------------------------------------------------------------

func (r *registryImpl) Create(name string, size uint64) error {
	r.guard.Lock()
	defer r.guard.Unlock()

	if _, ok := r.entries[name]; ok {
		return ErrAlreadyExists
	}

	if !r.fits(size) {
		Logger.Warningf("refusing allocation of %d bytes for %q (live %d bytes)", size, name, r.liveBytes)
		return ErrOutOfMemory
	}

	buf, err := allocate(size)
	if err != nil {
		Logger.Errorf("allocation of %d bytes for %q failed: %v", size, name, err)
		return err
	}

	r.seq++
	r.entries[name] = &entry{
		name: name,
		buf:  buf,
		seq:  r.seq,
	}
	r.liveBytes += size
	r.sizes.addSample(size)

	Logger.Debugf("created entry %q with %d bytes", name, size)
	return nil
}

func (r *registryImpl) Find(name string) (EntryInfo, bool) {
	r.guard.Lock()
	defer r.guard.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return EntryInfo{}, false
	}
	return EntryInfo{Name: e.name, Size: uint64(len(e.buf))}, true
}

func (r *registryImpl) Remove(name string) error {
	r.guard.Lock()
	defer r.guard.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return ErrNotFound
	}

	delete(r.entries, name)
	r.liveBytes -= uint64(len(e.buf))
	e.buf = nil

	Logger.Debugf("removed entry %q", name)
	return nil
}

func (r *registryImpl) List() []EntryInfo {
	r.guard.Lock()
	defer r.guard.Unlock()

	sorted := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].seq > sorted[j].seq })

	entries := make([]EntryInfo, len(sorted))
	for i, e := range sorted {
		entries[i] = EntryInfo{Name: e.name, Size: uint64(len(e.buf))}
	}
	return entries
}

func (r *registryImpl) WriteAt(name string, offset uint64, data []byte) error {
	r.guard.Lock()
	defer r.guard.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return ErrNotFound
	}

	if !inBounds(uint64(len(e.buf)), offset, uint64(len(data))) {
		return ErrOutOfBounds
	}

	copy(e.buf[offset:], data)
	return nil
}

func (r *registryImpl) ReadAt(name string, offset, length uint64) ([]byte, error) {
	r.guard.Lock()
	defer r.guard.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, ErrNotFound
	}

	if !inBounds(uint64(len(e.buf)), offset, length) {
		return nil, ErrOutOfBounds
	}

	data := make([]byte, length)
	copy(data, e.buf[offset:offset+length])
	return data, nil
}

func (r *registryImpl) Info() Info {
	r.guard.Lock()
	defer r.guard.Unlock()

	return Info{
		Entries:     len(r.entries),
		SizeBytes:   r.liveBytes,
		Allocations: r.sizes.count,
		AverageSize: r.sizes.averageSize(),
		MedianSize:  r.sizes.percentileEstimate(50),
		P90Size:     r.sizes.percentileEstimate(90),
	}
}

func (r *registryImpl) Close() {
	r.guard.Lock()
	defer r.guard.Unlock()

	Logger.Infof("releasing %d entries (%d bytes)", len(r.entries), r.liveBytes)
	r.entries = make(map[string]*entry)
	r.liveBytes = 0
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// inBounds reports whether [offset, offset+length) lies within a buffer of the given size.
// The sum is never computed, so huge offsets and lengths cannot wrap around.
func inBounds(size, offset, length uint64) bool {
	return offset <= size && length <= size-offset
}

// fits reports whether an allocation of size bytes respects the configured limits.
// Sizes that cannot be represented as a slice length are always rejected.
func (r *registryImpl) fits(size uint64) bool {
	if size > math.MaxInt {
		return false
	}
	if r.config.MaxAllocBytes > 0 && size > r.config.MaxAllocBytes {
		return false
	}
	if r.config.MaxTotalBytes > 0 && size > r.config.MaxTotalBytes-min(r.liveBytes, r.config.MaxTotalBytes) {
		return false
	}
	return true
}

// allocate creates a buffer of size bytes.
// A panicking allocation (e.g. a length the runtime cannot satisfy) is reported as ErrOutOfMemory.
func allocate(size uint64) (buf []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			buf, err = nil, ErrOutOfMemory
		}
	}()
	return make([]byte, size), nil
}

package gridipc

import (
	"runtime"
	"sync/atomic"
)

// Reader observes a region published by some Writer, usually in another
// process.
type Reader struct {
	region *Region
}

// OpenReader maps the region at path read-only.
func OpenReader(path string) (*Reader, error) {
	r, err := openRegionRO(path)
	if err != nil {
		return nil, err
	}
	return &Reader{region: r}, nil
}

// NewReader wraps an existing region, typically one from NewMemory.
func NewReader(r *Region) *Reader {
	return &Reader{region: r}
}

// TryLoad copies one consistent snapshot into dst. It fails when a write is
// in progress or completes mid-copy; the copied dst is then torn and must
// not be used.
func (r *Reader) TryLoad(dst *Snapshot) bool {
	seq := r.region.seqWord()

	s1 := atomic.LoadUint32(seq)
	if s1&1 != 0 {
		return false
	}
	decode(r.region.data, dst)
	return atomic.LoadUint32(seq) == s1
}

// Load retries TryLoad up to attempts times, yielding between tries.
func (r *Reader) Load(dst *Snapshot, attempts int) bool {
	for i := 0; i < attempts; i++ {
		if r.TryLoad(dst) {
			return true
		}
		runtime.Gosched()
	}
	return false
}

// Sequence returns the current sequence word. Even values mark a consistent
// record; a stable value means no publish happened in between.
func (r *Reader) Sequence() uint32 {
	return atomic.LoadUint32(r.region.seqWord())
}

// Close releases the underlying region.
func (r *Reader) Close() error {
	return r.region.Close()
}

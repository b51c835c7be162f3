package gridipc

import "sync/atomic"

// Writer owns the region's write side. At most one Writer may publish to a
// region at a time; the seqlock does not arbitrate between writers.
type Writer struct {
	region *Region
}

// Create maps a fresh zeroed region at path and returns its writer.
func Create(path string) (*Writer, error) {
	r, err := createRegion(path)
	if err != nil {
		return nil, err
	}
	return &Writer{region: r}, nil
}

// OpenWriter attaches to the region at path, creating or extending it as
// needed without clearing existing contents.
func OpenWriter(path string) (*Writer, error) {
	r, err := openRegionRW(path)
	if err != nil {
		return nil, err
	}
	return &Writer{region: r}, nil
}

// NewWriter wraps an existing region, typically one from NewMemory.
func NewWriter(r *Region) *Writer {
	return &Writer{region: r}
}

// Publish encodes the snapshot under the seqlock. Readers that race the
// write see an odd or changed sequence and retry.
func (w *Writer) Publish(s *Snapshot) {
	seq := w.region.seqWord()
	atomic.AddUint32(seq, 1)
	encode(w.region.data, s)
	atomic.AddUint32(seq, 1)
}

// PublishInactive clears only the active flag, leaving the rest of the
// record as the final state of the closed session.
func (w *Writer) PublishInactive() {
	seq := w.region.seqWord()
	atomic.AddUint32(seq, 1)
	encodeActive(w.region.data, false)
	atomic.AddUint32(seq, 1)
}

// Sequence returns the current sequence word.
func (w *Writer) Sequence() uint32 {
	return atomic.LoadUint32(w.region.seqWord())
}

// Close releases the underlying region.
func (w *Writer) Close() error {
	return w.region.Close()
}

package buffer

import "sniffview/record"

// Interleave pairs the In and Out collectors that feed one merge engine.
type Interleave struct {
	in  *Collector
	out *Collector
}

// NewInterleave creates both collectors with the same per-cycle cap.
func NewInterleave(limit int) *Interleave {
	return &Interleave{
		in:  NewCollector(record.In, limit),
		out: NewCollector(record.Out, limit),
	}
}

// Collector returns the collector for dir.
func (b *Interleave) Collector(dir record.Direction) *Collector {
	if dir == record.Out {
		return b.out
	}
	return b.in
}

// Append routes r to its direction's collector.
func (b *Interleave) Append(r record.Record) bool {
	return b.Collector(r.Direction).Append(r)
}

// TakeAll snapshots and clears both collectors in one critical section.
// Locks are always taken In then Out; Append only ever holds one of them.
func (b *Interleave) TakeAll() (in, out []record.Record) {
	b.in.mu.Lock()
	b.out.mu.Lock()
	in = b.in.takeLocked()
	out = b.out.takeLocked()
	b.out.mu.Unlock()
	b.in.mu.Unlock()
	return in, out
}

// Pending returns how many records each collector holds right now.
func (b *Interleave) Pending() (in, out int) {
	return b.in.Len(), b.out.Len()
}

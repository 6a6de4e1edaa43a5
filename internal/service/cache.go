package service

import "sync/atomic"

// fetchSeq orders list fetches against each other and against local mutations.
// applied is guarded by the owning service's mutex.
type fetchSeq struct {
	issued  atomic.Uint64
	applied uint64
}

func (f *fetchSeq) ticket() uint64 {
	return f.issued.Add(1)
}

// accept reports whether a fetch started with ticket t may replace the cache.
func (f *fetchSeq) accept(t uint64) bool {
	if t <= f.applied {
		return false
	}
	f.applied = t
	return true
}

// bump invalidates every fetch issued before a local mutation.
func (f *fetchSeq) bump() {
	f.applied = f.ticket()
}

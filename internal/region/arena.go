package region

import (
	"sort"

	"sectionrender/internal/config"
)

// arenaHeadroom is added on top of the required size when a swap arena is
// rebuilt.
const arenaHeadroom = 64 * 1024

// Allocation is a live range of an arena. Its offset may move when a swap
// arena compacts.
type Allocation struct {
	Offset int
	Length int

	arena *Arena
	freed bool
}

type segment struct {
	offset, length int
}

// Arena is a growable device buffer shared by the sections of a region.
// Space is handed out first fit from a sorted free list.
type Arena struct {
	mode string
	buf  []byte
	free []segment
	live map[*Allocation]struct{}
	used int

	resizes int
}

func newArena(mode string, capacity int) *Arena {
	return &Arena{
		mode: mode,
		buf:  make([]byte, capacity),
		free: []segment{{0, capacity}},
		live: make(map[*Allocation]struct{}),
	}
}

func (a *Arena) Used() int { return a.used }

func (a *Arena) Capacity() int { return len(a.buf) }

func (a *Arena) IsEmpty() bool { return a.used == 0 }

// Resizes returns how many times the arena grew.
func (a *Arena) Resizes() int { return a.resizes }

// Bytes returns the stored bytes of an allocation.
func (a *Arena) Bytes(alloc *Allocation) []byte {
	return a.buf[alloc.Offset : alloc.Offset+alloc.Length]
}

// Upload copies data into a new allocation, growing the arena when no free
// segment fits.
func (a *Arena) Upload(data []byte) *Allocation {
	n := len(data)
	off, ok := a.take(n)
	if !ok {
		a.grow(n)
		off, _ = a.take(n)
	}

	copy(a.buf[off:off+n], data)
	alloc := &Allocation{Offset: off, Length: n, arena: a}
	a.live[alloc] = struct{}{}
	a.used += n
	return alloc
}

func (a *Arena) take(n int) (int, bool) {
	for i, s := range a.free {
		if s.length < n {
			continue
		}
		if s.length == n {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			a.free[i] = segment{s.offset + n, s.length - n}
		}
		return s.offset, true
	}
	return 0, false
}

// Free returns an allocation to the arena. Freeing twice is a no-op.
func (a *Arena) Free(alloc *Allocation) {
	if alloc == nil || alloc.freed || alloc.arena != a {
		return
	}
	alloc.freed = true
	delete(a.live, alloc)
	a.used -= alloc.Length
	a.release(segment{alloc.Offset, alloc.Length})
}

func (a *Arena) release(s segment) {
	if s.length == 0 {
		return
	}
	i := sort.Search(len(a.free), func(i int) bool { return a.free[i].offset > s.offset })
	a.free = append(a.free, segment{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = s

	// Merge with the following and preceding segments.
	if i+1 < len(a.free) && a.free[i].offset+a.free[i].length == a.free[i+1].offset {
		a.free[i].length += a.free[i+1].length
		a.free = append(a.free[:i+1], a.free[i+2:]...)
	}
	if i > 0 && a.free[i-1].offset+a.free[i-1].length == a.free[i].offset {
		a.free[i-1].length += a.free[i].length
		a.free = append(a.free[:i], a.free[i+1:]...)
	}
}

func (a *Arena) grow(n int) {
	a.resizes++

	if a.mode == config.ArenaSwap {
		a.compact(a.used + n + arenaHeadroom)
		return
	}

	capacity := max(len(a.buf)*2, len(a.buf)+n)
	old := len(a.buf)
	buf := make([]byte, capacity)
	copy(buf, a.buf)
	a.buf = buf
	a.release(segment{old, capacity - old})
}

// compact moves every live allocation to the front of a new buffer.
func (a *Arena) compact(capacity int) {
	allocs := make([]*Allocation, 0, len(a.live))
	for alloc := range a.live {
		allocs = append(allocs, alloc)
	}
	sort.Slice(allocs, func(i, j int) bool { return allocs[i].Offset < allocs[j].Offset })

	buf := make([]byte, capacity)
	off := 0
	for _, alloc := range allocs {
		copy(buf[off:], a.Bytes(alloc))
		alloc.Offset = off
		off += alloc.Length
	}
	a.buf = buf
	a.free = a.free[:0]
	a.release(segment{off, capacity - off})
}
